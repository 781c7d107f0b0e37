package domain

import (
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestNewUser(t *testing.T) {
	t.Parallel()
	validName := "Test User"
	validEmail := "test@example.com"
	validPassword := "password123"

	user, err := NewUser(validName, validEmail, validPassword)

	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if user.ID == uuid.Nil {
		t.Error("Expected non-nil UUID, got nil UUID")
	}

	if user.Name != validName {
		t.Errorf("Expected name %s, got %s", validName, user.Name)
	}

	if user.Email != validEmail {
		t.Errorf("Expected email %s, got %s", validEmail, user.Email)
	}

	if user.CreatedAt.IsZero() {
		t.Error("Expected non-zero CreatedAt time")
	}

	if user.UpdatedAt.IsZero() {
		t.Error("Expected non-zero UpdatedAt time")
	}

	// Email is normalized to lowercase and trimmed
	user, err = NewUser(validName, "  Mixed@Example.COM ", validPassword)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if user.Email != "mixed@example.com" {
		t.Errorf("Expected normalized email, got %s", user.Email)
	}

	// Test empty name
	_, err = NewUser("", validEmail, validPassword)
	if err != ErrEmptyName {
		t.Errorf("Expected error %v, got %v", ErrEmptyName, err)
	}

	// Test invalid email
	_, err = NewUser(validName, "invalidemail", validPassword)
	if err != ErrInvalidEmail {
		t.Errorf("Expected error %v, got %v", ErrInvalidEmail, err)
	}

	_, err = NewUser(validName, "", validPassword)
	if err != ErrEmptyEmail {
		t.Errorf("Expected error %v, got %v", ErrEmptyEmail, err)
	}

	// Test password length bounds
	_, err = NewUser(validName, validEmail, "12345")
	if err != ErrPasswordTooShort {
		t.Errorf("Expected error %v, got %v", ErrPasswordTooShort, err)
	}

	_, err = NewUser(validName, validEmail, strings.Repeat("x", 73))
	if err != ErrPasswordTooLong {
		t.Errorf("Expected error %v, got %v", ErrPasswordTooLong, err)
	}
}

func TestNormalizeEmail(t *testing.T) {
	t.Parallel()
	tests := []struct {
		input    string
		expected string
	}{
		{"test@example.com", "test@example.com"},
		{"John@Example.com", "john@example.com"},
		{"  UPPER@EXAMPLE.COM  ", "upper@example.com"},
		{"", ""},
	}

	for _, tc := range tests {
		if got := NormalizeEmail(tc.input); got != tc.expected {
			t.Errorf("NormalizeEmail(%q) = %q, expected %q", tc.input, got, tc.expected)
		}
	}
}

func TestUserValidate(t *testing.T) {
	t.Parallel()
	validUser := User{
		ID:             uuid.New(),
		Name:           "Test User",
		Email:          "test@example.com",
		HashedPassword: "hashedpassword123",
	}

	// Test valid user loaded from storage (hash only, no plaintext)
	if err := validUser.Validate(); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}

	// Test invalid ID
	invalidUser := validUser
	invalidUser.ID = uuid.Nil
	if err := invalidUser.Validate(); err != ErrEmptyUserID {
		t.Errorf("Expected error %v, got %v", ErrEmptyUserID, err)
	}

	// Test overlong name
	invalidUser = validUser
	invalidUser.Name = strings.Repeat("n", 256)
	if err := invalidUser.Validate(); err != ErrNameTooLong {
		t.Errorf("Expected error %v, got %v", ErrNameTooLong, err)
	}

	// Name length counts characters, not bytes
	okUser := validUser
	okUser.Name = strings.Repeat("ü", 255)
	if err := okUser.Validate(); err != nil {
		t.Errorf("Expected no error for 255-character multibyte name, got %v", err)
	}

	// Test neither password nor hash present
	invalidUser = validUser
	invalidUser.HashedPassword = ""
	if err := invalidUser.Validate(); err != ErrEmptyPassword {
		t.Errorf("Expected error %v, got %v", ErrEmptyPassword, err)
	}

	// Plaintext present: length is enforced even with a hash set
	invalidUser = validUser
	invalidUser.Password = "short"
	if err := invalidUser.Validate(); err != ErrPasswordTooShort {
		t.Errorf("Expected error %v, got %v", ErrPasswordTooShort, err)
	}
}

func TestValidateEmailFormat(t *testing.T) {
	t.Parallel()
	tests := []struct {
		email string
		valid bool
	}{
		{"user@example.com", true},
		{"first.last@sub.example.org", true},
		{"no-at-sign", false},
		{"@example.com", false},
		{"user@", false},
		{"user@nodot", false},
		{"user@.com", false},
		{"user@example.", false},
		{"user name@example.com", false},
	}

	for _, tt := range tests {
		if got := validateEmailFormat(tt.email); got != tt.valid {
			t.Errorf("validateEmailFormat(%q) = %v, want %v", tt.email, got, tt.valid)
		}
	}
}
