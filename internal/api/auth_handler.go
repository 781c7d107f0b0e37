// Package api implements the HTTP boundary: request models, handlers and
// the error-to-status mapping.
package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/rcavanagh/taskboard-api/internal/api/shared"
	"github.com/rcavanagh/taskboard-api/internal/domain"
	"github.com/rcavanagh/taskboard-api/internal/service/auth"
	"github.com/rcavanagh/taskboard-api/internal/store"
)

// AuthHandler handles authentication-related API requests.
type AuthHandler struct {
	userStore        store.UserStore
	tokenService     auth.TokenService
	passwordVerifier auth.PasswordVerifier
}

// NewAuthHandler creates a new AuthHandler with the given dependencies.
func NewAuthHandler(
	userStore store.UserStore,
	tokenService auth.TokenService,
	passwordVerifier auth.PasswordVerifier,
) *AuthHandler {
	return &AuthHandler{
		userStore:        userStore,
		tokenService:     tokenService,
		passwordVerifier: passwordVerifier,
	}
}

// Register handles POST /register.
// Creates the user with a hashed password and returns a fresh token.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest

	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithValidationErrors(w, r, validationFieldErrors(err))
		return
	}

	user, err := domain.NewUser(req.Name, req.Email, req.Password)
	if err != nil {
		shared.RespondWithError(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err))
		return
	}

	if err := h.userStore.Create(r.Context(), user); err != nil {
		if errors.Is(err, store.ErrEmailExists) {
			shared.RespondWithValidationErrors(w, r, map[string][]string{
				"email": {"The email has already been taken."},
			})
			return
		}
		slog.Error("failed to create user", "error", err)
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to create user")
		return
	}

	token, err := h.tokenService.Issue(r.Context(), user.ID)
	if err != nil {
		slog.Error("failed to issue token", "error", err, "user_id", user.ID)
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to generate authentication token")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, TokenResponse{Token: token})
}

// Login handles POST /login.
// Both an unknown email and a wrong password produce the same generic
// credentials error so responses cannot be used to probe registered emails.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest

	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithValidationErrors(w, r, validationFieldErrors(err))
		return
	}

	// Emails are stored normalized at registration, so the lookup must
	// normalize too or mixed-case logins would never match.
	user, err := h.userStore.GetByEmail(r.Context(), domain.NormalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			h.respondInvalidCredentials(w, r)
			return
		}
		slog.Error("failed to get user by email", "error", err)
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to authenticate user")
		return
	}

	if err := h.passwordVerifier.Compare(user.HashedPassword, req.Password); err != nil {
		h.respondInvalidCredentials(w, r)
		return
	}

	token, err := h.tokenService.Issue(r.Context(), user.ID)
	if err != nil {
		slog.Error("failed to issue token", "error", err, "user_id", user.ID)
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to generate authentication token")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, TokenResponse{Token: token})
}

// Logout handles POST /logout.
// Revokes exactly the token the request authenticated with; the user's
// other sessions stay valid.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	tokenID, ok := shared.TokenID(r.Context())
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid token")
		return
	}

	if err := h.tokenService.Revoke(r.Context(), tokenID); err != nil {
		slog.Error("failed to revoke token", "error", err, "token_id", tokenID)
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to log out")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, MessageResponse{Message: "Logged out"})
}

func (h *AuthHandler) respondInvalidCredentials(w http.ResponseWriter, r *http.Request) {
	const msg = "The credentials are incorrect."
	shared.RespondWithJSON(w, r, http.StatusUnprocessableEntity, shared.ValidationErrorResponse{
		Message: msg,
		Errors:  map[string][]string{"email": {msg}},
		TraceID: shared.GetTraceID(r.Context()),
	})
}
