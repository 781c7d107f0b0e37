package api

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/rcavanagh/taskboard-api/internal/domain"
	"github.com/rcavanagh/taskboard-api/internal/service/auth"
	"github.com/rcavanagh/taskboard-api/internal/service/task"
	"github.com/rcavanagh/taskboard-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrRevokedToken),
		errors.Is(err, auth.ErrMissingToken):
		return http.StatusUnauthorized

	// Authorization errors
	case errors.Is(err, task.ErrForbidden):
		return http.StatusForbidden

	// Not found errors
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	// Validation errors
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, task.ErrAssigneeNotFound),
		errors.Is(err, store.ErrEmailExists),
		errors.Is(err, domain.ErrValidation),
		isDomainValidation(err):
		return http.StatusUnprocessableEntity

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return "Token expired"

	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrRevokedToken),
		errors.Is(err, auth.ErrMissingToken):
		return "Invalid token"

	case errors.Is(err, auth.ErrInvalidCredentials):
		return "The credentials are incorrect."

	case errors.Is(err, task.ErrForbidden):
		return "Unauthorized"

	case errors.Is(err, store.ErrTaskNotFound):
		return "Task not found"

	case errors.Is(err, store.ErrUserNotFound):
		return "User not found"

	case errors.Is(err, store.ErrNotFound):
		return "Not found"

	case errors.Is(err, store.ErrEmailExists):
		return "The email has already been taken."

	case errors.Is(err, task.ErrAssigneeNotFound):
		return "The selected user does not exist."

	case isDomainValidation(err), errors.Is(err, domain.ErrValidation):
		// Domain validation messages are written for users; safe to expose.
		return err.Error()

	default:
		return "An unexpected error occurred"
	}
}

// isDomainValidation reports whether the error chain contains any of the
// domain's entity validation sentinels.
func isDomainValidation(err error) bool {
	for _, sentinel := range []error{
		domain.ErrEmptyTitle,
		domain.ErrTitleTooLong,
		domain.ErrInvalidStatus,
		domain.ErrInvalidPriority,
		domain.ErrEmptyName,
		domain.ErrNameTooLong,
		domain.ErrInvalidEmail,
		domain.ErrPasswordTooShort,
		domain.ErrPasswordTooLong,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

// errorsIsAssignee reports whether the error is the missing-assignee case.
func errorsIsAssignee(err error) bool {
	return errors.Is(err, task.ErrAssigneeNotFound)
}

// asValidationError extracts a domain ValidationError from the chain,
// giving access to the offending field name.
func asValidationError(err error) (*domain.ValidationError, bool) {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// validationFieldErrors flattens a validator.ValidationErrors into the
// field -> messages map the 422 payload carries. Non-validator errors get
// a single generic entry.
func validationFieldErrors(err error) map[string][]string {
	fieldErrors := make(map[string][]string)

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		fieldErrors["body"] = []string{"The given data was invalid."}
		return fieldErrors
	}

	for _, fe := range verrs {
		field := fe.Field()
		fieldErrors[field] = append(fieldErrors[field], validationMessage(field, fe.Tag()))
	}
	return fieldErrors
}

// validationMessage maps a validation tag to a user-facing message.
func validationMessage(field, tag string) string {
	switch tag {
	case "required":
		return "The " + field + " field is required."
	case "email":
		return "The " + field + " must be a valid email address."
	case "min":
		return "The " + field + " is too short."
	case "max":
		return "The " + field + " is too long."
	case "eqfield":
		return "The " + field + " confirmation does not match."
	case "uuid":
		return "The " + field + " must be a valid identifier."
	case "oneof":
		return "The selected " + field + " is invalid."
	default:
		return "The " + field + " is invalid."
	}
}
