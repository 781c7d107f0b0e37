package auth

import "errors"

// Common authentication service errors
var (
	// ErrInvalidToken indicates the token format is invalid or signature doesn't match
	ErrInvalidToken = errors.New("invalid authentication token")

	// ErrExpiredToken indicates the token has expired
	ErrExpiredToken = errors.New("authentication token has expired")

	// ErrTokenNotYetValid indicates the token is not yet valid (nbf claim in the future)
	ErrTokenNotYetValid = errors.New("authentication token not yet valid")

	// ErrRevokedToken indicates the token was valid but has been revoked
	// (e.g., by a logout); its record no longer exists in the token store.
	ErrRevokedToken = errors.New("authentication token has been revoked")

	// ErrMissingToken indicates a token was expected but not provided
	ErrMissingToken = errors.New("authentication token is missing")

	// ErrInvalidCredentials indicates a login failure. Deliberately covers
	// both "unknown email" and "wrong password" so responses cannot be used
	// to probe which emails are registered.
	ErrInvalidCredentials = errors.New("the credentials are incorrect")
)
