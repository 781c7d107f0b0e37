// Package auth provides token issuance, validation and password hashing
// for the API's bearer-token authentication.
package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// TokenService defines operations for managing API access tokens.
//
// Tokens are signed JWTs whose ID (jti) is also persisted server-side.
// Validation requires both a valid signature and a live persisted record,
// so revoking one record invalidates exactly that session and no other.
type TokenService interface {
	// Issue creates a signed access token for the user and persists its
	// record. Returns the token string or an error if issuance fails.
	Issue(ctx context.Context, userID uuid.UUID) (string, error)

	// Validate checks the provided token string and extracts the claims.
	// Returns ErrInvalidToken / ErrExpiredToken for signature or expiry
	// failures and ErrRevokedToken when the token's record has been
	// deleted (e.g., by logout).
	Validate(ctx context.Context, tokenString string) (*Claims, error)

	// Revoke deletes the persisted record of the given token, invalidating
	// that session only. The user's other active tokens are unaffected.
	Revoke(ctx context.Context, tokenID uuid.UUID) error
}

// Claims represents the validated content of an access token.
type Claims struct {
	// UserID is the unique identifier of the user the token was issued for.
	UserID uuid.UUID

	// TokenID is the unique identifier of this token (the jti claim),
	// matching the persisted token record.
	TokenID uuid.UUID

	// Standard registered JWT claims
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}
