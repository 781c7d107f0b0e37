package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// APIToken is the persisted record of an issued access token. The token
// string itself is a signed JWT; only its ID (the jti claim) is stored,
// which is enough to revoke a single session at logout without touching
// the user's other tokens.
type APIToken struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	CreatedAt time.Time
	ExpiresAt time.Time
}

// TokenStore defines the interface for issued-token persistence.
type TokenStore interface {
	// Create saves a newly issued token record.
	Create(ctx context.Context, token *APIToken) error

	// GetByID retrieves a token record by its ID.
	// Returns ErrTokenNotFound if the token does not exist (e.g., it was
	// revoked at logout).
	GetByID(ctx context.Context, id uuid.UUID) (*APIToken, error)

	// Delete removes exactly one token record, revoking that session.
	// Returns ErrTokenNotFound if the token does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// DeleteExpired removes token records whose expiry has passed and
	// returns how many were removed.
	DeleteExpired(ctx context.Context) (int64, error)

	// WithTx returns a new TokenStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) TokenStore
}
