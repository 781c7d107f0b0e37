// Package shared holds the helpers the API handlers and middleware have in
// common: context keys, request decoding and response writing.
package shared

import (
	"context"
	"crypto/rand"
	"encoding/hex"

	"github.com/google/uuid"
)

// ContextKey is the key type for context values set by this package.
type ContextKey string

// Context keys for various values
const (
	// UserIDContextKey is the context key for the authenticated user's ID.
	UserIDContextKey ContextKey = "userID"

	// TokenIDContextKey is the context key for the ID of the token the
	// current request authenticated with. Logout revokes exactly this token.
	TokenIDContextKey ContextKey = "tokenID"

	// TraceIDKey is the key for the trace ID in the request context.
	TraceIDKey ContextKey = "traceID"

	// TraceIDLength is the number of bytes used to generate the trace ID.
	TraceIDLength = 16 // 32 hex characters
)

// SetTraceID adds a trace ID to the context.
// This is useful for correlating logs and error responses.
func SetTraceID(ctx context.Context) context.Context {
	return context.WithValue(ctx, TraceIDKey, generateTraceID())
}

// GetTraceID retrieves the trace ID from the context.
// If no trace ID exists, it returns an empty string.
func GetTraceID(ctx context.Context) string {
	traceID, ok := ctx.Value(TraceIDKey).(string)
	if !ok {
		return ""
	}
	return traceID
}

// UserID retrieves the authenticated user's ID from the context.
// Returns false if the auth middleware did not run or stored nothing.
func UserID(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := ctx.Value(UserIDContextKey).(uuid.UUID)
	if !ok || userID == uuid.Nil {
		return uuid.Nil, false
	}
	return userID, true
}

// TokenID retrieves the current request's token ID from the context.
func TokenID(ctx context.Context) (uuid.UUID, bool) {
	tokenID, ok := ctx.Value(TokenIDContextKey).(uuid.UUID)
	if !ok || tokenID == uuid.Nil {
		return uuid.Nil, false
	}
	return tokenID, true
}

// generateTraceID creates a random trace ID for request tracking.
// Returns a 32-character hex string. A random-source failure falls back to
// a fresh UUID rather than a static value.
func generateTraceID() string {
	b := make([]byte, TraceIDLength)
	if n, err := rand.Read(b); err != nil || n != TraceIDLength {
		return strings32(uuid.New())
	}
	return hex.EncodeToString(b)
}

// strings32 renders a UUID as 32 hex characters without dashes.
func strings32(id uuid.UUID) string {
	return hex.EncodeToString(id[:])
}
