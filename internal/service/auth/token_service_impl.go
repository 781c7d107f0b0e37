package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/rcavanagh/taskboard-api/internal/config"
	"github.com/rcavanagh/taskboard-api/internal/platform/logger"
	"github.com/rcavanagh/taskboard-api/internal/store"
)

// hmacTokenService implements TokenService using HMAC-SHA signed JWTs
// backed by a persisted token record per issued token.
type hmacTokenService struct {
	signingKey    []byte
	tokenLifetime time.Duration
	tokens        store.TokenStore
	timeFunc      func() time.Time // Injectable for testing
	clockSkew     time.Duration    // Allowed time difference for validation to handle clock drift
}

// tokenClaims defines the structure of JWT claims we use.
type tokenClaims struct {
	UserID uuid.UUID `json:"uid"`
	jwt.RegisteredClaims
}

// Ensure hmacTokenService implements TokenService interface
var _ TokenService = (*hmacTokenService)(nil)

// NewTokenService creates a new token service using HMAC-SHA signing and
// the given token store for per-token revocation.
func NewTokenService(cfg config.AuthConfig, tokens store.TokenStore) (TokenService, error) {
	if len(cfg.JWTSecret) < 32 {
		return nil, fmt.Errorf("jwt secret must be at least 32 characters")
	}

	return &hmacTokenService{
		signingKey:    []byte(cfg.JWTSecret),
		tokenLifetime: time.Duration(cfg.TokenLifetimeMinutes) * time.Minute,
		tokens:        tokens,
		timeFunc:      time.Now,
		clockSkew:     2 * time.Minute,
	}, nil
}

// Issue creates a signed access token and persists its record.
func (s *hmacTokenService) Issue(ctx context.Context, userID uuid.UUID) (string, error) {
	log := logger.FromContext(ctx)
	now := s.timeFunc()

	record := &store.APIToken{
		ID:        uuid.New(),
		UserID:    userID,
		CreatedAt: now.UTC(),
		ExpiresAt: now.Add(s.tokenLifetime).UTC(),
	}

	claims := tokenClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(record.ExpiresAt),
			ID:        record.ID.String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(s.signingKey)
	if err != nil {
		log.Error("failed to sign access token",
			"error", err,
			"user_id", userID,
			"signing_method", jwt.SigningMethodHS256.Name)
		return "", fmt.Errorf("failed to sign access token with HMAC-SHA256: %w", err)
	}

	// Persist after signing so a signing failure leaves no orphan record.
	if err := s.tokens.Create(ctx, record); err != nil {
		log.Error("failed to persist token record",
			"error", err,
			"user_id", userID,
			"token_id", record.ID)
		return "", fmt.Errorf("failed to persist token record: %w", err)
	}

	return signedToken, nil
}

// Validate verifies the token signature and expiry, then checks that the
// token's record still exists. A missing record means the token was revoked.
func (s *hmacTokenService) Validate(ctx context.Context, tokenString string) (*Claims, error) {
	log := logger.FromContext(ctx)
	now := s.timeFunc()

	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithLeeway(s.clockSkew),
		jwt.WithTimeFunc(func() time.Time {
			return now
		}),
	}

	token, err := jwt.ParseWithClaims(
		tokenString,
		&tokenClaims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return s.signingKey, nil
		},
		parserOpts...)

	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			log.Debug("token validation failed: token expired", "error", err)
			return nil, ErrExpiredToken
		case errors.Is(err, jwt.ErrTokenNotValidYet):
			log.Debug("token validation failed: token not yet valid", "error", err)
			return nil, ErrTokenNotYetValid
		case errors.Is(err, jwt.ErrTokenMalformed):
			log.Debug("token validation failed: malformed token", "error", err)
			return nil, ErrInvalidToken
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			log.Debug("token validation failed: invalid signature", "error", err)
			return nil, ErrInvalidToken
		default:
			log.Debug("token validation failed: other validation error",
				"error", err,
				"error_type", fmt.Sprintf("%T", err))
			return nil, ErrInvalidToken
		}
	}

	claims, ok := token.Claims.(*tokenClaims)
	if !ok || !token.Valid {
		log.Debug("token validation failed: invalid claims")
		return nil, ErrInvalidToken
	}

	tokenID, err := uuid.Parse(claims.ID)
	if err != nil {
		log.Debug("token validation failed: malformed token ID", "error", err)
		return nil, ErrInvalidToken
	}

	// The signature only proves we issued the token; the persisted record
	// proves the session is still live.
	if _, err := s.tokens.GetByID(ctx, tokenID); err != nil {
		if errors.Is(err, store.ErrTokenNotFound) {
			log.Debug("token validation failed: token revoked",
				"token_id", tokenID,
				"user_id", claims.UserID)
			return nil, ErrRevokedToken
		}
		log.Error("failed to look up token record",
			"error", err,
			"token_id", tokenID)
		return nil, fmt.Errorf("failed to look up token record: %w", err)
	}

	return &Claims{
		UserID:    claims.UserID,
		TokenID:   tokenID,
		Subject:   claims.Subject,
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// Revoke deletes the persisted record for the given token ID.
func (s *hmacTokenService) Revoke(ctx context.Context, tokenID uuid.UUID) error {
	log := logger.FromContext(ctx)

	if err := s.tokens.Delete(ctx, tokenID); err != nil {
		if errors.Is(err, store.ErrTokenNotFound) {
			// Already revoked; logout is idempotent.
			log.Debug("token already revoked", "token_id", tokenID)
			return nil
		}
		log.Error("failed to revoke token",
			"error", err,
			"token_id", tokenID)
		return fmt.Errorf("failed to revoke token: %w", err)
	}

	return nil
}
