package auth

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcavanagh/taskboard-api/internal/config"
	"github.com/rcavanagh/taskboard-api/internal/store"
)

const testSecret = "test-secret-key-thats-long-enough-for-hs256"

// fakeTokenStore is an in-memory TokenStore for token service tests.
type fakeTokenStore struct {
	records map[uuid.UUID]*store.APIToken
}

func newFakeTokenStore() *fakeTokenStore {
	return &fakeTokenStore{records: make(map[uuid.UUID]*store.APIToken)}
}

func (f *fakeTokenStore) Create(ctx context.Context, token *store.APIToken) error {
	f.records[token.ID] = token
	return nil
}

func (f *fakeTokenStore) GetByID(ctx context.Context, id uuid.UUID) (*store.APIToken, error) {
	record, ok := f.records[id]
	if !ok {
		return nil, store.ErrTokenNotFound
	}
	return record, nil
}

func (f *fakeTokenStore) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := f.records[id]; !ok {
		return store.ErrTokenNotFound
	}
	delete(f.records, id)
	return nil
}

func (f *fakeTokenStore) DeleteExpired(ctx context.Context) (int64, error) {
	var removed int64
	now := time.Now()
	for id, record := range f.records {
		if record.ExpiresAt.Before(now) {
			delete(f.records, id)
			removed++
		}
	}
	return removed, nil
}

func (f *fakeTokenStore) WithTx(tx *sql.Tx) store.TokenStore { return f }

func newTestTokenService(t *testing.T, tokens store.TokenStore) *hmacTokenService {
	t.Helper()
	svc, err := NewTokenService(config.AuthConfig{
		JWTSecret:            testSecret,
		TokenLifetimeMinutes: 60,
	}, tokens)
	require.NoError(t, err)
	return svc.(*hmacTokenService)
}

func TestNewTokenService(t *testing.T) {
	t.Parallel()

	_, err := NewTokenService(config.AuthConfig{
		JWTSecret:            "too-short",
		TokenLifetimeMinutes: 60,
	}, newFakeTokenStore())
	assert.Error(t, err)

	svc, err := NewTokenService(config.AuthConfig{
		JWTSecret:            testSecret,
		TokenLifetimeMinutes: 60,
	}, newFakeTokenStore())
	require.NoError(t, err)
	assert.NotNil(t, svc)
}

func TestTokenServiceIssueAndValidate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	tokens := newFakeTokenStore()
	svc := newTestTokenService(t, tokens)
	userID := uuid.New()

	tokenString, err := svc.Issue(ctx, userID)
	require.NoError(t, err)
	require.NotEmpty(t, tokenString)

	// Issuing persists exactly one record
	require.Len(t, tokens.records, 1)

	claims, err := svc.Validate(ctx, tokenString)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, userID.String(), claims.Subject)
	assert.NotEqual(t, uuid.Nil, claims.TokenID)
	assert.True(t, claims.ExpiresAt.After(claims.IssuedAt))

	// The token's ID matches the persisted record
	_, ok := tokens.records[claims.TokenID]
	assert.True(t, ok)
}

func TestTokenServiceValidateRejectsBadTokens(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := newTestTokenService(t, newFakeTokenStore())

	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{"empty_string", "", ErrInvalidToken},
		{"garbage", "not-a-jwt", ErrInvalidToken},
		{"wrong_segments", "aaaa.bbbb", ErrInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Validate(ctx, tt.token)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	// A token signed with a different key fails the signature check
	other := newTestTokenService(t, newFakeTokenStore())
	other.signingKey = []byte("another-secret-key-thats-also-long-enough")
	foreign, err := other.Issue(ctx, uuid.New())
	require.NoError(t, err)

	_, err = svc.Validate(ctx, foreign)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenServiceValidateExpired(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	tokens := newFakeTokenStore()
	svc := newTestTokenService(t, tokens)

	issuedAt := time.Now().UTC()
	svc.timeFunc = func() time.Time { return issuedAt }

	tokenString, err := svc.Issue(ctx, uuid.New())
	require.NoError(t, err)

	// Within the lifetime the token is accepted
	svc.timeFunc = func() time.Time { return issuedAt.Add(30 * time.Minute) }
	_, err = svc.Validate(ctx, tokenString)
	require.NoError(t, err)

	// Just past expiry but inside the clock-skew leeway still passes
	svc.timeFunc = func() time.Time { return issuedAt.Add(61 * time.Minute) }
	_, err = svc.Validate(ctx, tokenString)
	require.NoError(t, err)

	// Well past expiry fails
	svc.timeFunc = func() time.Time { return issuedAt.Add(63 * time.Minute) }
	_, err = svc.Validate(ctx, tokenString)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestTokenServiceRevoke(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	tokens := newFakeTokenStore()
	svc := newTestTokenService(t, tokens)
	userID := uuid.New()

	tokenString, err := svc.Issue(ctx, userID)
	require.NoError(t, err)

	claims, err := svc.Validate(ctx, tokenString)
	require.NoError(t, err)

	// Revoking removes the record; the signature alone is no longer enough
	require.NoError(t, svc.Revoke(ctx, claims.TokenID))
	_, err = svc.Validate(ctx, tokenString)
	assert.ErrorIs(t, err, ErrRevokedToken)

	// Revoking again is an idempotent no-op
	assert.NoError(t, svc.Revoke(ctx, claims.TokenID))
}

func TestTokenServiceRevokeLeavesOtherSessions(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	tokens := newFakeTokenStore()
	svc := newTestTokenService(t, tokens)
	userID := uuid.New()

	first, err := svc.Issue(ctx, userID)
	require.NoError(t, err)
	second, err := svc.Issue(ctx, userID)
	require.NoError(t, err)

	firstClaims, err := svc.Validate(ctx, first)
	require.NoError(t, err)

	require.NoError(t, svc.Revoke(ctx, firstClaims.TokenID))

	// The same user's other session keeps working
	_, err = svc.Validate(ctx, first)
	assert.ErrorIs(t, err, ErrRevokedToken)
	_, err = svc.Validate(ctx, second)
	assert.NoError(t, err)
}
