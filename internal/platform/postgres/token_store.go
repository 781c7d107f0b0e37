package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/rcavanagh/taskboard-api/internal/platform/logger"
	"github.com/rcavanagh/taskboard-api/internal/store"
)

// PostgresTokenStore implements the store.TokenStore interface
// using a PostgreSQL database as the storage backend.
type PostgresTokenStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTokenStore creates a new PostgreSQL implementation of the
// TokenStore interface. If logger is nil, a default logger is used.
func NewPostgresTokenStore(db store.DBTX, logger *slog.Logger) *PostgresTokenStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresTokenStore{
		db:     db,
		logger: logger.With(slog.String("component", "token_store")),
	}
}

// Ensure PostgresTokenStore implements store.TokenStore interface
var _ store.TokenStore = (*PostgresTokenStore)(nil)

// Create implements store.TokenStore.Create
// Returns store.ErrInvalidEntity if the user the token references does not exist.
func (s *PostgresTokenStore) Create(ctx context.Context, token *store.APIToken) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		INSERT INTO api_tokens (id, user_id, created_at, expires_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		token.ID,
		token.UserID,
		token.CreatedAt,
		token.ExpiresAt,
	)

	if err != nil {
		if isForeignKeyViolation(err) {
			log.Warn("foreign key violation during token creation",
				slog.String("token_id", token.ID.String()),
				slog.String("user_id", token.UserID.String()))
			return fmt.Errorf("%w: user with ID %s not found",
				store.ErrInvalidEntity, token.UserID)
		}

		log.Error("failed to create token record",
			slog.String("error", err.Error()),
			slog.String("token_id", token.ID.String()))
		return err
	}

	return nil
}

// GetByID implements store.TokenStore.GetByID
// Returns store.ErrTokenNotFound if the token does not exist.
func (s *PostgresTokenStore) GetByID(ctx context.Context, id uuid.UUID) (*store.APIToken, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, user_id, created_at, expires_at
		FROM api_tokens
		WHERE id = $1
	`

	var token store.APIToken
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&token.ID,
		&token.UserID,
		&token.CreatedAt,
		&token.ExpiresAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("token not found", slog.String("token_id", id.String()))
			return nil, store.ErrTokenNotFound
		}
		log.Error("failed to get token by ID",
			slog.String("error", err.Error()),
			slog.String("token_id", id.String()))
		return nil, err
	}

	return &token, nil
}

// Delete implements store.TokenStore.Delete
// Returns store.ErrTokenNotFound if the token does not exist.
func (s *PostgresTokenStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM api_tokens WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete token",
			slog.String("error", err.Error()),
			slog.String("token_id", id.String()))
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Error("failed to get rows affected",
			slog.String("error", err.Error()),
			slog.String("token_id", id.String()))
		return err
	}

	if rowsAffected == 0 {
		log.Debug("token not found for delete",
			slog.String("token_id", id.String()))
		return store.ErrTokenNotFound
	}

	log.Debug("token deleted", slog.String("token_id", id.String()))
	return nil
}

// DeleteExpired implements store.TokenStore.DeleteExpired
func (s *PostgresTokenStore) DeleteExpired(ctx context.Context) (int64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx,
		`DELETE FROM api_tokens WHERE expires_at < $1`, time.Now().UTC())
	if err != nil {
		log.Error("failed to delete expired tokens",
			slog.String("error", err.Error()))
		return 0, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Error("failed to get rows affected",
			slog.String("error", err.Error()))
		return 0, err
	}

	if rowsAffected > 0 {
		log.Info("expired tokens removed",
			slog.Int64("count", rowsAffected))
	}
	return rowsAffected, nil
}

// WithTx implements store.TokenStore.WithTx
func (s *PostgresTokenStore) WithTx(tx *sql.Tx) store.TokenStore {
	return &PostgresTokenStore{
		db:     tx,
		logger: s.logger,
	}
}
