package main

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/rcavanagh/taskboard-api/internal/store"
)

// tokenSweepInterval is how often revocable-token records past their expiry
// are purged. Expired tokens are already rejected at validation time; the
// sweep only keeps the table from growing without bound.
const tokenSweepInterval = time.Hour

// sweepExpiredTokens runs the purge loop until the context is cancelled.
func sweepExpiredTokens(ctx context.Context, db *sql.DB, tokens store.TokenStore, logger *slog.Logger) {
	log := logger.With(slog.String("component", "token_sweeper"))
	ticker := time.NewTicker(tokenSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Debug("token sweeper stopped")
			return
		case <-ticker.C:
			err := store.RunInTransaction(ctx, db, func(ctx context.Context, tx *sql.Tx) error {
				removed, err := tokens.WithTx(tx).DeleteExpired(ctx)
				if err != nil {
					return err
				}
				if removed > 0 {
					log.Info("purged expired tokens", slog.Int64("removed", removed))
				}
				return nil
			})
			if err != nil {
				log.Error("token sweep failed", slog.String("error", err.Error()))
			}
		}
	}
}
