package txmanager

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Manager runs functions inside serializable Postgres transactions.
// Serialization failures and deadlocks are retried once before surfacing,
// since under SERIALIZABLE they are an expected outcome of contention
// rather than a real fault.
type Manager struct {
	pool *pgxpool.Pool
}

// New creates a transaction manager over the given pool.
func New(pool *pgxpool.Pool) *Manager {
	return &Manager{pool: pool}
}

const maxAttempts = 2

// DoSerializable executes fn inside a serializable transaction, committing
// on success and rolling back on error. fn must perform all storage access
// through the supplied pgx.Tx.
func (m *Manager) DoSerializable(ctx context.Context, fn func(tx pgx.Tx) error) error {
	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		lastErr = m.runOnce(ctx, fn)
		if lastErr == nil {
			return nil
		}
		if !isRetryable(lastErr) {
			return lastErr
		}
	}

	return fmt.Errorf("transaction retries exhausted: %w", lastErr)
}

func (m *Manager) runOnce(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := m.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return fmt.Errorf("begin serializable tx: %w", err)
	}
	// Rollback is a no-op after a successful commit.
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func isRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == pgerrcode.SerializationFailure || pgErr.Code == pgerrcode.DeadlockDetected
}
