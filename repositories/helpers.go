package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/lib/pq"
)

// SQLExecutor is satisfied by both *sql.DB and *sql.Tx.
type SQLExecutor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// SQLSTATE codes mapped to sentinel errors.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

func checkAffectedRows(result sql.Result, notFoundError error) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if rowsAffected == 0 {
		return notFoundError
	}
	return nil
}

func getExecutor(exec SQLExecutor, db *sql.DB) SQLExecutor {
	if exec != nil {
		return exec
	}
	return db
}

func asPQError(err error) (*pq.Error, bool) {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr, true
	}
	return nil, false
}

// EventLocker runs fn inside a transaction that holds the per-event advisory lock.
// Everything that mutates the bracket of an event goes through it, so two requests for
// the same event never interleave, even across processes.
type EventLocker interface {
	WithEventLock(ctx context.Context, eventID string, fn func(exec SQLExecutor) error) error
}

type postgresEventLocker struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewPostgresEventLocker(db *sql.DB, logger *slog.Logger) EventLocker {
	return &postgresEventLocker{db: db, logger: logger}
}

func (l *postgresEventLocker) WithEventLock(ctx context.Context, eventID string, fn func(exec SQLExecutor) error) (txErr error) {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		} else if txErr != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				l.logger.Error("transaction rollback failed", slog.String("event_id", eventID), slog.Any("error", rbErr))
				txErr = fmt.Errorf("transaction processing error: %w (rollback also failed: %v)", txErr, rbErr)
			}
		} else if cErr := tx.Commit(); cErr != nil {
			txErr = fmt.Errorf("failed to commit transaction for event %s: %w", eventID, cErr)
		}
	}()

	if err := LockEvent(ctx, tx, eventID); err != nil {
		return err
	}
	return fn(tx)
}

// LockEvent takes a transaction-scoped advisory lock keyed by the event id.
// The lock is released on commit or rollback.
func LockEvent(ctx context.Context, exec SQLExecutor, eventID string) error {
	if _, err := exec.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, eventID); err != nil {
		return fmt.Errorf("failed to lock event %s: %w", eventID, err)
	}
	return nil
}
