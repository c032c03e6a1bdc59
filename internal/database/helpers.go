package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/thenoetrevino/boardsync/internal/models"
	"github.com/thenoetrevino/boardsync/internal/types"
)

const (
	txMaxAttempts = 3
	txBaseBackoff = 50 * time.Millisecond
)

// withTx executes a function within a database transaction.
// It automatically handles begin, rollback on error, and commit on success.
func withTx(ctx context.Context, db *sql.DB, fn func(*sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			slog.Warn("failed to rollback transaction", "error", err)
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// withRetryTx runs fn in a transaction, re-running the whole transaction
// when SQLite reports a lock conflict. Each attempt starts from scratch, so
// fn must re-read every row it depends on. After the last attempt the error
// is surfaced as models.ErrStorageConflict.
func withRetryTx(ctx context.Context, db *sql.DB, fn func(*sql.Tx) error) error {
	var err error
	for attempt := 0; attempt < txMaxAttempts; attempt++ {
		if attempt > 0 {
			backoff := txBaseBackoff * time.Duration(1<<uint(attempt-1))
			slog.Debug("retrying transaction after conflict",
				"attempt", attempt+1,
				"backoff", backoff,
				"error", err)
			select {
			case <-ctx.Done():
				return fmt.Errorf("%w: %w", models.ErrStorageConflict, ctx.Err())
			case <-time.After(backoff):
			}
		}

		err = withTx(ctx, db, fn)
		if err == nil || !isConflict(err) {
			return classifyStoreError(err)
		}
	}

	slog.Warn("transaction failed after retries", "attempts", txMaxAttempts, "error", err)
	return classifyStoreError(err)
}

// sqliteCode extracts the primary and extended result codes from a driver error.
func sqliteCode(err error) (primary, extended int, ok bool) {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return 0, 0, false
	}
	return sqliteErr.Code() & 0xff, sqliteErr.Code(), true
}

// isConflict reports whether err is a lock conflict that a retry may clear.
func isConflict(err error) bool {
	primary, _, ok := sqliteCode(err)
	return ok && (primary == sqlite3.SQLITE_BUSY || primary == sqlite3.SQLITE_LOCKED)
}

// classifyStoreError maps driver failures onto the shared error taxonomy.
// Errors that already carry a taxonomy sentinel pass through untouched.
func classifyStoreError(err error) error {
	if err == nil {
		return nil
	}
	if isConflict(err) {
		return fmt.Errorf("%w: %w", models.ErrStorageConflict, err)
	}
	if _, extended, ok := sqliteCode(err); ok && extended == sqlite3.SQLITE_CONSTRAINT_UNIQUE {
		// A duplicate prev/next pointer means a chain would fork.
		return fmt.Errorf("%w: %w", models.ErrInvariantViolation, err)
	}
	return err
}

// notFound wraps sql.ErrNoRows as models.ErrNotFound and passes anything else through.
func notFound(err error, what string, id types.ID) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s %s", models.ErrNotFound, what, id)
	}
	return fmt.Errorf("loading %s %s: %w", what, id, err)
}

// nullID converts an optional id into a query argument.
func nullID(id *types.ID) any {
	if id == nil || id.IsZero() {
		return nil
	}
	return string(*id)
}

// nullStringToID converts a nullable column into an optional id.
func nullStringToID(ns sql.NullString) *types.ID {
	if !ns.Valid {
		return nil
	}
	return types.ID(ns.String).Ptr()
}
