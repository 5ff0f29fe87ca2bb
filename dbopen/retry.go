package dbopen

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// busyAttempts bounds how often a write is re-issued when the catalog
// database is locked by a concurrent publisher.
const busyAttempts = 3

// IsBusy reports whether err is an SQLite lock-contention error. The modernc
// driver surfaces these as SQLITE_BUSY or "database (table) is locked"
// strings rather than typed errors.
func IsBusy(err error) bool {
	if err == nil {
		return false
	}
	s := err.Error()
	for _, marker := range []string{"SQLITE_BUSY", "database is locked", "database table is locked"} {
		if strings.Contains(s, marker) {
			return true
		}
	}
	return false
}

// busyBackoff is the wait before re-issuing attempt n (0-based).
func busyBackoff(n int) time.Duration {
	return time.Duration(n+1) * 100 * time.Millisecond
}

// RunTx runs fn in a transaction, re-running the whole transaction on lock
// contention. fn must be safe to execute more than once.
func RunTx(ctx context.Context, db *sql.DB, fn func(*sql.Tx) error) error {
	var err error
	for n := 0; n < busyAttempts; n++ {
		if err = inTx(ctx, db, fn); err == nil {
			return nil
		}
		if !IsBusy(err) {
			return err
		}
		if werr := wait(ctx, busyBackoff(n)); werr != nil {
			return fmt.Errorf("dbopen: retry aborted: %w", werr)
		}
	}
	return fmt.Errorf("dbopen: transaction still locked after %d attempts: %w", busyAttempts, err)
}

func inTx(ctx context.Context, db *sql.DB, fn func(*sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("dbopen: begin: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("dbopen: commit: %w", err)
	}
	return nil
}

// Exec issues a single write statement, re-issuing it on lock contention.
func Exec(ctx context.Context, db *sql.DB, query string, args ...any) (sql.Result, error) {
	var err error
	for n := 0; n < busyAttempts; n++ {
		var res sql.Result
		if res, err = db.ExecContext(ctx, query, args...); err == nil {
			return res, nil
		}
		if !IsBusy(err) {
			return nil, err
		}
		if werr := wait(ctx, busyBackoff(n)); werr != nil {
			return nil, fmt.Errorf("dbopen: retry aborted: %w", werr)
		}
	}
	return nil, fmt.Errorf("dbopen: statement still locked after %d attempts: %w", busyAttempts, err)
}

func wait(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
