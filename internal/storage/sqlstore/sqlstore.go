// Package sqlstore stores daily totals in a SQL table through database/sql.
// The same statements run against a local SQLite file (modernc.org/sqlite)
// and a remote libSQL/Turso database (go-libsql).
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/Aman-jha12/studytracker/internal/storage"
)

const schema = `
CREATE TABLE IF NOT EXISTS daily_totals (
	date TEXT PRIMARY KEY,
	total_seconds INTEGER NOT NULL DEFAULT 0 CHECK (total_seconds >= 0)
)`

// Store implements storage.Store over a *sql.DB.
type Store struct {
	db         *sql.DB
	maxRetries int
}

func newStore(ctx context.Context, db *sql.DB, maxRetries int) (*Store, error) {
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create daily_totals table: %w", err)
	}

	return &Store{db: db, maxRetries: maxRetries}, nil
}

// Close closes the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Daily returns the daily totals store.
func (s *Store) Daily() storage.DailyStore {
	return &dailyStore{db: s.db, maxRetries: s.maxRetries}
}

// isStreamError reports the libSQL "stream not found" error raised when the
// server has already dropped an idle Hrana stream.
func isStreamError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "stream not found")
}

// withRetry re-runs fn on stream errors only. Every statement passed here is
// a single atomic statement, so a retry never double-applies an increment
// that the server rejected.
func withRetry[T any](ctx context.Context, maxRetries int, fn func() (T, error)) (T, error) {
	var result T
	var err error

	for attempt := 0; attempt <= maxRetries; attempt++ {
		result, err = fn()
		if err == nil {
			return result, nil
		}

		if !isStreamError(err) || attempt == maxRetries {
			return result, err
		}

		select {
		case <-ctx.Done():
			return result, ctx.Err()
		case <-time.After(10 * time.Millisecond):
		}
	}

	return result, err
}
