package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/tursodatabase/go-libsql"
)

// OpenTurso connects to a remote libSQL database.
func OpenTurso(ctx context.Context, url, authToken string) (*Store, error) {
	connStr := url
	if authToken != "" {
		connStr = url + "?authToken=" + authToken
	}

	db, err := sql.Open("libsql", connStr)
	if err != nil {
		return nil, fmt.Errorf("open libsql: %w", err)
	}

	// Turso aggressively closes idle streams; keep no idle connections so
	// stale ones are never reused.
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(0)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(0)

	return newStore(ctx, db, 2)
}
