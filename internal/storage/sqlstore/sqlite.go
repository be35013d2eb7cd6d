package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"

	"github.com/Aman-jha12/studytracker/internal/storage"

	_ "modernc.org/sqlite"
)

// OpenSQLite opens (creating if needed) a SQLite database file.
//
// Writers are funnelled through a single connection and SQLite's busy
// timeout, so concurrent upserts from this process queue instead of failing
// with SQLITE_BUSY.
func OpenSQLite(ctx context.Context, path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := storage.EnsureDir(dir); err != nil {
			return nil, err
		}
	}

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	return newStore(ctx, db, 0)
}
