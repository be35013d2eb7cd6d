package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Aman-jha12/studytracker/internal/storage"
)

// The upsert is one statement: the database applies the conflict update
// under its own write lock, so concurrent increments of the same date are
// serialised without any read-then-write in Go.
const upsertDailyQuery = `
INSERT INTO daily_totals (date, total_seconds) VALUES (?, ?)
ON CONFLICT(date) DO UPDATE SET total_seconds = daily_totals.total_seconds + excluded.total_seconds
RETURNING total_seconds`

type dailyStore struct {
	db         *sql.DB
	maxRetries int
}

func (s *dailyStore) IncrementAndGet(ctx context.Context, date string, deltaSeconds int64) (*storage.DailyRecord, error) {
	total, err := withRetry(ctx, s.maxRetries, func() (int64, error) {
		var total int64
		err := s.db.QueryRowContext(ctx, upsertDailyQuery, date, deltaSeconds).Scan(&total)
		return total, err
	})
	if err != nil {
		return nil, fmt.Errorf("upsert daily total: %w", err)
	}
	return &storage.DailyRecord{Date: date, TotalSeconds: total}, nil
}

func (s *dailyStore) Get(ctx context.Context, date string) (*storage.DailyRecord, error) {
	total, err := withRetry(ctx, s.maxRetries, func() (int64, error) {
		var total int64
		err := s.db.QueryRowContext(ctx, `SELECT total_seconds FROM daily_totals WHERE date = ?`, date).Scan(&total)
		return total, err
	})
	if errors.Is(err, sql.ErrNoRows) {
		return storage.ZeroRecord(date), nil
	}
	if err != nil {
		return nil, fmt.Errorf("select daily total: %w", err)
	}
	return &storage.DailyRecord{Date: date, TotalSeconds: total}, nil
}

func (s *dailyStore) QueryRange(ctx context.Context, startDate, endDate string) ([]storage.DailyRecord, error) {
	return withRetry(ctx, s.maxRetries, func() ([]storage.DailyRecord, error) {
		rows, err := s.db.QueryContext(ctx, `
			SELECT date, total_seconds FROM daily_totals
			WHERE date >= ? AND date <= ?
			ORDER BY date ASC`, startDate, endDate)
		if err != nil {
			return nil, err
		}
		defer rows.Close()

		records := make([]storage.DailyRecord, 0)
		for rows.Next() {
			var record storage.DailyRecord
			if err := rows.Scan(&record.Date, &record.TotalSeconds); err != nil {
				return nil, err
			}
			records = append(records, record)
		}
		return records, rows.Err()
	})
}

func (s *dailyStore) DeleteBefore(ctx context.Context, cutoffDate string) (int, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM daily_totals WHERE date < ?`, cutoffDate)
	if err != nil {
		return 0, fmt.Errorf("delete daily totals: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(rows), nil
}
