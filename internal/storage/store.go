package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a record is missing from storage.
var ErrNotFound = errors.New("storage: record not found")

// Store represents the root storage interface.
type Store interface {
	Close() error
	Ping(ctx context.Context) error
	Daily() DailyStore
}

// DailyStore manages the per-day study time counters.
//
// IncrementAndGet must be linearizable per date: two concurrent increments
// for the same date are both reflected in the final total. Each backend
// documents the primitive it relies on for that guarantee.
type DailyStore interface {
	IncrementAndGet(ctx context.Context, date string, deltaSeconds int64) (*DailyRecord, error)
	Get(ctx context.Context, date string) (*DailyRecord, error)
	QueryRange(ctx context.Context, startDate, endDate string) ([]DailyRecord, error)
	DeleteBefore(ctx context.Context, cutoffDate string) (int, error)
}
