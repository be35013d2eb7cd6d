package tracker

import (
	"context"

	"github.com/Aman-jha12/studytracker/internal/storage"
)

// WeekLength is the number of days covered by a weekly report.
const WeekLength = 7

// Aggregator builds the rolling seven day view over a daily store.
type Aggregator struct {
	store storage.DailyStore
}

// NewAggregator creates an aggregator reading from store
func NewAggregator(store storage.DailyStore) *Aggregator {
	return &Aggregator{store: store}
}

// WeeklyReport returns exactly seven records ending at today, ascending,
// with zero totals for days that have no stored record.
func (a *Aggregator) WeeklyReport(ctx context.Context, today DateKey) ([]storage.DailyRecord, error) {
	start := today.AddDays(-(WeekLength - 1))

	stored, err := a.store.QueryRange(ctx, start.String(), today.String())
	if err != nil {
		return nil, &StorageError{Op: "query_range", Err: err}
	}

	totals := make(map[string]int64, len(stored))
	for _, rec := range stored {
		totals[rec.Date] = rec.TotalSeconds
	}

	report := make([]storage.DailyRecord, 0, WeekLength)
	for i := 0; i < WeekLength; i++ {
		date := start.AddDays(i).String()
		report = append(report, storage.DailyRecord{Date: date, TotalSeconds: totals[date]})
	}
	return report, nil
}
