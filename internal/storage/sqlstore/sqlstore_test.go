package sqlstore

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "studytracker.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestDailyStore_UpsertAccumulates(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	record, err := store.Daily().IncrementAndGet(ctx, "2024-03-10", 1800)
	if err != nil {
		t.Fatalf("increment: %v", err)
	}
	if record.TotalSeconds != 1800 {
		t.Fatalf("expected 1800, got %d", record.TotalSeconds)
	}

	record, err = store.Daily().IncrementAndGet(ctx, "2024-03-10", 300)
	if err != nil {
		t.Fatalf("increment: %v", err)
	}
	if record.TotalSeconds != 2100 {
		t.Fatalf("expected 2100, got %d", record.TotalSeconds)
	}

	missing, err := store.Daily().Get(ctx, "2024-03-11")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if missing.Date != "2024-03-11" || missing.TotalSeconds != 0 {
		t.Fatalf("expected zero record, got %+v", *missing)
	}
}

func TestDailyStore_ConcurrentUpserts(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	const workers = 25
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := store.Daily().IncrementAndGet(ctx, "2024-06-01", 1); err != nil {
				t.Errorf("increment: %v", err)
			}
		}()
	}
	wg.Wait()

	record, err := store.Daily().Get(ctx, "2024-06-01")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if record.TotalSeconds != workers {
		t.Fatalf("expected %d, got %d", workers, record.TotalSeconds)
	}
}

func TestDailyStore_QueryRangeAndDelete(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	for _, date := range []string{"2024-01-05", "2024-01-01", "2024-01-03", "2024-01-08"} {
		if _, err := store.Daily().IncrementAndGet(ctx, date, 10); err != nil {
			t.Fatalf("increment %s: %v", date, err)
		}
	}

	records, err := store.Daily().QueryRange(ctx, "2024-01-02", "2024-01-07")
	if err != nil {
		t.Fatalf("query range: %v", err)
	}
	if len(records) != 2 || records[0].Date != "2024-01-03" || records[1].Date != "2024-01-05" {
		t.Fatalf("unexpected range result: %+v", records)
	}

	deleted, err := store.Daily().DeleteBefore(ctx, "2024-01-05")
	if err != nil {
		t.Fatalf("delete before: %v", err)
	}
	if deleted != 2 {
		t.Fatalf("expected 2 deleted, got %d", deleted)
	}
}

func TestWithRetry(t *testing.T) {
	tests := []struct {
		name      string
		failures  []error
		wantCalls int
		wantErr   bool
	}{
		{name: "success first try", failures: nil, wantCalls: 1},
		{name: "stream error then success", failures: []error{errors.New("stream not found")}, wantCalls: 2},
		{name: "other error is not retried", failures: []error{errors.New("constraint failed")}, wantCalls: 1, wantErr: true},
		{
			name:      "gives up after max retries",
			failures:  []error{errors.New("stream not found"), errors.New("stream not found"), errors.New("stream not found")},
			wantCalls: 3,
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			_, err := withRetry(context.Background(), 2, func() (int, error) {
				calls++
				if calls <= len(tt.failures) {
					return 0, tt.failures[calls-1]
				}
				return 42, nil
			})
			if calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls, tt.wantCalls)
			}
			if (err != nil) != tt.wantErr {
				t.Errorf("err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
