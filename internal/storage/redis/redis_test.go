package redis

import (
	"context"
	"sync"
	"testing"

	"github.com/Aman-jha12/studytracker/internal/config"
	"github.com/alicebob/miniredis/v2"
)

func setupTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)

	// miniredis.Addr() returns "host:port", so Port stays 0
	cfg := config.RedisConfig{
		Host:         mr.Addr(),
		Port:         0,
		DB:           0,
		PoolSize:     10,
		MinIdleConns: 5,
		DialTimeout:  "5s",
		ReadTimeout:  "3s",
		WriteTimeout: "3s",
	}

	store, err := Open(cfg)
	if err != nil {
		t.Fatalf("Failed to open Redis store: %v", err)
	}

	return store, mr
}

func TestDailyStore_IncrementAndGet(t *testing.T) {
	store, _ := setupTestStore(t)
	defer func() { _ = store.Close() }()

	ctx := context.Background()
	daily := store.Daily()

	record, err := daily.IncrementAndGet(ctx, "2024-03-10", 1800)
	if err != nil {
		t.Fatalf("IncrementAndGet failed: %v", err)
	}
	if record.Date != "2024-03-10" || record.TotalSeconds != 1800 {
		t.Errorf("Expected {2024-03-10 1800}, got %+v", *record)
	}

	record, err = daily.IncrementAndGet(ctx, "2024-03-10", 300)
	if err != nil {
		t.Fatalf("Second IncrementAndGet failed: %v", err)
	}
	if record.TotalSeconds != 2100 {
		t.Errorf("Expected TotalSeconds 2100, got %d", record.TotalSeconds)
	}

	got, err := daily.Get(ctx, "2024-03-10")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.TotalSeconds != 2100 {
		t.Errorf("Expected stored TotalSeconds 2100, got %d", got.TotalSeconds)
	}
}

func TestDailyStore_GetMissingReturnsZero(t *testing.T) {
	store, mr := setupTestStore(t)
	defer func() { _ = store.Close() }()

	record, err := store.Daily().Get(context.Background(), "2024-03-11")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if record.Date != "2024-03-11" || record.TotalSeconds != 0 {
		t.Errorf("Expected zero record, got %+v", *record)
	}

	// Lookup must not create anything
	if mr.Exists(recordKey("2024-03-11")) {
		t.Error("Expected Get not to create a record")
	}
}

func TestDailyStore_ConcurrentIncrements(t *testing.T) {
	store, _ := setupTestStore(t)
	defer func() { _ = store.Close() }()

	ctx := context.Background()
	const workers = 50

	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := store.Daily().IncrementAndGet(ctx, "2024-01-15", 1); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Fatalf("IncrementAndGet failed: %v", err)
	}

	record, err := store.Daily().Get(ctx, "2024-01-15")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if record.TotalSeconds != workers {
		t.Errorf("Expected TotalSeconds %d, got %d", workers, record.TotalSeconds)
	}
}

func TestDailyStore_QueryRange(t *testing.T) {
	store, _ := setupTestStore(t)
	defer func() { _ = store.Close() }()

	ctx := context.Background()
	daily := store.Daily()

	// Inserted out of order on purpose
	for _, entry := range []struct {
		date    string
		seconds int64
	}{
		{"2024-01-20", 20},
		{"2024-01-14", 14},
		{"2024-01-15", 15},
		{"2024-01-17", 17},
		{"2024-01-21", 21},
	} {
		if _, err := daily.IncrementAndGet(ctx, entry.date, entry.seconds); err != nil {
			t.Fatalf("IncrementAndGet(%s) failed: %v", entry.date, err)
		}
	}

	records, err := daily.QueryRange(ctx, "2024-01-15", "2024-01-20")
	if err != nil {
		t.Fatalf("QueryRange failed: %v", err)
	}

	want := []string{"2024-01-15", "2024-01-17", "2024-01-20"}
	if len(records) != len(want) {
		t.Fatalf("Expected %d records, got %d: %+v", len(want), len(records), records)
	}
	for i, date := range want {
		if records[i].Date != date {
			t.Errorf("records[%d].Date = %s, want %s", i, records[i].Date, date)
		}
	}
	if records[1].TotalSeconds != 17 {
		t.Errorf("Expected 17 seconds on 2024-01-17, got %d", records[1].TotalSeconds)
	}
}

func TestDailyStore_QueryRangeEmpty(t *testing.T) {
	store, _ := setupTestStore(t)
	defer func() { _ = store.Close() }()

	records, err := store.Daily().QueryRange(context.Background(), "2024-01-01", "2024-01-07")
	if err != nil {
		t.Fatalf("QueryRange failed: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("Expected no records, got %d", len(records))
	}
}

func TestDailyStore_DeleteBefore(t *testing.T) {
	store, mr := setupTestStore(t)
	defer func() { _ = store.Close() }()

	ctx := context.Background()
	daily := store.Daily()

	for _, date := range []string{"2024-01-01", "2024-01-02", "2024-01-03"} {
		if _, err := daily.IncrementAndGet(ctx, date, 60); err != nil {
			t.Fatalf("IncrementAndGet(%s) failed: %v", date, err)
		}
	}

	deleted, err := daily.DeleteBefore(ctx, "2024-01-03")
	if err != nil {
		t.Fatalf("DeleteBefore failed: %v", err)
	}
	if deleted != 2 {
		t.Errorf("Expected 2 deleted records, got %d", deleted)
	}

	if mr.Exists(recordKey("2024-01-01")) {
		t.Error("Expected 2024-01-01 to be deleted")
	}

	records, err := daily.QueryRange(ctx, "2024-01-01", "2024-01-31")
	if err != nil {
		t.Fatalf("QueryRange failed: %v", err)
	}
	if len(records) != 1 || records[0].Date != "2024-01-03" {
		t.Errorf("Expected only 2024-01-03 to remain, got %+v", records)
	}
}

func TestDailyStore_InvalidDate(t *testing.T) {
	store, _ := setupTestStore(t)
	defer func() { _ = store.Close() }()

	if _, err := store.Daily().IncrementAndGet(context.Background(), "2024-13-01", 10); err == nil {
		t.Error("Expected error for invalid date")
	}
}

func TestStore_PingAfterServerClose(t *testing.T) {
	store, mr := setupTestStore(t)
	defer func() { _ = store.Close() }()

	if err := store.Ping(context.Background()); err != nil {
		t.Fatalf("Ping failed: %v", err)
	}

	mr.Close()

	if err := store.Ping(context.Background()); err == nil {
		t.Error("Expected Ping to fail after server close")
	}
}
