package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/Aman-jha12/studytracker/internal/storage"
	"github.com/Aman-jha12/studytracker/internal/storage/bolt"
	"github.com/Aman-jha12/studytracker/internal/tracker"
)

func setupTestServer(t *testing.T, cfg Config) *Server {
	t.Helper()

	store, err := bolt.Open(filepath.Join(t.TempDir(), "api.bolt"))
	if err != nil {
		t.Fatalf("Failed to open bolt store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	svc := tracker.NewService(store.Daily(), tracker.Options{
		Clock:  &tracker.TestClock{CurrentTime: time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)},
		Logger: zerolog.Nop(),
	})
	return NewServer(cfg, svc, store.Ping, zerolog.Nop())
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeRecord(t *testing.T, rec *httptest.ResponseRecorder) storage.DailyRecord {
	t.Helper()

	var out storage.DailyRecord
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return out
}

func TestRootBanner(t *testing.T) {
	s := setupTestServer(t, Config{})

	rec := do(t, s, http.MethodGet, "/", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if rec.Body.String() != "Study Tracker API is running" {
		t.Errorf("body = %q", rec.Body.String())
	}
	if rec.Header().Get(RequestIDHeader) == "" {
		t.Error("expected a request id header")
	}
}

func TestRecordAndGetTotal(t *testing.T) {
	s := setupTestServer(t, Config{})

	rec := do(t, s, http.MethodPost, "/api/study-time", `{"date":"2024-03-10","seconds":1800}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("first POST status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if got := decodeRecord(t, rec); got.TotalSeconds != 1800 {
		t.Errorf("first total = %d, want 1800", got.TotalSeconds)
	}

	rec = do(t, s, http.MethodPost, "/api/study-time", `{"date":"2024-03-10","seconds":300}`)
	if got := decodeRecord(t, rec); got.Date != "2024-03-10" || got.TotalSeconds != 2100 {
		t.Errorf("second POST = %+v, want 2024-03-10/2100", got)
	}

	rec = do(t, s, http.MethodGet, "/api/study-time/2024-03-10", "")
	if got := decodeRecord(t, rec); got.TotalSeconds != 2100 {
		t.Errorf("GET total = %d, want 2100", got.TotalSeconds)
	}

	rec = do(t, s, http.MethodGet, "/api/study-time/2024-03-11", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET unseen status = %d", rec.Code)
	}
	if got := decodeRecord(t, rec); got.Date != "2024-03-11" || got.TotalSeconds != 0 {
		t.Errorf("GET unseen = %+v, want zero record", got)
	}
}

func TestRecordValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing date", `{"seconds":30}`},
		{"empty date", `{"date":"","seconds":30}`},
		{"non-numeric seconds", `{"date":"2024-03-10","seconds":"thirty"}`},
		{"missing seconds", `{"date":"2024-03-10"}`},
		{"negative seconds", `{"date":"2024-03-10","seconds":-1}`},
		{"malformed json", `{"date":`},
	}

	s := setupTestServer(t, Config{})

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, http.MethodPost, "/api/study-time", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400 (body %s)", rec.Code, rec.Body.String())
			}

			var resp ErrorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode error body: %v", err)
			}
			if resp.Code != http.StatusBadRequest || resp.Message == "" {
				t.Errorf("unexpected error body: %+v", resp)
			}
		})
	}

	// Nothing was stored by the rejected requests
	rec := do(t, s, http.MethodGet, "/api/study-time/2024-03-10", "")
	if got := decodeRecord(t, rec); got.TotalSeconds != 0 {
		t.Errorf("total after rejected requests = %d, want 0", got.TotalSeconds)
	}
}

func TestGetTotalMalformedDate(t *testing.T) {
	s := setupTestServer(t, Config{})

	rec := do(t, s, http.MethodGet, "/api/study-time/03-10-2024", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestWeeklyReport(t *testing.T) {
	s := setupTestServer(t, Config{})

	do(t, s, http.MethodPost, "/api/study-time", `{"date":"2024-03-10","seconds":120}`)

	rec := do(t, s, http.MethodGet, "/api/weekly-report", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var report []storage.DailyRecord
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if len(report) != 7 {
		t.Fatalf("len(report) = %d, want 7", len(report))
	}
	if report[0].Date != "2024-03-04" || report[6].Date != "2024-03-10" {
		t.Errorf("window = %s..%s, want 2024-03-04..2024-03-10", report[0].Date, report[6].Date)
	}
	if report[6].TotalSeconds != 120 {
		t.Errorf("today total = %d, want 120", report[6].TotalSeconds)
	}
}

type brokenStore struct{}

func (brokenStore) IncrementAndGet(context.Context, string, int64) (*storage.DailyRecord, error) {
	return nil, errors.New("down")
}
func (brokenStore) Get(context.Context, string) (*storage.DailyRecord, error) {
	return nil, errors.New("down")
}
func (brokenStore) QueryRange(context.Context, string, string) ([]storage.DailyRecord, error) {
	return nil, errors.New("down")
}
func (brokenStore) DeleteBefore(context.Context, string) (int, error) {
	return 0, errors.New("down")
}

func TestStorageFailureReturns500(t *testing.T) {
	svc := tracker.NewService(brokenStore{}, tracker.Options{Logger: zerolog.Nop()})
	health := func(context.Context) error { return errors.New("down") }
	s := NewServer(Config{}, svc, health, zerolog.Nop())

	for _, tc := range []struct{ method, path, body string }{
		{http.MethodPost, "/api/study-time", `{"date":"2024-03-10","seconds":30}`},
		{http.MethodGet, "/api/study-time/2024-03-10", ""},
		{http.MethodGet, "/api/weekly-report", ""},
	} {
		rec := do(t, s, tc.method, tc.path, tc.body)
		if rec.Code != http.StatusInternalServerError {
			t.Errorf("%s %s status = %d, want 500", tc.method, tc.path, rec.Code)
		}
		if strings.Contains(rec.Body.String(), "down") {
			t.Errorf("%s %s leaked storage error: %s", tc.method, tc.path, rec.Body.String())
		}
	}

	if rec := do(t, s, http.MethodGet, "/health", ""); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("health status = %d, want 503", rec.Code)
	}
}
