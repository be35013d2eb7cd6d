package tracker

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestWeeklyReportShape(t *testing.T) {
	svc, _ := setupTestService(t, time.Date(2024, 3, 2, 9, 0, 0, 0, time.UTC))

	report, err := svc.WeeklyReport(context.Background())
	if err != nil {
		t.Fatalf("WeeklyReport() error = %v", err)
	}
	if len(report) != WeekLength {
		t.Fatalf("len(report) = %d, want %d", len(report), WeekLength)
	}

	// Window crosses the end of February in a leap year
	want := []string{"2024-02-25", "2024-02-26", "2024-02-27", "2024-02-28", "2024-02-29", "2024-03-01", "2024-03-02"}
	for i, rec := range report {
		if rec.Date != want[i] {
			t.Errorf("report[%d].Date = %s, want %s", i, rec.Date, want[i])
		}
	}
}

func TestWeeklyReportZeroFill(t *testing.T) {
	svc, _ := setupTestService(t, march10)
	ctx := context.Background()

	if _, err := svc.RecordSession(ctx, "2024-03-10", 120); err != nil {
		t.Fatalf("RecordSession() error = %v", err)
	}
	// Outside the window, must not appear
	if _, err := svc.RecordSession(ctx, "2024-03-03", 999); err != nil {
		t.Fatalf("RecordSession() error = %v", err)
	}

	report, err := svc.WeeklyReport(ctx)
	if err != nil {
		t.Fatalf("WeeklyReport() error = %v", err)
	}

	for i, rec := range report[:6] {
		if rec.TotalSeconds != 0 {
			t.Errorf("report[%d] = %+v, want zero", i, rec)
		}
	}
	if last := report[6]; last.Date != "2024-03-10" || last.TotalSeconds != 120 {
		t.Errorf("last entry = %+v, want 2024-03-10/120", last)
	}
}

func TestWeeklyReportUsesConfiguredZone(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*60*60)
	// 2024-03-10 20:00 UTC is already 2024-03-11 in UTC+10
	now := time.Date(2024, 3, 10, 20, 0, 0, 0, time.UTC)

	svc, store := setupTestService(t, now)
	svc = NewService(store, Options{Location: loc, Clock: &TestClock{CurrentTime: now}, Logger: zerolog.Nop()})

	report, err := svc.WeeklyReport(context.Background())
	if err != nil {
		t.Fatalf("WeeklyReport() error = %v", err)
	}
	if got := report[len(report)-1].Date; got != "2024-03-11" {
		t.Errorf("last date = %s, want 2024-03-11", got)
	}
	if got := report[0].Date; got != "2024-03-05" {
		t.Errorf("first date = %s, want 2024-03-05", got)
	}
}

func TestParseDateAndAddDays(t *testing.T) {
	d, err := ParseDate("2023-12-30")
	if err != nil {
		t.Fatalf("ParseDate() error = %v", err)
	}
	if got := d.AddDays(3).String(); got != "2024-01-02" {
		t.Errorf("AddDays(3) = %s, want 2024-01-02", got)
	}
	if got := d.AddDays(-365).String(); got != "2022-12-30" {
		t.Errorf("AddDays(-365) = %s, want 2022-12-30", got)
	}
	if !d.Before(d.AddDays(1)) {
		t.Error("expected date to be before the next day")
	}
}
