package tracker

import (
	"time"

	"github.com/Aman-jha12/studytracker/internal/storage"
)

// DateKey is a civil calendar date held as UTC midnight.
type DateKey struct {
	t time.Time
}

// ParseDate parses a YYYY-MM-DD string. Only the exact canonical form is
// accepted, so "2024-3-10" or "2024-02-30" are rejected.
func ParseDate(s string) (DateKey, error) {
	if s == "" {
		return DateKey{}, invalid("date", "date is required")
	}
	t, err := time.Parse(storage.DateLayout, s)
	if err != nil || t.Format(storage.DateLayout) != s {
		return DateKey{}, invalid("date", "expected YYYY-MM-DD, got "+s)
	}
	return DateKey{t: t}, nil
}

// DateOf returns the calendar date of t as observed in loc.
func DateOf(t time.Time, loc *time.Location) DateKey {
	y, m, d := t.In(loc).Date()
	return DateKey{t: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// AddDays shifts the date by n calendar days.
func (d DateKey) AddDays(n int) DateKey {
	return DateKey{t: d.t.AddDate(0, 0, n)}
}

// Before reports whether d is strictly earlier than other.
func (d DateKey) Before(other DateKey) bool {
	return d.t.Before(other.t)
}

func (d DateKey) String() string {
	return d.t.Format(storage.DateLayout)
}
