package storage

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// EnsureDir ensures a directory exists with default permissions.
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}

// DateScore converts a YYYY-MM-DD key into a sortable integer (YYYYMMDD).
// Backends without ordered keys use it to index records by date.
func DateScore(date string) (int64, error) {
	if _, err := time.Parse(DateLayout, date); err != nil {
		return 0, fmt.Errorf("invalid date key %q: %w", date, err)
	}
	return strconv.ParseInt(strings.ReplaceAll(date, "-", ""), 10, 64)
}
