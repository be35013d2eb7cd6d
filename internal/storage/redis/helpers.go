package redis

import (
	"fmt"
	"strconv"

	"github.com/Aman-jha12/studytracker/internal/storage"
)

// parseDailyRecord converts a Redis hash to DailyRecord
func parseDailyRecord(data map[string]string) (*storage.DailyRecord, error) {
	if len(data) == 0 {
		return nil, storage.ErrNotFound
	}

	totalSeconds, err := strconv.ParseInt(data[fieldTotal], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("failed to parse total_seconds: %w", err)
	}

	return &storage.DailyRecord{
		Date:         data[fieldDate],
		TotalSeconds: totalSeconds,
	}, nil
}
