package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/Aman-jha12/studytracker/internal/storage"
	"github.com/redis/go-redis/v9"
)

// dailyStore keeps one hash per date plus a sorted-set index scored by
// YYYYMMDD. Increments run inside a Lua script, which Redis executes
// atomically with respect to every other client.
type dailyStore struct {
	client *redis.Client
}

// IncrementAndGet atomically increments (or creates) the record for date
func (s *dailyStore) IncrementAndGet(ctx context.Context, date string, deltaSeconds int64) (*storage.DailyRecord, error) {
	score, err := storage.DateScore(date)
	if err != nil {
		return nil, err
	}

	keys := []string{recordKey(date), indexKey}
	args := []interface{}{date, deltaSeconds, score}

	total, err := incrementDailyScript.Run(ctx, s.client, keys, args...).Int64()
	if err != nil {
		return nil, fmt.Errorf("increment daily record: %w", err)
	}

	return &storage.DailyRecord{Date: date, TotalSeconds: total}, nil
}

// Get returns the record for date, or a zero record when none exists
func (s *dailyStore) Get(ctx context.Context, date string) (*storage.DailyRecord, error) {
	data, err := s.client.HGetAll(ctx, recordKey(date)).Result()
	if err != nil {
		return nil, err
	}

	record, err := parseDailyRecord(data)
	if errors.Is(err, storage.ErrNotFound) {
		return storage.ZeroRecord(date), nil
	}
	return record, err
}

// QueryRange returns the stored records between startDate and endDate inclusive
func (s *dailyStore) QueryRange(ctx context.Context, startDate, endDate string) ([]storage.DailyRecord, error) {
	minScore, err := storage.DateScore(startDate)
	if err != nil {
		return nil, err
	}
	maxScore, err := storage.DateScore(endDate)
	if err != nil {
		return nil, err
	}

	dates, err := s.client.ZRangeByScore(ctx, indexKey, &redis.ZRangeBy{
		Min: strconv.FormatInt(minScore, 10),
		Max: strconv.FormatInt(maxScore, 10),
	}).Result()
	if err != nil {
		return nil, err
	}

	if len(dates) == 0 {
		return []storage.DailyRecord{}, nil
	}

	// Use pipeline for batch retrieval
	pipe := s.client.Pipeline()
	cmds := make([]*redis.MapStringStringCmd, len(dates))
	for i, date := range dates {
		cmds[i] = pipe.HGetAll(ctx, recordKey(date))
	}

	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return nil, err
	}

	records := make([]storage.DailyRecord, 0, len(dates))
	for _, cmd := range cmds {
		data, err := cmd.Result()
		if err != nil {
			return nil, err
		}
		if len(data) == 0 {
			// Index entry without a hash: the record was removed out of band
			continue
		}

		record, err := parseDailyRecord(data)
		if err != nil {
			return nil, err
		}
		records = append(records, *record)
	}

	return records, nil
}

// DeleteBefore removes every record dated strictly before cutoffDate
func (s *dailyStore) DeleteBefore(ctx context.Context, cutoffDate string) (int, error) {
	cutoff, err := storage.DateScore(cutoffDate)
	if err != nil {
		return 0, err
	}

	deleted, err := deleteDailyBeforeScript.Run(ctx, s.client, []string{indexKey}, keyPrefix, cutoff).Int()
	if err != nil {
		return 0, fmt.Errorf("delete daily records: %w", err)
	}
	return deleted, nil
}
