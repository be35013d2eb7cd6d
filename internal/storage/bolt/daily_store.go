package bolt

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/Aman-jha12/studytracker/internal/storage"
	"go.etcd.io/bbolt"
)

// dailyStore keys records by their YYYY-MM-DD date. bbolt allows a single
// read-write transaction at a time, so the read-modify-write inside
// IncrementAndGet is serialised against every other writer. Byte order of
// the keys equals chronological order, which makes range scans a cursor walk.
type dailyStore struct {
	db *bbolt.DB
}

func (s *dailyStore) IncrementAndGet(ctx context.Context, date string, deltaSeconds int64) (*storage.DailyRecord, error) {
	var record storage.DailyRecord
	err := s.db.Update(func(tx *bbolt.Tx) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		b := tx.Bucket([]byte(bucketDaily))
		if b == nil {
			return fmt.Errorf("daily bucket missing")
		}
		if existing := b.Get([]byte(date)); existing != nil {
			if err := unmarshal(existing, &record); err != nil {
				return err
			}
		} else {
			record = storage.DailyRecord{Date: date}
		}
		record.TotalSeconds += deltaSeconds
		data, err := marshal(record)
		if err != nil {
			return err
		}
		return b.Put([]byte(date), data)
	})
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (s *dailyStore) Get(ctx context.Context, date string) (*storage.DailyRecord, error) {
	record, err := getBucketValue[storage.DailyRecord](ctx, s.db, bucketDaily, date)
	if errors.Is(err, storage.ErrNotFound) {
		return storage.ZeroRecord(date), nil
	}
	return record, err
}

func (s *dailyStore) QueryRange(ctx context.Context, startDate, endDate string) ([]storage.DailyRecord, error) {
	records := make([]storage.DailyRecord, 0)
	end := []byte(endDate)
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucketDaily))
		if b == nil {
			return nil
		}
		c := b.Cursor()
		for k, v := c.Seek([]byte(startDate)); k != nil && bytes.Compare(k, end) <= 0; k, v = c.Next() {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			var record storage.DailyRecord
			if err := unmarshal(v, &record); err != nil {
				return err
			}
			records = append(records, record)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (s *dailyStore) DeleteBefore(ctx context.Context, cutoffDate string) (int, error) {
	deleted := 0
	cutoff := []byte(cutoffDate)
	err := s.db.Update(func(tx *bbolt.Tx) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		b := tx.Bucket([]byte(bucketDaily))
		if b == nil {
			return nil
		}
		c := b.Cursor()
		for k, _ := c.First(); k != nil && bytes.Compare(k, cutoff) < 0; k, _ = c.First() {
			if err := c.Delete(); err != nil {
				return err
			}
			deleted++
		}
		return nil
	})
	return deleted, err
}
