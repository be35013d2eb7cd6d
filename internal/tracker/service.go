package tracker

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/Aman-jha12/studytracker/internal/metrics"
	"github.com/Aman-jha12/studytracker/internal/storage"
	"github.com/Aman-jha12/studytracker/internal/telemetry"
)

const (
	// DefaultMaxSessionSeconds bounds a single session to one calendar day
	DefaultMaxSessionSeconds = 86400

	defaultStoreTimeout = 5 * time.Second
)

// Options configures a Service. Zero values select the defaults.
type Options struct {
	Location          *time.Location
	MaxSessionSeconds int64
	StoreTimeout      time.Duration
	Clock             Clock
	Exporter          telemetry.SessionExporter
	Logger            zerolog.Logger
}

// Service validates study sessions and accumulates them per calendar day.
// It holds no per-request state and never locks; same-day writes are
// serialised by the store.
type Service struct {
	store      storage.DailyStore
	aggregator *Aggregator
	location   *time.Location
	maxSeconds int64
	timeout    time.Duration
	clock      Clock
	exporter   telemetry.SessionExporter
	logger     zerolog.Logger
}

// NewService creates a new accumulation service over store
func NewService(store storage.DailyStore, opts Options) *Service {
	s := &Service{
		store:      store,
		aggregator: NewAggregator(store),
		location:   opts.Location,
		maxSeconds: opts.MaxSessionSeconds,
		timeout:    opts.StoreTimeout,
		clock:      opts.Clock,
		exporter:   opts.Exporter,
		logger:     opts.Logger.With().Str("component", "tracker").Logger(),
	}

	if s.location == nil {
		s.location = time.UTC
	}
	if s.maxSeconds <= 0 {
		s.maxSeconds = DefaultMaxSessionSeconds
	}
	if s.timeout <= 0 {
		s.timeout = defaultStoreTimeout
	}
	if s.clock == nil {
		s.clock = RealClock{}
	}
	if s.exporter == nil {
		s.exporter = telemetry.NewNoOpExporter()
	}

	return s
}

// RecordSession adds seconds to the total for date and returns the new total.
func (s *Service) RecordSession(ctx context.Context, date string, seconds float64) (*storage.DailyRecord, error) {
	day, err := ParseDate(date)
	if err != nil {
		return nil, s.rejected(err)
	}

	delta, err := s.validateSeconds(seconds)
	if err != nil {
		return nil, s.rejected(err)
	}

	storeCtx, cancel := s.storeContext(ctx)
	defer cancel()

	record, err := s.store.IncrementAndGet(storeCtx, day.String(), delta)
	if err != nil {
		return nil, s.failed("increment", err)
	}

	metrics.SessionsRecorded.Inc()
	metrics.SecondsRecorded.Add(float64(delta))
	if err := s.exporter.ExportSession(storeCtx, record.Date, delta); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to export session telemetry")
	}

	s.logger.Debug().
		Str("date", record.Date).
		Int64("seconds", delta).
		Int64("total_seconds", record.TotalSeconds).
		Msg("Study session recorded")

	return record, nil
}

// GetTotal returns the accumulated total for date, zero when nothing was recorded.
func (s *Service) GetTotal(ctx context.Context, date string) (*storage.DailyRecord, error) {
	day, err := ParseDate(date)
	if err != nil {
		return nil, s.rejected(err)
	}

	storeCtx, cancel := s.storeContext(ctx)
	defer cancel()

	record, err := s.store.Get(storeCtx, day.String())
	if err != nil {
		return nil, s.failed("get", err)
	}
	return record, nil
}

// WeeklyReport returns the seven days ending today in the configured zone.
func (s *Service) WeeklyReport(ctx context.Context) ([]storage.DailyRecord, error) {
	storeCtx, cancel := s.storeContext(ctx)
	defer cancel()

	report, err := s.aggregator.WeeklyReport(storeCtx, s.Today())
	if err != nil {
		var serr *StorageError
		if errors.As(err, &serr) {
			metrics.StorageErrors.WithLabelValues(serr.Op).Inc()
			s.logger.Error().Err(serr.Err).Str("op", serr.Op).Msg("Weekly report query failed")
		}
		return nil, err
	}
	return report, nil
}

// Today returns the current calendar date in the configured zone.
func (s *Service) Today() DateKey {
	return DateOf(s.clock.Now(), s.location)
}

// SecondsFromJSON extracts a numeric seconds value from a raw JSON field.
func SecondsFromJSON(raw json.RawMessage) (float64, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, invalid("seconds", "seconds is required")
	}

	var seconds float64
	if err := json.Unmarshal(raw, &seconds); err != nil {
		return 0, invalid("seconds", "must be a number")
	}
	return seconds, nil
}

func (s *Service) validateSeconds(seconds float64) (int64, error) {
	switch {
	case math.IsNaN(seconds) || math.IsInf(seconds, 0):
		return 0, invalid("seconds", "must be a finite number")
	case seconds < 0:
		return 0, invalid("seconds", "must not be negative")
	case seconds != math.Trunc(seconds):
		return 0, invalid("seconds", "must be a whole number")
	case seconds > float64(s.maxSeconds):
		return 0, invalid("seconds", "exceeds the maximum session length")
	}
	return int64(seconds), nil
}

// storeContext detaches the store call from client cancellation so a
// dispatched increment either completes or fails cleanly.
func (s *Service) storeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
}

func (s *Service) rejected(err error) error {
	var verr *ValidationError
	if errors.As(err, &verr) {
		metrics.ValidationFailures.WithLabelValues(verr.Field).Inc()
	}
	return err
}

func (s *Service) failed(op string, err error) error {
	metrics.StorageErrors.WithLabelValues(op).Inc()
	s.logger.Error().Err(err).Str("op", op).Msg("Daily store operation failed")
	return &StorageError{Op: op, Err: err}
}
