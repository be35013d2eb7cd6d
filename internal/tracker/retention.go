package tracker

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/Aman-jha12/studytracker/internal/metrics"
	"github.com/Aman-jha12/studytracker/internal/storage"
)

// Pruner removes daily totals older than a cutoff. It is an administrative
// action and is never reached from the request path.
type Pruner struct {
	store   storage.DailyStore
	timeout time.Duration
	logger  zerolog.Logger
}

// NewPruner creates a pruner over store
func NewPruner(store storage.DailyStore, timeout time.Duration, logger zerolog.Logger) *Pruner {
	if timeout <= 0 {
		timeout = defaultStoreTimeout
	}
	return &Pruner{
		store:   store,
		timeout: timeout,
		logger:  logger.With().Str("component", "pruner").Logger(),
	}
}

// PruneBefore deletes every record dated strictly before cutoff.
func (p *Pruner) PruneBefore(ctx context.Context, cutoff string) (int, error) {
	day, err := ParseDate(cutoff)
	if err != nil {
		return 0, err
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	deleted, err := p.store.DeleteBefore(ctx, day.String())
	if err != nil {
		metrics.StorageErrors.WithLabelValues("delete_before").Inc()
		return 0, &StorageError{Op: "delete_before", Err: err}
	}

	metrics.RecordsPruned.Add(float64(deleted))
	p.logger.Info().
		Int("records_deleted", deleted).
		Str("cutoff_date", day.String()).
		Msg("Old daily totals pruned")

	return deleted, nil
}

// RetentionScheduler prunes old daily totals once a day
type RetentionScheduler struct {
	pruner   *Pruner
	days     int
	runAt    time.Time // Time of day to prune (only hour and minute are used)
	location *time.Location
	clock    Clock
	logger   zerolog.Logger
	stopChan chan struct{}
}

// NewRetentionScheduler creates a scheduler keeping the last days of history.
// It returns nil when days is zero, meaning history is kept forever.
func NewRetentionScheduler(pruner *Pruner, days int, runAt string, loc *time.Location, clock Clock, logger zerolog.Logger) (*RetentionScheduler, error) {
	if days < 0 {
		return nil, fmt.Errorf("retention days must not be negative: %d", days)
	}
	if days == 0 {
		return nil, nil
	}

	// Parse run time (HH:MM format)
	parsed, err := time.Parse("15:04", runAt)
	if err != nil {
		return nil, err
	}

	if loc == nil {
		loc = time.UTC
	}
	if clock == nil {
		clock = RealClock{}
	}

	return &RetentionScheduler{
		pruner:   pruner,
		days:     days,
		runAt:    parsed,
		location: loc,
		clock:    clock,
		logger:   logger.With().Str("component", "retention-scheduler").Logger(),
		stopChan: make(chan struct{}),
	}, nil
}

// Start begins the retention scheduler
func (rs *RetentionScheduler) Start() {
	go rs.run()
	rs.logger.Info().
		Int("days", rs.days).
		Str("run_at", rs.runAt.Format("15:04")).
		Msg("Retention scheduler started")
}

// Stop stops the retention scheduler
func (rs *RetentionScheduler) Stop() {
	close(rs.stopChan)
	rs.logger.Info().Msg("Retention scheduler stopped")
}

func (rs *RetentionScheduler) run() {
	for {
		next := rs.nextRun()
		wait := next.Sub(rs.clock.Now())

		rs.logger.Debug().
			Time("next_run", next).
			Dur("wait_duration", wait).
			Msg("Scheduled next retention run")

		timer := time.NewTimer(wait)
		select {
		case <-timer.C:
			if _, err := rs.RunOnce(context.Background()); err != nil {
				rs.logger.Error().Err(err).Msg("Retention run failed")
			}
		case <-rs.stopChan:
			timer.Stop()
			return
		}
	}
}

// RunOnce prunes everything older than the retention window relative to today.
func (rs *RetentionScheduler) RunOnce(ctx context.Context) (int, error) {
	return rs.pruner.PruneBefore(ctx, rs.Cutoff().String())
}

// Cutoff returns the oldest date that is kept.
func (rs *RetentionScheduler) Cutoff() DateKey {
	return DateOf(rs.clock.Now(), rs.location).AddDays(-rs.days)
}

// nextRun calculates the next run time in the configured zone
func (rs *RetentionScheduler) nextRun() time.Time {
	now := rs.clock.Now().In(rs.location)

	today := time.Date(
		now.Year(), now.Month(), now.Day(),
		rs.runAt.Hour(), rs.runAt.Minute(), 0, 0,
		rs.location,
	)

	// If we've already passed today's run time, schedule for tomorrow
	if now.After(today) {
		return today.AddDate(0, 0, 1)
	}
	return today
}
