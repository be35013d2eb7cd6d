package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/Aman-jha12/studytracker/internal/config"
	"github.com/Aman-jha12/studytracker/internal/storage"
	"github.com/Aman-jha12/studytracker/internal/storage/bolt"
	"github.com/Aman-jha12/studytracker/internal/storage/redis"
	"github.com/Aman-jha12/studytracker/internal/storage/sqlstore"
	"github.com/Aman-jha12/studytracker/internal/telemetry"
	"github.com/Aman-jha12/studytracker/internal/tracker"
)

func openStorage(ctx context.Context, cfg config.StorageConfig) (storage.Store, error) {
	switch cfg.Type {
	case config.StorageRedis:
		return redis.Open(cfg.Redis)
	case config.StorageBolt, "":
		return bolt.Open(cfg.Path)
	case config.StorageSQLite:
		return sqlstore.OpenSQLite(ctx, cfg.Path)
	case config.StorageTurso:
		return sqlstore.OpenTurso(ctx, cfg.Turso.URL, cfg.Turso.AuthToken)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
}

// newService wires the tracker service from configuration
func newService(cfg *config.Config, store storage.Store, exporter telemetry.SessionExporter, logger zerolog.Logger) (*tracker.Service, error) {
	loc, err := time.LoadLocation(cfg.Tracker.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid tracker timezone: %w", err)
	}

	return tracker.NewService(store.Daily(), tracker.Options{
		Location:          loc,
		MaxSessionSeconds: cfg.Tracker.MaxSessionSeconds,
		StoreTimeout:      config.ParseDuration(cfg.Storage.Timeout, 5*time.Second),
		Exporter:          exporter,
		Logger:            logger,
	}), nil
}

// parseLevel maps a configured level name to a zerolog level
func parseLevel(name string) zerolog.Level {
	switch name {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// setupLogger configures the logger based on configuration
func setupLogger(cfg config.LoggingConfig) zerolog.Logger {
	zerolog.SetGlobalLevel(parseLevel(cfg.Level))

	// Set output format
	if cfg.Format == "text" {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	// Default to JSON
	return zerolog.New(os.Stdout).With().Timestamp().Logger()
}

// cliLogger writes warnings and errors to stderr for one-shot commands
func cliLogger() zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(zerolog.WarnLevel).With().Timestamp().Logger()
}

// openForCommand loads configuration and storage for one-shot subcommands
func openForCommand(ctx context.Context) (*config.Config, storage.Store, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	store, err := openStorage(ctx, cfg.Storage)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	return cfg, store, nil
}
