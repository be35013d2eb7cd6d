package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/Aman-jha12/studytracker/internal/api"
	"github.com/Aman-jha12/studytracker/internal/config"
	"github.com/Aman-jha12/studytracker/internal/metrics"
	"github.com/Aman-jha12/studytracker/internal/systemd"
	"github.com/Aman-jha12/studytracker/internal/telemetry"
	"github.com/Aman-jha12/studytracker/internal/tracker"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the study tracker API server",
	Long:  `Start the study tracker HTTP API and metrics endpoints.`,
	RunE:  runServer,
}

func init() {
	rootCmd.AddCommand(serverCmd)
}

func runServer(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := setupLogger(cfg.Logging)
	log.Logger = logger

	logger.Info().
		Str("version", version).
		Str("config", configPath).
		Msg("Starting studytracker")

	// Check for systemd socket activation
	sdListeners, err := systemd.GetListeners()
	if err != nil {
		return fmt.Errorf("failed to get systemd listeners: %w", err)
	}
	if sdListeners.Activated {
		logger.Info().Msg("Running with systemd socket activation")
	}

	store, err := openStorage(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error().Err(err).Msg("Failed to close storage")
		}
	}()

	logger.Info().
		Str("type", cfg.Storage.Type).
		Msg("Storage initialized")

	exporter, err := telemetry.New(ctx, cfg.Telemetry)
	if err != nil {
		logger.Warn().Err(err).Msg("Telemetry exporter unavailable, continuing without it")
		exporter = telemetry.NewNoOpExporter()
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := exporter.Close(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("Failed to flush telemetry")
		}
	}()

	service, err := newService(cfg, store, exporter, logger)
	if err != nil {
		return err
	}

	// Retention is off unless retention.days > 0
	pruner := tracker.NewPruner(store.Daily(), config.ParseDuration(cfg.Storage.Timeout, 5*time.Second), logger)
	loc, _ := time.LoadLocation(cfg.Tracker.Timezone)
	retention, err := tracker.NewRetentionScheduler(pruner, cfg.Retention.Days, cfg.Retention.RunAt, loc, nil, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize retention scheduler: %w", err)
	}
	if retention != nil {
		retention.Start()
	}

	health := func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, config.ParseDuration(cfg.Storage.Timeout, 5*time.Second))
		defer cancel()
		return store.Ping(ctx)
	}

	apiConfig := api.Config{
		ListenAddr:      fmt.Sprintf("%s:%d", cfg.Server.BindAddress, cfg.Server.HTTPPort),
		ReadTimeout:     config.ParseDuration(cfg.Server.ReadTimeout, 15*time.Second),
		WriteTimeout:    config.ParseDuration(cfg.Server.WriteTimeout, 15*time.Second),
		RateLimit:       cfg.Server.RateLimit,
		RateLimitWindow: config.ParseDuration(cfg.Server.RateLimitWindow, time.Minute),
		AllowedOrigins:  cfg.Server.AllowedOrigins,
	}
	apiServer := api.NewServer(apiConfig, service, health, logger)
	if sdListeners.Activated && sdListeners.HTTP != nil {
		apiServer.SetListener(sdListeners.HTTP)
	}
	if err := apiServer.Start(); err != nil {
		return fmt.Errorf("failed to start API server: %w", err)
	}

	var metricsServer *metrics.Server
	if cfg.Server.MetricsPort != 0 {
		metricsAddr := fmt.Sprintf("%s:%d", cfg.Server.BindAddress, cfg.Server.MetricsPort)
		metricsServer = metrics.NewServer(metricsAddr, health, logger)
		if sdListeners.Activated && sdListeners.Metrics != nil {
			metricsServer.SetListener(sdListeners.Metrics)
		}
		if err := metricsServer.Start(); err != nil {
			return fmt.Errorf("failed to start metrics server: %w", err)
		}
	}

	logger.Info().
		Str("api", apiConfig.ListenAddr).
		Int("metrics_port", cfg.Server.MetricsPort).
		Str("timezone", cfg.Tracker.Timezone).
		Msg("studytracker startup complete")

	// Notify systemd that we're ready to serve requests
	if err := systemd.NotifyReady(); err != nil {
		logger.Warn().Err(err).Msg("Failed to send systemd ready notification")
	}

	stopWatchdog := startWatchdog(logger)
	defer stopWatchdog()

	// Wait for signals (shutdown or reload)
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)

	for sig := range sigChan {
		if sig == syscall.SIGHUP {
			reloadLogLevel(logger)
			continue
		}
		logger.Info().Msg("Shutdown signal received, gracefully stopping...")
		break
	}

	if err := systemd.NotifyStopping(); err != nil {
		logger.Warn().Err(err).Msg("Failed to send systemd stopping notification")
	}

	if retention != nil {
		retention.Stop()
	}

	if err := apiServer.Stop(); err != nil {
		logger.Error().Err(err).Msg("Error stopping API server")
	}

	if metricsServer != nil {
		if err := metricsServer.Stop(); err != nil {
			logger.Error().Err(err).Msg("Error stopping metrics server")
		}
	}

	logger.Info().Msg("studytracker stopped")

	return nil
}

// reloadLogLevel re-reads the configuration and applies its log level.
// Other settings need a restart.
func reloadLogLevel(logger zerolog.Logger) {
	_ = systemd.NotifyReloading()
	defer func() { _ = systemd.NotifyReady() }()

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("SIGHUP received but configuration is invalid, keeping current settings")
		return
	}

	zerolog.SetGlobalLevel(parseLevel(cfg.Logging.Level))
	logger.Info().Str("level", cfg.Logging.Level).Msg("SIGHUP received, log level reloaded")
}

// startWatchdog pings the systemd watchdog when WatchdogSec is configured
func startWatchdog(logger zerolog.Logger) func() {
	interval := systemd.WatchdogInterval()
	if interval == 0 {
		return func() {}
	}

	ticker := time.NewTicker(interval)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-ticker.C:
				if err := systemd.NotifyWatchdog(); err != nil {
					logger.Warn().Err(err).Msg("Failed to send systemd watchdog notification")
				}
			case <-done:
				ticker.Stop()
				return
			}
		}
	}()

	return func() { close(done) }
}
