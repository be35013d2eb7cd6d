package metrics

import (
	"context"
	"net"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

var (
	// Session metrics
	SessionsRecorded = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "studytracker_sessions_recorded_total",
			Help: "Total number of study sessions accumulated",
		},
	)

	SecondsRecorded = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "studytracker_seconds_recorded_total",
			Help: "Total study seconds accumulated across all days",
		},
	)

	ValidationFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studytracker_validation_failures_total",
			Help: "Requests rejected by input validation",
		},
		[]string{"field"},
	)

	// Storage metrics
	StorageErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studytracker_storage_errors_total",
			Help: "Daily store operations that failed",
		},
		[]string{"op"},
	)

	RecordsPruned = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "studytracker_records_pruned_total",
			Help: "Daily records removed by retention pruning",
		},
	)

	// HTTP metrics
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "studytracker_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "status"},
	)

	RateLimited = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "studytracker_rate_limited_total",
			Help: "Requests rejected by the per-client rate limiter",
		},
	)
)

func init() {
	// Register all metrics
	prometheus.MustRegister(
		SessionsRecorded,
		SecondsRecorded,
		ValidationFailures,
		StorageErrors,
		RecordsPruned,
		RequestDuration,
		RateLimited,
	)
}

// Server is the metrics HTTP server
type Server struct {
	server   *http.Server
	logger   zerolog.Logger
	listener net.Listener // Optional pre-created listener (for systemd socket activation)
}

// HealthFunc reports whether the service's dependencies are reachable
type HealthFunc func(ctx context.Context) error

// NewServer creates a new metrics server. A nil health func always reports OK.
func NewServer(addr string, health HealthFunc, logger zerolog.Logger) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if health != nil {
			if err := health(r.Context()); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte("UNAVAILABLE"))
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	return &Server{
		server: &http.Server{
			Addr:    addr,
			Handler: mux,
		},
		logger: logger.With().Str("component", "metrics").Logger(),
	}
}

// SetListener sets a pre-created listener for systemd socket activation
func (s *Server) SetListener(ln net.Listener) {
	s.listener = ln
}

// Start starts the metrics server
func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.server.Addr).Msg("Starting metrics server")
	go func() {
		var err error
		if s.listener != nil {
			// Use systemd socket-activated listener
			s.logger.Debug().Msg("Using systemd socket-activated metrics listener")
			err = s.server.Serve(s.listener)
		} else {
			// Create and bind listener ourselves
			err = s.server.ListenAndServe()
		}
		if err != nil && err != http.ErrServerClosed {
			s.logger.Error().Err(err).Msg("Metrics server error")
		}
	}()
	return nil
}

// Stop stops the metrics server
func (s *Server) Stop() error {
	s.logger.Info().Msg("Stopping metrics server")
	return s.server.Close()
}
