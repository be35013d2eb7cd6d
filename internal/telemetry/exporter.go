package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/Aman-jha12/studytracker/internal/config"
)

const (
	serviceName    = "studytracker"
	serviceVersion = "1.0.0"
)

// SessionExporter receives every accepted study session.
type SessionExporter interface {
	ExportSession(ctx context.Context, date string, seconds int64) error
	Close(ctx context.Context) error
}

// Exporter pushes session metrics to an OTLP collector.
type Exporter struct {
	provider      *sdkmetric.MeterProvider
	secondsTotal  metric.Int64Counter
	sessionsTotal metric.Int64Counter
	sessionHist   metric.Float64Histogram
}

// New returns an OTLP exporter when telemetry is enabled and a no-op
// exporter otherwise.
func New(ctx context.Context, cfg config.TelemetryConfig) (SessionExporter, error) {
	if !cfg.Enabled {
		return NewNoOpExporter(), nil
	}
	return NewExporter(ctx, cfg)
}

// NewExporter creates a new OTLP metrics exporter.
func NewExporter(ctx context.Context, cfg config.TelemetryConfig) (*Exporter, error) {
	if !cfg.Enabled || cfg.OTLPEndpoint == "" {
		return nil, fmt.Errorf("OTLP exporter is disabled or endpoint not configured")
	}

	opts := []otlpmetricgrpc.Option{
		otlpmetricgrpc.WithEndpoint(cfg.OTLPEndpoint),
	}
	if cfg.Insecure {
		opts = append(opts, otlpmetricgrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())))
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	}

	exp, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating OTLP exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(serviceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exp)),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(provider)

	return newExporter(provider)
}

func newExporter(provider *sdkmetric.MeterProvider) (*Exporter, error) {
	meter := provider.Meter(serviceName)

	secondsTotal, err := meter.Int64Counter(
		"studytracker_session_seconds",
		metric.WithDescription("Total study seconds recorded"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating seconds counter: %w", err)
	}

	sessionsTotal, err := meter.Int64Counter(
		"studytracker_sessions_total",
		metric.WithDescription("Total number of study sessions"),
		metric.WithUnit("{session}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating sessions counter: %w", err)
	}

	sessionHist, err := meter.Float64Histogram(
		"studytracker_session_duration_seconds",
		metric.WithDescription("Length of individual study sessions"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating session histogram: %w", err)
	}

	return &Exporter{
		provider:      provider,
		secondsTotal:  secondsTotal,
		sessionsTotal: sessionsTotal,
		sessionHist:   sessionHist,
	}, nil
}

// ExportSession records one accepted session.
func (e *Exporter) ExportSession(ctx context.Context, date string, seconds int64) error {
	opt := metric.WithAttributes(attribute.String("date", date))

	e.secondsTotal.Add(ctx, seconds, opt)
	e.sessionsTotal.Add(ctx, 1, opt)
	e.sessionHist.Record(ctx, float64(seconds))

	return nil
}

// Close shuts down the exporter and flushes any pending metrics.
func (e *Exporter) Close(ctx context.Context) error {
	return e.provider.Shutdown(ctx)
}
