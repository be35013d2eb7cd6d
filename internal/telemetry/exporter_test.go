package telemetry

import (
	"context"
	"testing"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/Aman-jha12/studytracker/internal/config"
)

func TestNewDisabledReturnsNoOp(t *testing.T) {
	exp, err := New(context.Background(), config.TelemetryConfig{Enabled: false})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if _, ok := exp.(*NoOpExporter); !ok {
		t.Fatalf("expected *NoOpExporter, got %T", exp)
	}
	if err := exp.ExportSession(context.Background(), "2024-03-10", 60); err != nil {
		t.Errorf("ExportSession() error = %v", err)
	}
}

func TestNewExporterRequiresEndpoint(t *testing.T) {
	if _, err := NewExporter(context.Background(), config.TelemetryConfig{Enabled: true}); err == nil {
		t.Fatal("expected error without endpoint")
	}
}

func TestExportSessionRecordsCounters(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	exp, err := newExporter(provider)
	if err != nil {
		t.Fatalf("newExporter() error = %v", err)
	}
	defer exp.Close(context.Background())

	ctx := context.Background()
	_ = exp.ExportSession(ctx, "2024-03-10", 1800)
	_ = exp.ExportSession(ctx, "2024-03-10", 300)

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		t.Fatalf("Collect() error = %v", err)
	}

	sums := make(map[string]int64)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if sum, ok := m.Data.(metricdata.Sum[int64]); ok {
				for _, dp := range sum.DataPoints {
					sums[m.Name] += dp.Value
				}
			}
		}
	}

	if sums["studytracker_session_seconds"] != 2100 {
		t.Errorf("session seconds = %d, want 2100", sums["studytracker_session_seconds"])
	}
	if sums["studytracker_sessions_total"] != 2 {
		t.Errorf("sessions = %d, want 2", sums["studytracker_sessions_total"])
	}
}
