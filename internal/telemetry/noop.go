package telemetry

import "context"

// NoOpExporter is a session exporter that does nothing.
type NoOpExporter struct{}

// NewNoOpExporter creates a new no-op exporter for graceful degradation.
func NewNoOpExporter() *NoOpExporter {
	return &NoOpExporter{}
}

func (e *NoOpExporter) ExportSession(ctx context.Context, date string, seconds int64) error {
	return nil
}

func (e *NoOpExporter) Close(ctx context.Context) error {
	return nil
}
