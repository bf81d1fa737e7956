package otel

import (
	"context"

	"github.com/emiliopalmerini/claude-activity/internal/ports"
)

// NoOpExporter is a metrics exporter that does nothing.
type NoOpExporter struct{}

// NewNoOpExporter creates a new no-op exporter for graceful degradation.
func NewNoOpExporter() *NoOpExporter {
	return &NoOpExporter{}
}

func (e *NoOpExporter) ExportRebuildMetrics(ctx context.Context, m *ports.RebuildMetrics) error {
	return nil
}

func (e *NoOpExporter) Close(ctx context.Context) error {
	return nil
}

// NewFromConfig returns an OTLP exporter when cfg enables one, and the
// no-op exporter otherwise.
func NewFromConfig(ctx context.Context, cfg Config) (ports.MetricsExporter, error) {
	if !cfg.Enabled || cfg.Endpoint == "" {
		return NewNoOpExporter(), nil
	}
	return NewExporter(ctx, cfg)
}
