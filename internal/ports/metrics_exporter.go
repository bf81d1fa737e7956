package ports

import (
	"context"
	"time"
)

// MetricsExporter exports cache rebuild metrics to an external observability system.
type MetricsExporter interface {
	// ExportRebuildMetrics records the outcome of one incremental rebuild.
	ExportRebuildMetrics(ctx context.Context, m *RebuildMetrics) error
	// Close shuts down the exporter and flushes any pending metrics.
	Close(ctx context.Context) error
}

// RebuildMetrics describes one completed rebuild run.
type RebuildMetrics struct {
	RunID string

	FilesScanned    int64
	FilesParsed     int64
	FilesFailed     int64
	SessionsRemoved int64

	AggregateRebuilt bool
	TotalSessions    int64
	TotalCostUSD     float64

	Duration  time.Duration
	StartedAt time.Time
}
