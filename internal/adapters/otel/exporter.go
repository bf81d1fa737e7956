package otel

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

	"github.com/emiliopalmerini/claude-activity/internal/ports"
)

const (
	serviceName    = "claude-activity"
	serviceVersion = "1.0.0"
)

// Exporter exports rebuild metrics to an OTEL Collector.
type Exporter struct {
	provider      *sdkmetric.MeterProvider
	rebuildsTotal metric.Int64Counter
	filesParsed   metric.Int64Counter
	filesFailed   metric.Int64Counter
	removed       metric.Int64Counter
	durationHist  metric.Float64Histogram
	sessionsHist  metric.Int64Histogram
	costHist      metric.Float64Histogram
}

// NewExporter creates a new OTEL metrics exporter.
func NewExporter(ctx context.Context, cfg Config) (*Exporter, error) {
	if !cfg.Enabled || cfg.Endpoint == "" {
		return nil, fmt.Errorf("OTEL exporter is disabled or endpoint not configured")
	}

	opts := []otlpmetricgrpc.Option{
		otlpmetricgrpc.WithEndpoint(cfg.Endpoint),
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

	e, err := newInstruments(provider.Meter(serviceName))
	if err != nil {
		return nil, err
	}
	e.provider = provider
	return e, nil
}

func newInstruments(meter metric.Meter) (*Exporter, error) {
	var (
		e   Exporter
		err error
	)

	counters := []struct {
		dst  *metric.Int64Counter
		name string
		desc string
		unit string
	}{
		{&e.rebuildsTotal, "activity_rebuilds_total", "Completed cache rebuilds", "{rebuild}"},
		{&e.filesParsed, "activity_files_parsed_total", "Session logs parsed and stored", "{file}"},
		{&e.filesFailed, "activity_files_failed_total", "Session logs that failed to parse or store", "{file}"},
		{&e.removed, "activity_sessions_removed_total", "Sessions removed because their log disappeared", "{session}"},
	}
	for _, c := range counters {
		*c.dst, err = meter.Int64Counter(c.name, metric.WithDescription(c.desc), metric.WithUnit(c.unit))
		if err != nil {
			return nil, fmt.Errorf("creating %s counter: %w", c.name, err)
		}
	}

	e.durationHist, err = meter.Float64Histogram(
		"activity_rebuild_duration_seconds",
		metric.WithDescription("Rebuild duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating duration histogram: %w", err)
	}

	e.sessionsHist, err = meter.Int64Histogram(
		"activity_cached_sessions",
		metric.WithDescription("Sessions in the cache after an aggregate rebuild"),
		metric.WithUnit("{session}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating sessions histogram: %w", err)
	}

	e.costHist, err = meter.Float64Histogram(
		"activity_total_cost_usd",
		metric.WithDescription("Estimated total cost across cached sessions"),
		metric.WithUnit("USD"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating cost histogram: %w", err)
	}

	return &e, nil
}

// ExportRebuildMetrics records one rebuild run.
func (e *Exporter) ExportRebuildMetrics(ctx context.Context, m *ports.RebuildMetrics) error {
	opt := metric.WithAttributes(
		attribute.Bool("aggregate_rebuilt", m.AggregateRebuilt),
	)

	e.rebuildsTotal.Add(ctx, 1, opt)
	e.filesParsed.Add(ctx, m.FilesParsed, opt)
	e.filesFailed.Add(ctx, m.FilesFailed, opt)
	e.removed.Add(ctx, m.SessionsRemoved, opt)
	e.durationHist.Record(ctx, m.Duration.Seconds(), opt)

	if m.AggregateRebuilt {
		e.sessionsHist.Record(ctx, m.TotalSessions)
		e.costHist.Record(ctx, m.TotalCostUSD)
	}
	return nil
}

// Close shuts down the exporter and flushes any pending metrics.
func (e *Exporter) Close(ctx context.Context) error {
	return e.provider.Shutdown(ctx)
}
