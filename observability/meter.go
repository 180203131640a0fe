package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// Metrics holds the pipeline's metric instruments. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	requestTotal     metric.Int64Counter
	requestDuration  metric.Float64Histogram
	requestActive    metric.Int64UpDownCounter
	stageTotal       metric.Int64Counter
	stageDuration    metric.Float64Histogram
	pipelineTotal    metric.Int64Counter
	pipelineDuration metric.Float64Histogram
	resolutionTotal  metric.Int64Counter
	providerTotal    metric.Int64Counter
	providerDuration metric.Float64Histogram
}

// NewMetrics creates metric instruments on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	requestTotal, err := meter.Int64Counter("request.total",
		metric.WithDescription("Total number of HTTP requests"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating request.total counter: %w", err)
	}

	requestDuration, err := meter.Float64Histogram("request.duration",
		metric.WithDescription("Duration of HTTP requests in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating request.duration histogram: %w", err)
	}

	requestActive, err := meter.Int64UpDownCounter("request.active",
		metric.WithDescription("Number of in-flight HTTP requests"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating request.active gauge: %w", err)
	}

	stageTotal, err := meter.Int64Counter("stage.total",
		metric.WithDescription("Stage runs by stage and outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating stage.total counter: %w", err)
	}

	stageDuration, err := meter.Float64Histogram("stage.duration",
		metric.WithDescription("Duration of stage runs in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating stage.duration histogram: %w", err)
	}

	pipelineTotal, err := meter.Int64Counter("pipeline.total",
		metric.WithDescription("Pipeline runs by status"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating pipeline.total counter: %w", err)
	}

	pipelineDuration, err := meter.Float64Histogram("pipeline.duration",
		metric.WithDescription("Duration of pipeline runs in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating pipeline.duration histogram: %w", err)
	}

	resolutionTotal, err := meter.Int64Counter("capability.resolution.total",
		metric.WithDescription("Capability resolutions by kind and result"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating capability.resolution.total counter: %w", err)
	}

	providerTotal, err := meter.Int64Counter("provider.calls.total",
		metric.WithDescription("Backend provider calls by provider and status"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating provider.calls.total counter: %w", err)
	}

	providerDuration, err := meter.Float64Histogram("provider.calls.duration",
		metric.WithDescription("Duration of backend provider calls in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating provider.calls.duration histogram: %w", err)
	}

	return &Metrics{
		requestTotal:     requestTotal,
		requestDuration:  requestDuration,
		requestActive:    requestActive,
		stageTotal:       stageTotal,
		stageDuration:    stageDuration,
		pipelineTotal:    pipelineTotal,
		pipelineDuration: pipelineDuration,
		resolutionTotal:  resolutionTotal,
		providerTotal:    providerTotal,
		providerDuration: providerDuration,
	}, nil
}

// RecordRequestStart increments the in-flight request count.
func (m *Metrics) RecordRequestStart(ctx context.Context) {
	if m == nil {
		return
	}
	m.requestActive.Add(ctx, 1)
}

// RecordRequestEnd decrements in-flight requests and records the completed request.
func (m *Metrics) RecordRequestEnd(ctx context.Context, method, route string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requestActive.Add(ctx, -1)
	m.requestTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("route", route),
		attribute.Int("status", status),
	))
	m.requestDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("route", route),
	))
}

// RecordStage records one stage run.
func (m *Metrics) RecordStage(ctx context.Context, stage, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.stageTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("stage", stage),
		attribute.String("outcome", outcome),
	))
	m.stageDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("stage", stage),
	))
}

// RecordPipeline records one pipeline run.
func (m *Metrics) RecordPipeline(ctx context.Context, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.pipelineTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
	m.pipelineDuration.Record(ctx, duration.Seconds())
}

// RecordResolution records a capability resolution.
func (m *Metrics) RecordResolution(ctx context.Context, kind, candidate string, available bool) {
	if m == nil {
		return
	}
	m.resolutionTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", kind),
		attribute.String("candidate", candidate),
		attribute.Bool("available", available),
	))
}

// RecordProviderCall records one backend provider call.
func (m *Metrics) RecordProviderCall(ctx context.Context, provider, status string, duration time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("provider", provider),
		attribute.String("status", status),
	)
	m.providerTotal.Add(ctx, 1, attrs)
	m.providerDuration.Record(ctx, duration.Seconds(), attrs)
}
