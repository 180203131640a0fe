package observability

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/kbukum/snapstudy/logger"
)

func TestSampler(t *testing.T) {
	tests := []struct {
		rate float64
		want string
	}{
		{1.0, "AlwaysOnSampler"},
		{2.0, "AlwaysOnSampler"},
		{0, "AlwaysOffSampler"},
		{-1, "AlwaysOffSampler"},
		{0.25, "ParentBased"},
	}
	for _, tc := range tests {
		t.Run(fmt.Sprint(tc.rate), func(t *testing.T) {
			got := sampler(tc.rate).Description()
			if !strings.HasPrefix(got, tc.want) {
				t.Errorf("expected %q prefix, got %q", tc.want, got)
			}
		})
	}
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	ctx := context.Background()
	m.RecordRequestStart(ctx)
	m.RecordRequestEnd(ctx, "POST", "/upload", 200, time.Second)
	m.RecordStage(ctx, "transcription", "succeeded", time.Second)
	m.RecordPipeline(ctx, "ok", time.Second)
	m.RecordResolution(ctx, "quiz", "gemini-1.5-flash", false)
}

func TestNewMetricsNoop(t *testing.T) {
	metrics, err := NewMetrics(noop.NewMeterProvider().Meter("test"))
	if err != nil {
		t.Fatalf("unexpected error creating metrics: %v", err)
	}
	metrics.RecordStage(context.Background(), "quiz_generation", "failed", 10*time.Millisecond)
}

func TestRecordStageCountsByOutcome(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer mp.Shutdown(context.Background())

	metrics, err := NewMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx := context.Background()
	metrics.RecordStage(ctx, "transcription", "succeeded", 20*time.Millisecond)
	metrics.RecordStage(ctx, "quiz_generation", "failed", 5*time.Millisecond)
	metrics.RecordStage(ctx, "translation", "succeeded", 5*time.Millisecond)

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		t.Fatalf("collect failed: %v", err)
	}

	var total int64
	found := false
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "stage.total" {
				continue
			}
			found = true
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				t.Fatalf("expected Sum[int64], got %T", m.Data)
			}
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
		}
	}
	if !found {
		t.Fatal("expected stage.total to be exported")
	}
	if total != 3 {
		t.Errorf("expected 3 stage runs, got %d", total)
	}
}

func TestStartSpanRecordsAttributesAndErrors(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	defer otel.SetTracerProvider(prev)

	ctx, span := StartSpan(context.Background(), SpanStagePrefix+"transcription")
	SetSpanAttribute(ctx, AttrStage, "transcription")
	SetSpanAttribute(ctx, "chars", 42)
	SetSpanAttribute(ctx, "empty", true)
	SetSpanAttribute(ctx, "ignored", struct{}{})
	SetSpanError(ctx, fmt.Errorf("whisper sidecar unreachable"))
	span.End()

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	if spans[0].Name() != "stage.transcription" {
		t.Errorf("expected span name 'stage.transcription', got %q", spans[0].Name())
	}
	if len(spans[0].Attributes()) != 3 {
		t.Errorf("expected 3 attributes, got %d", len(spans[0].Attributes()))
	}
	if len(spans[0].Events()) != 1 {
		t.Errorf("expected 1 error event, got %d", len(spans[0].Events()))
	}
}

func TestSetSpanAttributeNoSpan(t *testing.T) {
	SetSpanAttribute(context.Background(), "key", "value")
	SetSpanError(context.Background(), fmt.Errorf("ignored"))
}

func TestOperationContextLifecycle(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	defer otel.SetTracerProvider(prev)

	oc := NewOperationContext("snapstudy", "pipeline", "req-1", nil)
	ctx, span := oc.StartSpanForOperation(context.Background(), SpanPipelineRun)
	if OperationContextFromContext(ctx) != oc {
		t.Error("expected operation context in ctx")
	}
	oc.EndOperation(ctx, span, "degraded", fmt.Errorf("quiz unavailable"))

	spans := recorder.Ended()
	if len(spans) != 1 || spans[0].Name() != SpanPipelineRun {
		t.Fatalf("expected one %q span, got %d", SpanPipelineRun, len(spans))
	}
	if oc.Duration() <= 0 {
		t.Error("expected positive duration")
	}
}

func TestOperationContextFromContextNotSet(t *testing.T) {
	if OperationContextFromContext(context.Background()) != nil {
		t.Error("expected nil when not set")
	}
}

func TestSetupDisabledIsNoop(t *testing.T) {
	shutdown, err := Setup(context.Background(), Config{}, "snapstudy", "1.0.0", "test", logger.Nop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Errorf("expected no-op shutdown, got %v", err)
	}
}

func TestConfigApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()
	if cfg.Endpoint != "localhost:4318" {
		t.Errorf("expected default endpoint, got %q", cfg.Endpoint)
	}
	if cfg.SampleRate != 1.0 {
		t.Errorf("expected sample rate 1.0, got %f", cfg.SampleRate)
	}
}

func TestNewResource(t *testing.T) {
	res, err := newResource("snapstudy", "1.0.0", "test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	found := false
	for _, kv := range res.Attributes() {
		if string(kv.Key) == AttrServiceName && kv.Value.AsString() == "snapstudy" {
			found = true
		}
	}
	if !found {
		t.Error("expected service.name attribute on resource")
	}
}
