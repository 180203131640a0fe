// Package observability wires OpenTelemetry tracing and metrics for the
// pipeline.
//
// Setup installs OTLP exporters when telemetry.enabled is set:
//
//	shutdown, err := observability.Setup(ctx, cfg.Telemetry, "snapstudy", version, env, log)
//	defer shutdown(ctx)
//
// Tracing:
//
//	ctx, span := observability.StartSpan(ctx, "stage.transcription")
//	defer span.End()
//
// Metrics:
//
//	metrics, err := observability.NewMetrics(observability.Meter("snapstudy"))
//	metrics.RecordStage(ctx, "transcription", "succeeded", elapsed)
//
// When telemetry is disabled the global providers stay no-op, so spans and
// instruments cost nothing.
package observability
