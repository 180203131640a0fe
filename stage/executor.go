package stage

import (
	"context"
	"fmt"
	"time"

	"github.com/kbukum/snapstudy/logger"
	"github.com/kbukum/snapstudy/observability"
)

// DefaultTimeout bounds a stage run when no override is configured.
const DefaultTimeout = 10 * time.Minute

// Work is the body of a stage. It receives the upstream payload.
type Work func(ctx context.Context, in Value) (Value, error)

// Option configures an Executor.
type Option func(*Executor)

// WithTimeout sets the default per-stage timeout.
func WithTimeout(d time.Duration) Option {
	return func(e *Executor) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// WithStageTimeout overrides the timeout for one stage.
func WithStageTimeout(stage string, d time.Duration) Option {
	return func(e *Executor) {
		if d > 0 {
			e.overrides[stage] = d
		}
	}
}

// WithLogger sets the executor logger.
func WithLogger(log *logger.Logger) Option {
	return func(e *Executor) { e.log = log }
}

// WithMetrics records a stage sample per run.
func WithMetrics(m *observability.Metrics) Option {
	return func(e *Executor) { e.metrics = m }
}

// Executor runs stage work and converts every result into an Outcome.
// It is safe for concurrent use.
type Executor struct {
	timeout   time.Duration
	overrides map[string]time.Duration
	log       *logger.Logger
	metrics   *observability.Metrics
}

// NewExecutor creates an Executor.
func NewExecutor(opts ...Option) *Executor {
	e := &Executor{
		timeout:   DefaultTimeout,
		overrides: make(map[string]time.Duration),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.log == nil {
		e.log = logger.Get("stage")
	}
	return e
}

// Timeout returns the timeout applied to stage.
func (e *Executor) Timeout(stage string) time.Duration {
	if d, ok := e.overrides[stage]; ok {
		return d
	}
	return e.timeout
}

// Run executes work for stage when upstream succeeded and returns exactly
// one Outcome. Errors, panics and timeouts become Failed; a non-succeeded
// upstream becomes Skipped without invoking work.
func (e *Executor) Run(ctx context.Context, stage string, upstream Outcome, work Work) Outcome {
	start := time.Now()
	ctx, span := observability.StartSpan(ctx, observability.SpanStagePrefix+stage)
	defer span.End()
	observability.SetSpanAttribute(ctx, observability.AttrStage, stage)

	var out Outcome
	if !upstream.Ok() {
		out = Skipped(stage, upstream.Stage)
	} else {
		var in Value
		if upstream.Value != nil {
			in = *upstream.Value
		}
		out = e.invoke(ctx, stage, in, work)
	}

	elapsed := time.Since(start)
	observability.SetSpanAttribute(ctx, observability.AttrOutcome, string(out.Status))
	if out.Status == StatusFailed {
		observability.SetSpanAttribute(ctx, observability.AttrErrorKind, string(out.Error.Kind))
		observability.SetSpanError(ctx, out.Error)
	}
	e.metrics.RecordStage(ctx, stage, string(out.Status), elapsed)
	e.logOutcome(ctx, out, elapsed)
	return out
}

type result struct {
	v   Value
	err error
}

func (e *Executor) invoke(ctx context.Context, stage string, in Value, work Work) Outcome {
	ctx, cancel := context.WithTimeout(ctx, e.Timeout(stage))
	defer cancel()

	done := make(chan result, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- result{err: fmt.Errorf("panic: %v", r)}
			}
		}()
		v, err := work(ctx, in)
		done <- result{v: v, err: err}
	}()

	select {
	case r := <-done:
		if r.err != nil {
			return Failed(stage, r.err)
		}
		r.v.Empty = r.v.Empty || (isBlank(r.v.Text) && len(r.v.Paths) == 0)
		return Succeeded(stage, r.v)
	case <-ctx.Done():
		return Failed(stage, ctx.Err())
	}
}

func (e *Executor) logOutcome(ctx context.Context, out Outcome, elapsed time.Duration) {
	fields := logger.Fields(
		logger.FieldStage, out.Stage,
		logger.FieldOutcome, string(out.Status),
		logger.FieldDuration, elapsed.Milliseconds(),
	)
	log := e.log.WithContext(ctx)
	switch out.Status {
	case StatusSucceeded:
		fields["empty"] = out.Value.Empty
		log.Info("stage finished", fields)
	case StatusSkipped:
		fields["reason"] = out.Reason
		log.Info("stage finished", fields)
	default:
		fields[logger.FieldKind] = string(out.Error.Kind)
		fields[logger.FieldError] = out.Error.Error()
		log.Warn("stage finished", fields)
	}
}
