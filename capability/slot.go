package capability

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/kbukum/snapstudy/logger"
	"github.com/kbukum/snapstudy/observability"
)

const defaultAttemptTimeout = 60 * time.Second

// Resolver yields the binding for one capability kind. Capability handles
// depend on this interface so tests can inject fixed bindings.
type Resolver[T any] interface {
	Kind() Kind
	Resolve(ctx context.Context) *Binding[T]
}

// SlotOption configures a Slot.
type SlotOption func(*slotOptions)

type slotOptions struct {
	attemptTimeout time.Duration
	now            func() time.Time
	log            *logger.Logger
	metrics        *observability.Metrics
}

// WithAttemptTimeout bounds each construct and smoke call.
func WithAttemptTimeout(d time.Duration) SlotOption {
	return func(o *slotOptions) { o.attemptTimeout = d }
}

// WithClock overrides the clock used for ChosenAt.
func WithClock(now func() time.Time) SlotOption {
	return func(o *slotOptions) { o.now = now }
}

// WithLogger sets the logger used to report attempts.
func WithLogger(log *logger.Logger) SlotOption {
	return func(o *slotOptions) { o.log = log }
}

// WithMetrics records each resolution.
func WithMetrics(m *observability.Metrics) SlotOption {
	return func(o *slotOptions) { o.metrics = m }
}

// Slot holds the candidates and the cached binding for one kind.
// The first Resolve call runs the candidates under the slot's lock; later
// calls return the cached binding until Reset.
type Slot[T any] struct {
	kind       Kind
	candidates []Candidate[T]
	opts       slotOptions

	mu      sync.Mutex
	binding *Binding[T]
}

// NewSlot creates a slot for kind with candidates in priority order.
func NewSlot[T any](kind Kind, candidates []Candidate[T], opts ...SlotOption) *Slot[T] {
	o := slotOptions{
		attemptTimeout: defaultAttemptTimeout,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = logger.Get("capability")
	}
	return &Slot[T]{kind: kind, candidates: candidates, opts: o}
}

// Kind returns the capability kind served by the slot.
func (s *Slot[T]) Kind() Kind { return s.kind }

// Candidates returns the candidate IDs in priority order.
func (s *Slot[T]) Candidates() []string {
	ids := make([]string, len(s.candidates))
	for i, c := range s.candidates {
		ids[i] = c.ID
	}
	return ids
}

// Resolve returns the cached binding, resolving it first if needed. It never
// returns nil and never fails: exhaustion yields an unavailable binding.
//
// Resolution is detached from ctx cancellation so that one request giving
// up does not cache a spurious unavailable binding for the whole process.
func (s *Slot[T]) Resolve(ctx context.Context) *Binding[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.binding != nil {
		return s.binding
	}
	s.binding = s.resolve(context.WithoutCancel(ctx))
	return s.binding
}

// Reset drops the cached binding so the next Resolve runs the candidates again.
func (s *Slot[T]) Reset() {
	s.mu.Lock()
	s.binding = nil
	s.mu.Unlock()
	s.opts.log.Info("capability binding reset", logger.Fields(logger.FieldKind, string(s.kind)))
}

// Status reports the slot state without resolving.
func (s *Slot[T]) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := Status{Kind: s.kind, State: StateUnresolved, Candidates: s.Candidates()}
	if s.binding == nil {
		return st
	}
	st.Attempts = s.binding.Attempts
	if s.binding.Available {
		st.State = StateBound
		st.CandidateID = s.binding.CandidateID
		st.ChosenAt = s.binding.ChosenAt
	} else {
		st.State = StateUnavailable
	}
	return st
}

func (s *Slot[T]) resolve(ctx context.Context) *Binding[T] {
	b := &Binding[T]{Kind: s.kind}
	for _, c := range s.candidates {
		start := time.Now()
		handle, phase, err := s.attempt(ctx, c)
		b.Attempts = append(b.Attempts, Attempt{
			CandidateID: c.ID,
			Phase:       phase,
			Error:       errString(err),
			Duration:    time.Since(start),
		})
		if err != nil {
			s.opts.log.Warn("capability candidate rejected", logger.Fields(
				logger.FieldKind, string(s.kind),
				logger.FieldCandidate, c.ID,
				"phase", string(phase),
				logger.FieldError, err.Error(),
			))
			continue
		}
		b.CandidateID = c.ID
		b.Handle = handle
		b.ChosenAt = s.opts.now()
		b.Available = true
		s.opts.log.Info("capability bound", logger.Fields(
			logger.FieldKind, string(s.kind),
			logger.FieldCandidate, c.ID,
		))
		s.opts.metrics.RecordResolution(ctx, string(s.kind), c.ID, true)
		return b
	}
	b.ChosenAt = s.opts.now()
	s.opts.log.Warn("capability unavailable", logger.Fields(
		logger.FieldKind, string(s.kind),
		"candidates", len(s.candidates),
	))
	s.opts.metrics.RecordResolution(ctx, string(s.kind), "", false)
	return b
}

// attempt constructs and smoke tests one candidate. Panics count as failures.
func (s *Slot[T]) attempt(ctx context.Context, c Candidate[T]) (handle T, phase Phase, err error) {
	phase = PhaseConstruct
	defer func() {
		if r := recover(); r != nil {
			var zero T
			handle = zero
			err = fmt.Errorf("candidate %s panicked during %s: %v", c.ID, phase, r)
		}
	}()

	if c.Construct == nil {
		return handle, phase, fmt.Errorf("candidate %s has no constructor", c.ID)
	}
	cctx, cancel := context.WithTimeout(ctx, s.opts.attemptTimeout)
	handle, err = c.Construct(cctx)
	cancel()
	if err != nil {
		return handle, phase, err
	}

	if c.Smoke != nil {
		phase = PhaseSmoke
		sctx, cancel := context.WithTimeout(ctx, s.opts.attemptTimeout)
		err = c.Smoke(sctx, handle)
		cancel()
		if err != nil {
			var zero T
			return zero, phase, err
		}
	}
	return handle, PhaseBound, nil
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
