package capability

import (
	"context"
	"sort"
	"sync"
	"time"
)

// State is the resolution state of a slot.
type State string

const (
	StateUnresolved  State = "unresolved"
	StateBound       State = "bound"
	StateUnavailable State = "unavailable"
)

// Status is a point-in-time view of a slot for health reporting.
type Status struct {
	Kind        Kind      `json:"kind"`
	State       State     `json:"state"`
	CandidateID string    `json:"candidate,omitempty"`
	ChosenAt    time.Time `json:"chosen_at,omitempty"`
	Candidates  []string  `json:"candidates"`
	Attempts    []Attempt `json:"attempts,omitempty"`
}

// Entry is the type-erased view of a Slot held by the Registry.
type Entry interface {
	Kind() Kind
	Status() Status
	Reset()
}

// Registry tracks the slots of a process so they can be reported and reset
// together. It is created by the application and injected where needed.
type Registry struct {
	mu    sync.RWMutex
	slots map[Kind]Entry
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{slots: make(map[Kind]Entry)}
}

// Register adds a slot, replacing any slot for the same kind.
func (r *Registry) Register(e Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.slots[e.Kind()] = e
}

// Lookup returns the slot registered for kind.
func (r *Registry) Lookup(kind Kind) (Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.slots[kind]
	return e, ok
}

// Reset clears the binding for kind. It reports whether a slot exists.
func (r *Registry) Reset(kind Kind) bool {
	e, ok := r.Lookup(kind)
	if ok {
		e.Reset()
	}
	return ok
}

// ResetAll clears every binding.
func (r *Registry) ResetAll() {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, e := range r.slots {
		e.Reset()
	}
}

// Statuses returns the status of every slot, sorted by kind.
func (r *Registry) Statuses() []Status {
	r.mu.RLock()
	out := make([]Status, 0, len(r.slots))
	for _, e := range r.slots {
		out = append(out, e.Status())
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Kind < out[j].Kind })
	return out
}

// Static returns a Resolver that always yields b. It backs fixed wiring and
// tests.
func Static[T any](b *Binding[T]) Resolver[T] {
	return staticResolver[T]{b: b}
}

type staticResolver[T any] struct{ b *Binding[T] }

func (s staticResolver[T]) Kind() Kind                          { return s.b.Kind }
func (s staticResolver[T]) Resolve(context.Context) *Binding[T] { return s.b }
