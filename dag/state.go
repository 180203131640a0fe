package dag

import (
	"sync"

	"github.com/kbukum/snapstudy/stage"
)

// State is a thread-safe store of node outcomes for one execution.
type State struct {
	mu       sync.RWMutex
	outcomes map[string]stage.Outcome
}

// NewState creates an empty State.
func NewState() *State {
	return &State{outcomes: make(map[string]stage.Outcome)}
}

// Get returns the outcome recorded for name.
func (s *State) Get(name string) (stage.Outcome, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.outcomes[name]
	return o, ok
}

// Set records the outcome for name.
func (s *State) Set(name string, o stage.Outcome) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.outcomes[name] = o
}
