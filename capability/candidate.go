package capability

import (
	"context"
	"time"

	"github.com/kbukum/snapstudy/errors"
)

// Kind names a capability.
type Kind string

const (
	KindTranscription Kind = "transcription"
	KindSummarization Kind = "summarization"
	KindQuiz          Kind = "quiz"
	KindTranslation   Kind = "translation"
)

// Candidate is one way to obtain a handle for a capability.
type Candidate[T any] struct {
	// ID identifies the candidate in logs and bindings (e.g. "whisper-http").
	ID string
	// Construct builds the handle. A nil Construct counts as a failed attempt.
	Construct func(ctx context.Context) (T, error)
	// Smoke checks a constructed handle. Nil means construction is enough.
	Smoke func(ctx context.Context, handle T) error
}

// Phase is the step at which a candidate attempt stopped.
type Phase string

const (
	PhaseConstruct Phase = "construct"
	PhaseSmoke     Phase = "smoke"
	PhaseBound     Phase = "bound"
)

// Attempt records one candidate attempt.
type Attempt struct {
	CandidateID string        `json:"candidate"`
	Phase       Phase         `json:"phase"`
	Error       string        `json:"error,omitempty"`
	Duration    time.Duration `json:"duration"`
}

// Binding is the resolution result for one kind. A binding with
// Available false is the unavailable marker.
type Binding[T any] struct {
	Kind        Kind
	CandidateID string
	Handle      T
	ChosenAt    time.Time
	Available   bool
	Attempts    []Attempt
}

// Err returns nil for an available binding and a CAPABILITY_UNAVAILABLE
// error otherwise.
func (b *Binding[T]) Err() error {
	if b.Available {
		return nil
	}
	tried := make([]string, 0, len(b.Attempts))
	for _, a := range b.Attempts {
		tried = append(tried, a.CandidateID)
	}
	return errors.CapabilityUnavailable(string(b.Kind)).WithDetail("candidates", tried)
}
