package pipeline

import (
	"fmt"
	"time"

	"github.com/kbukum/snapstudy/stage"
)

// Stage names, in result order.
const (
	StageAudio         = "audio_extraction"
	StageTranscription = "transcription"
	StageSummarization = "summarization"
	StageQuiz          = "quiz_generation"
	StageTranslation   = "translation"
	StageClips         = "clip_generation"
)

// StageOrder lists every stage in the order outcomes are reported.
var StageOrder = []string{
	StageAudio,
	StageTranscription,
	StageSummarization,
	StageQuiz,
	StageTranslation,
	StageClips,
}

// Result is the record of one run: one outcome per stage in StageOrder,
// plus a top-level error when the coordinator recovered a fault.
type Result struct {
	RequestID   string
	WorkspaceID string
	Outcomes    []stage.Outcome
	Error       *stage.Detail
	Duration    time.Duration
	// KeptClips are clips copied out of the workspace before release. The
	// clip outcome may name workspace paths that no longer exist.
	KeptClips []string
}

// Outcome returns the outcome of the named stage.
func (r *Result) Outcome(name string) (stage.Outcome, bool) {
	for _, o := range r.Outcomes {
		if o.Stage == name {
			return o, true
		}
	}
	return stage.Outcome{}, false
}

// Statuses returns the outcome tag of every stage in order.
func (r *Result) Statuses() []stage.Status {
	out := make([]stage.Status, len(r.Outcomes))
	for i, o := range r.Outcomes {
		out[i] = o.Status
	}
	return out
}

// Payload is the external projection of a Result.
type Payload struct {
	RequestID         string          `json:"request_id,omitempty" yaml:"request_id,omitempty"`
	Transcript        string          `json:"transcript" yaml:"transcript"`
	Summary           string          `json:"summary" yaml:"summary"`
	Quiz              string          `json:"quiz" yaml:"quiz"`
	TranslatedSummary string          `json:"translated_summary" yaml:"translated_summary"`
	Clips             []string        `json:"clips" yaml:"clips"`
	Outcomes          []stage.Outcome `json:"outcomes" yaml:"outcomes"`
	Error             *stage.Detail   `json:"error,omitempty" yaml:"error,omitempty"`
}

// Payload projects the result to plain text fields. A stage that did not
// succeed projects its failure or skip message; a skipped transcript
// carries the audio extraction failure instead. Clips lists only the kept
// copies.
func (r *Result) Payload() Payload {
	p := Payload{
		RequestID:         r.RequestID,
		Transcript:        r.text(StageTranscription),
		Summary:           r.text(StageSummarization),
		Quiz:              r.text(StageQuiz),
		TranslatedSummary: r.text(StageTranslation),
		Clips:             []string{},
		Outcomes:          r.Outcomes,
		Error:             r.Error,
	}
	if o, ok := r.Outcome(StageTranscription); ok && o.Status == stage.StatusSkipped {
		if audio, ok := r.Outcome(StageAudio); ok && audio.Status == stage.StatusFailed {
			p.Transcript = fmt.Sprintf("Audio extraction failed: %s", audio.Message())
		}
	}
	if len(r.KeptClips) > 0 {
		p.Clips = append(p.Clips, r.KeptClips...)
	}
	return p
}

func (r *Result) text(name string) string {
	o, ok := r.Outcome(name)
	if !ok {
		return ""
	}
	if o.Ok() {
		return o.Text()
	}
	return o.Message()
}

// fill gives every stage without an outcome a Failed outcome caused by err,
// then orders outcomes by StageOrder.
func (r *Result) fill(err error) {
	byName := make(map[string]stage.Outcome, len(r.Outcomes))
	for _, o := range r.Outcomes {
		byName[o.Stage] = o
	}
	ordered := make([]stage.Outcome, 0, len(StageOrder))
	for _, name := range StageOrder {
		o, ok := byName[name]
		if !ok || o.Status == "" {
			o = stage.Failed(name, err)
		}
		ordered = append(ordered, o)
	}
	r.Outcomes = ordered
}
