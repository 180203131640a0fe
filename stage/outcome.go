package stage

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/kbukum/snapstudy/errors"
)

// Status is the tag of an Outcome.
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusSkipped   Status = "skipped"
	StatusFailed    Status = "failed"
)

// Value is the payload of a succeeded stage: text for the text stages,
// paths for audio extraction and clips.
type Value struct {
	Text  string   `json:"text,omitempty" yaml:"text,omitempty"`
	Paths []string `json:"paths,omitempty" yaml:"paths,omitempty"`
	// Empty marks a successful run that produced nothing.
	Empty bool `json:"empty,omitempty" yaml:"empty,omitempty"`
}

// TextValue wraps text, setting Empty for blank text.
func TextValue(s string) Value {
	return Value{Text: s, Empty: isBlank(s)}
}

// PathsValue wraps paths, setting Empty for an empty list.
func PathsValue(paths ...string) Value {
	if paths == nil {
		paths = []string{}
	}
	return Value{Paths: paths, Empty: len(paths) == 0}
}

// Path returns the first path, or "".
func (v Value) Path() string {
	if len(v.Paths) == 0 {
		return ""
	}
	return v.Paths[0]
}

// Detail describes a failure or skip.
type Detail struct {
	Kind    errors.Kind      `json:"kind" yaml:"kind"`
	Code    errors.ErrorCode `json:"code" yaml:"code"`
	Message string           `json:"message" yaml:"message"`
	Stage   string           `json:"stage" yaml:"stage"`
	Cause   error            `json:"-" yaml:"-"`
}

// Error implements error.
func (d *Detail) Error() string {
	if d.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", d.Stage, d.Message, d.Cause)
	}
	return fmt.Sprintf("%s: %s", d.Stage, d.Message)
}

// Unwrap returns the cause.
func (d *Detail) Unwrap() error { return d.Cause }

// Outcome is the result of one stage. Use the constructors; the zero value
// is not a valid outcome.
type Outcome struct {
	Stage  string  `json:"stage" yaml:"stage"`
	Status Status  `json:"status" yaml:"status"`
	Value  *Value  `json:"value,omitempty" yaml:"value,omitempty"`
	Reason string  `json:"reason,omitempty" yaml:"reason,omitempty"`
	Error  *Detail `json:"error,omitempty" yaml:"error,omitempty"`
}

// Succeeded builds a succeeded outcome.
func Succeeded(stage string, v Value) Outcome {
	return Outcome{Stage: stage, Status: StatusSucceeded, Value: &v}
}

// Skipped builds a skipped outcome naming the unmet dependency.
func Skipped(stage, upstream string) Outcome {
	appErr := errors.UpstreamSkipped(stage, upstream)
	return Outcome{
		Stage:  stage,
		Status: StatusSkipped,
		Reason: appErr.Message,
		Error: &Detail{
			Kind:    errors.KindUpstreamSkip,
			Code:    appErr.Code,
			Message: appErr.Message,
			Stage:   stage,
		},
	}
}

// Failed builds a failed outcome from err.
func Failed(stage string, err error) Outcome {
	return Outcome{Stage: stage, Status: StatusFailed, Error: detailFor(stage, err)}
}

// Ok reports whether the outcome succeeded.
func (o Outcome) Ok() bool { return o.Status == StatusSucceeded }

// Text returns the succeeded text payload, or "".
func (o Outcome) Text() string {
	if o.Value == nil {
		return ""
	}
	return o.Value.Text
}

// Paths returns the succeeded path payload, or nil.
func (o Outcome) Paths() []string {
	if o.Value == nil {
		return nil
	}
	return o.Value.Paths
}

// Message returns the skip reason or failure message, or "".
func (o Outcome) Message() string {
	switch o.Status {
	case StatusSkipped:
		return o.Reason
	case StatusFailed:
		if o.Error != nil {
			return o.Error.Message
		}
	}
	return ""
}

func detailFor(stage string, err error) *Detail {
	d := &Detail{Stage: stage, Kind: errors.KindOf(err), Cause: err}
	if stderrors.Is(err, context.DeadlineExceeded) {
		d.Code = errors.ErrCodeTimeout
		d.Message = errors.Timeout(stage).Message
		return d
	}
	if appErr, ok := errors.AsAppError(err); ok {
		d.Code = appErr.Code
		d.Message = appErr.Message
		return d
	}
	d.Code = errors.ErrCodeStageFailed
	d.Message = err.Error()
	return d
}

func isBlank(s string) bool {
	for _, r := range s {
		switch r {
		case ' ', '\t', '\n', '\r', '\v', '\f':
		default:
			return false
		}
	}
	return true
}
