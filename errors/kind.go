package errors

import (
	"context"
	stderrors "errors"
)

// Kind classifies a failure by how the pipeline surfaces it.
type Kind string

const (
	// KindInputInvalid is a rejected upload, reported before the pipeline starts.
	KindInputInvalid Kind = "input_invalid"
	// KindResourceUnavailable means a capability resolved to unavailable.
	KindResourceUnavailable Kind = "resource_unavailable"
	// KindStageFailure means stage work raised after resolution succeeded.
	KindStageFailure Kind = "stage_failure"
	// KindUpstreamSkip means a stage was not attempted.
	KindUpstreamSkip Kind = "upstream_skip"
	// KindFatal is a fault that escaped the pipeline body.
	KindFatal Kind = "fatal"
)

// KindOf maps an error to its Kind. Unknown errors are stage failures.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	if stderrors.Is(err, context.DeadlineExceeded) {
		return KindStageFailure
	}
	appErr, ok := AsAppError(err)
	if !ok {
		return KindStageFailure
	}
	switch appErr.Code {
	case ErrCodeInvalidInput, ErrCodeMissingField:
		return KindInputInvalid
	case ErrCodeCapabilityUnavailable:
		return KindResourceUnavailable
	case ErrCodeUpstreamSkipped:
		return KindUpstreamSkip
	case ErrCodeInternal:
		return KindFatal
	default:
		return KindStageFailure
	}
}
