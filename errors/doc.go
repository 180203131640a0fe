// Package errors provides the structured error type shared by the pipeline,
// the capability resolver and the HTTP surface.
//
// Every failure below the HTTP boundary is an *AppError carrying a code, and
// KindOf classifies it into the pipeline taxonomy (input_invalid,
// resource_unavailable, stage_failure, upstream_skip, fatal).
package errors
