// Package stage runs one unit of pipeline work and turns whatever happens
// into an Outcome.
//
// An Outcome is exactly one of Succeeded, Skipped or Failed. The Executor
// never lets an error or panic escape: it gates on the upstream outcome,
// bounds the work with a timeout, and emits one log line, one span and one
// metric sample per run.
package stage
