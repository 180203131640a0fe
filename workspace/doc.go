// Package workspace owns the transient files of one pipeline run.
//
// Acquire creates an isolated directory; every derived path (uploaded
// source, audio sidecar, clips) is created through the Handle and tracked.
// Release deletes what was tracked and the directory itself, exactly once,
// and nothing else in the service deletes workspace files.
package workspace
