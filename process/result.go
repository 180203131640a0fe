package process

import (
	"bytes"
	"time"
)

// Result holds the output and status of a completed subprocess.
type Result struct {
	// Stdout is the captured standard output.
	Stdout []byte
	// Stderr is the captured standard error.
	Stderr []byte
	// ExitCode is the process exit code. -1 if the process was killed.
	ExitCode int
	// Duration is how long the process ran.
	Duration time.Duration
}

// StderrTail returns at most the last n bytes of stderr, trimmed. ffmpeg
// prints its actual complaint at the end of a long banner.
func (r *Result) StderrTail(n int) string {
	if r == nil {
		return ""
	}
	b := bytes.TrimSpace(r.Stderr)
	if n > 0 && len(b) > n {
		b = b[len(b)-n:]
	}
	return string(b)
}
