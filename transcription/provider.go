package transcription

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"strings"

	"github.com/kbukum/snapstudy/provider"
)

// Provider is a speech-to-text backend.
type Provider = provider.RequestResponse[TranscriptionRequest, TranscriptionResponse]

// MinAudioBytes is the smallest audio file worth sending to a backend.
const MinAudioBytes = 1024

// ErrAudioTooSmall is returned for audio files under MinAudioBytes.
var ErrAudioTooSmall = stderrors.New("audio file too small to transcribe")

// Transcribe validates the audio file, calls p and returns the trimmed text.
// Blank text is returned as "" with a nil error; the caller decides what an
// empty transcript means.
func Transcribe(ctx context.Context, p Provider, req TranscriptionRequest) (string, error) {
	st, err := os.Stat(req.AudioPath)
	if err != nil {
		return "", fmt.Errorf("audio: %w", err)
	}
	if st.Size() < MinAudioBytes {
		return "", fmt.Errorf("%w: %d bytes", ErrAudioTooSmall, st.Size())
	}
	resp, err := p.Execute(ctx, req)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(resp.Text), nil
}
