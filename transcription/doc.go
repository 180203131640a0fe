// Package transcription defines the speech-to-text request and response
// types and the Transcribe helper used by the transcription stage.
//
// # Backends
//
//   - transcription/whisper: faster-whisper HTTP sidecar
//   - transcription/whispercpp: local whisper.cpp binary
//
// # Usage
//
//	p := whisper.NewProvider(whisper.Config{URL: "http://localhost:8387"})
//	text, err := transcription.Transcribe(ctx, p, transcription.TranscriptionRequest{AudioPath: wav})
package transcription
