// Package media wraps the ffmpeg and ffprobe binaries: probing a source,
// extracting a mono 16 kHz WAV for transcription and cutting short clips.
package media
