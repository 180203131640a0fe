// Package process runs external tools such as ffmpeg, ffprobe and
// whisper.cpp.
//
// Commands run in their own process group. Cancelling the context sends
// SIGTERM to the group and SIGKILL after the grace period, so a timed-out
// stage never leaves an encoder running.
package process
