package media

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/kbukum/snapstudy/logger"
	"github.com/kbukum/snapstudy/process"
)

// Failure messages surfaced as stage errors.
var (
	ErrNoAudio       = stderrors.New("no audio track")
	ErrEmptySource   = stderrors.New("source file is empty")
	ErrAudioTooSmall = stderrors.New("extracted audio too small")
)

const stderrTail = 400

// Info is what ffprobe reports about a file.
type Info struct {
	Duration time.Duration
	HasAudio bool
	HasVideo bool
}

// Toolchain runs ffmpeg and ffprobe through a process.Runner.
type Toolchain struct {
	cfg    Config
	runner process.Runner
	log    *logger.Logger
}

// New creates a Toolchain.
func New(cfg Config, runner process.Runner) *Toolchain {
	cfg.ApplyDefaults()
	return &Toolchain{cfg: cfg, runner: runner, log: logger.Get("media")}
}

// Config returns the effective configuration.
func (t *Toolchain) Config() Config { return t.cfg }

// Available reports an error when ffmpeg or ffprobe is not on PATH.
func (t *Toolchain) Available() error {
	if _, err := t.runner.LookPath(t.cfg.FFmpegPath); err != nil {
		return err
	}
	if _, err := t.runner.LookPath(t.cfg.FFprobePath); err != nil {
		return err
	}
	return nil
}

type inspectOutput struct {
	Streams []struct {
		CodecType string `json:"codec_type"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// Inspect reads stream types and duration from path.
func (t *Toolchain) Inspect(ctx context.Context, path string) (*Info, error) {
	res, err := t.runner.Run(ctx, process.Command{
		Binary: t.cfg.FFprobePath,
		Args: []string{
			"-v", "error",
			"-show_entries", "format=duration:stream=codec_type",
			"-of", "json",
			path,
		},
	})
	if err != nil {
		return nil, t.toolError("ffprobe", res, err)
	}

	var out inspectOutput
	if err := json.Unmarshal(res.Stdout, &out); err != nil {
		return nil, fmt.Errorf("ffprobe: parse output: %w", err)
	}

	info := &Info{}
	for _, s := range out.Streams {
		switch s.CodecType {
		case "audio":
			info.HasAudio = true
		case "video":
			info.HasVideo = true
		}
	}
	if d := strings.TrimSpace(out.Format.Duration); d != "" && d != "N/A" {
		secs, err := strconv.ParseFloat(d, 64)
		if err != nil {
			return nil, fmt.Errorf("ffprobe: parse duration %q: %w", d, err)
		}
		info.Duration = time.Duration(math.Round(secs*1000)) * time.Millisecond
	}
	return info, nil
}

// ExtractAudio writes a mono PCM WAV of src to dst at the configured sample
// rate. It fails when src has no audio stream or the output is too small to
// hold real audio.
func (t *Toolchain) ExtractAudio(ctx context.Context, src, dst string) error {
	st, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("source: %w", err)
	}
	if st.Size() == 0 {
		return ErrEmptySource
	}

	info, err := t.Inspect(ctx, src)
	if err != nil {
		return err
	}
	if !info.HasAudio {
		return ErrNoAudio
	}

	res, err := t.runner.Run(ctx, process.Command{
		Binary: t.cfg.FFmpegPath,
		Args: []string{
			"-i", src,
			"-vn",
			"-acodec", "pcm_s16le",
			"-ar", strconv.Itoa(t.cfg.SampleRate),
			"-ac", "1",
			"-y", dst,
		},
	})
	if err != nil {
		return t.toolError("ffmpeg", res, err)
	}

	out, err := os.Stat(dst)
	if err != nil {
		return fmt.Errorf("audio not written: %w", err)
	}
	if out.Size() < t.cfg.MinAudioBytes {
		return fmt.Errorf("%w: %d bytes", ErrAudioTooSmall, out.Size())
	}
	t.log.WithContext(ctx).Debug("audio extracted", logger.Fields(logger.FieldPath, dst, "bytes", out.Size()))
	return nil
}

// Duration returns the duration ffprobe reports for of path.
func (t *Toolchain) Duration(ctx context.Context, path string) (time.Duration, error) {
	info, err := t.Inspect(ctx, path)
	if err != nil {
		return 0, err
	}
	return info.Duration, nil
}

// ClipLength is the configured clip length.
func (t *Toolchain) ClipLength() time.Duration {
	return time.Duration(t.cfg.ClipSeconds) * time.Second
}

// Clip encodes src between start and end seconds to dst as H.264/AAC.
func (t *Toolchain) Clip(ctx context.Context, src, dst string, start, end int) error {
	if end <= start {
		return fmt.Errorf("clip: invalid range %d-%d", start, end)
	}
	res, err := t.runner.Run(ctx, process.Command{
		Binary: t.cfg.FFmpegPath,
		Args: []string{
			"-ss", strconv.Itoa(start),
			"-i", src,
			"-t", strconv.Itoa(end - start),
			"-c:v", "libx264",
			"-c:a", "aac",
			"-preset", t.cfg.ClipPreset,
			"-crf", strconv.Itoa(t.cfg.ClipCRF),
			"-y", dst,
		},
	})
	if err != nil {
		return t.toolError("ffmpeg", res, err)
	}
	if _, err := os.Stat(dst); err != nil {
		return fmt.Errorf("clip not written: %w", err)
	}
	return nil
}

func (t *Toolchain) toolError(tool string, res *process.Result, err error) error {
	if tail := res.StderrTail(stderrTail); tail != "" {
		return fmt.Errorf("%s: %w: %s", tool, err, tail)
	}
	return fmt.Errorf("%s: %w", tool, err)
}
