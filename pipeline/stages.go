package pipeline

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/kbukum/snapstudy/capability"
	"github.com/kbukum/snapstudy/logger"
	"github.com/kbukum/snapstudy/quiz"
	"github.com/kbukum/snapstudy/stage"
	"github.com/kbukum/snapstudy/summarization"
	"github.com/kbukum/snapstudy/transcription"
	"github.com/kbukum/snapstudy/translation"
	"github.com/kbukum/snapstudy/workspace"
)

// stages holds the work functions of one run.
type stages struct {
	c   *Coordinator
	h   *workspace.Handle
	req Request

	// kept lists clips copied out of the workspace. Only cutClips writes it.
	kept []string
}

// bind resolves r and returns its handle, or the unavailable error.
func bind[T any](ctx context.Context, r capability.Resolver[T]) (T, error) {
	b := r.Resolve(ctx)
	if !b.Available {
		var zero T
		return zero, b.Err()
	}
	return b.Handle, nil
}

func (s *stages) extractAudio(ctx context.Context, in stage.Value) (stage.Value, error) {
	dst := s.h.AudioPath()
	if err := s.c.media.ExtractAudio(ctx, in.Path(), dst); err != nil {
		return stage.Value{}, err
	}
	return stage.PathsValue(dst), nil
}

func (s *stages) transcribe(ctx context.Context, in stage.Value) (stage.Value, error) {
	p, err := bind(ctx, s.c.caps.Transcription)
	if err != nil {
		return stage.Value{}, err
	}
	text, err := transcription.Transcribe(ctx, p, transcription.TranscriptionRequest{
		AudioPath:    in.Path(),
		Language:     s.c.cfg.Language,
		OutputPrefix: s.transcriptPrefix(),
	})
	if err != nil {
		return stage.Value{}, err
	}
	return stage.TextValue(text), nil
}

// transcriptPrefix is a tracked location for backends that write their
// transcript to <prefix>.txt.
func (s *stages) transcriptPrefix() string {
	return strings.TrimSuffix(s.h.Derive(workspace.Stem(s.h.Name())+".transcript.txt"), ".txt")
}

func (s *stages) summarize(ctx context.Context, in stage.Value) (stage.Value, error) {
	sum, err := bind(ctx, s.c.caps.Summarization)
	if err != nil {
		return stage.Value{}, err
	}
	text, err := summarization.Summarize(ctx, sum, in.Text)
	if err != nil {
		return stage.Value{}, err
	}
	return stage.TextValue(text), nil
}

func (s *stages) generateQuiz(ctx context.Context, in stage.Value) (stage.Value, error) {
	g, err := bind(ctx, s.c.caps.Quiz)
	if err != nil {
		return stage.Value{}, err
	}
	text, err := quiz.Generate(ctx, g, in.Text)
	if err != nil {
		return stage.Value{}, err
	}
	return stage.TextValue(text), nil
}

func (s *stages) translate(ctx context.Context, in stage.Value) (stage.Value, error) {
	tr, err := bind(ctx, s.c.caps.Translation)
	if err != nil {
		return stage.Value{}, err
	}
	text, err := translation.Translate(ctx, tr, in.Text, s.req.targetLang())
	if err != nil {
		return stage.Value{}, err
	}
	return stage.TextValue(text), nil
}

// cutClips cuts one highlight from the start of the source. Sources shorter
// than the clip length yield an empty list, and so does an ffprobe or encode
// error, which is logged. Only cancellation fails the stage.
func (s *stages) cutClips(ctx context.Context, in stage.Value) (stage.Value, error) {
	paths, err := s.clip(ctx, in.Path())
	if err != nil {
		if ctx.Err() != nil {
			return stage.Value{}, err
		}
		s.c.log.WithContext(ctx).Warn("clip generation produced nothing", logger.Fields(
			logger.FieldStage, StageClips,
			logger.FieldError, err.Error(),
		))
		return stage.PathsValue(), nil
	}
	return stage.PathsValue(paths...), nil
}

func (s *stages) clip(ctx context.Context, src string) ([]string, error) {
	d, err := s.c.media.Duration(ctx, src)
	if err != nil {
		return nil, err
	}
	length := s.c.media.ClipLength()
	if d < length {
		return nil, nil
	}
	end := int(length.Seconds())
	dst := s.h.ClipPath(0, end)
	if err := s.c.media.Clip(ctx, src, dst, 0, end); err != nil {
		return nil, err
	}
	if !s.h.KeepsClips() {
		return []string{dst}, nil
	}
	kept, err := s.h.Persist(dst)
	if err != nil {
		return nil, err
	}
	kept = filepath.Clean(kept)
	s.kept = append(s.kept, kept)
	return []string{kept}, nil
}
