package pipeline

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kbukum/snapstudy/capability"
	"github.com/kbukum/snapstudy/errors"
	"github.com/kbukum/snapstudy/llm"
	"github.com/kbukum/snapstudy/logger"
	"github.com/kbukum/snapstudy/media"
	"github.com/kbukum/snapstudy/provider"
	"github.com/kbukum/snapstudy/quiz"
	"github.com/kbukum/snapstudy/stage"
	"github.com/kbukum/snapstudy/summarization"
	"github.com/kbukum/snapstudy/transcription"
	"github.com/kbukum/snapstudy/translation"
	"github.com/kbukum/snapstudy/workspace"
)

// fakeMedia writes placeholder files instead of running ffmpeg.
type fakeMedia struct {
	extractErr error
	duration   time.Duration
	clipErr    error
	block      bool
	clips      atomic.Int32
}

func (m *fakeMedia) ExtractAudio(_ context.Context, _, dst string) error {
	if m.extractErr != nil {
		return m.extractErr
	}
	return os.WriteFile(dst, bytes.Repeat([]byte{0}, 4096), 0o644)
}

func (m *fakeMedia) Duration(context.Context, string) (time.Duration, error) {
	return m.duration, nil
}

func (m *fakeMedia) ClipLength() time.Duration { return 5 * time.Second }

func (m *fakeMedia) Clip(ctx context.Context, _, dst string, _, _ int) error {
	m.clips.Add(1)
	if m.block {
		<-ctx.Done()
		return ctx.Err()
	}
	if m.clipErr != nil {
		return m.clipErr
	}
	return os.WriteFile(dst, []byte("clip"), 0o644)
}

const transcript = "Cells are the basic unit of life. Mitochondria produce the energy cells need to survive."

type fixture struct {
	transcriptions atomic.Int32
	summaries      atomic.Int32
	quizzes        atomic.Int32
	translations   atomic.Int32
	transcriber    func(ctx context.Context, req transcription.TranscriptionRequest) (transcription.TranscriptionResponse, error)
	summary        string
	quizAvailable  bool
}

func newFixture() *fixture {
	f := &fixture{quizAvailable: true, summary: "Mitochondria produce energy for cells."}
	f.transcriber = func(context.Context, transcription.TranscriptionRequest) (transcription.TranscriptionResponse, error) {
		return transcription.TranscriptionResponse{Text: transcript}, nil
	}
	return f
}

func bound[T any](kind capability.Kind, id string, h T) capability.Resolver[T] {
	return capability.Static(&capability.Binding[T]{Kind: kind, CandidateID: id, Handle: h, Available: true})
}

func (f *fixture) capabilities() Capabilities {
	transcriber := provider.Func("fake-whisper", func(ctx context.Context, req transcription.TranscriptionRequest) (transcription.TranscriptionResponse, error) {
		f.transcriptions.Add(1)
		return f.transcriber(ctx, req)
	})
	summarizer := provider.Func("fake-summary", func(context.Context, summarization.Request) (summarization.Response, error) {
		f.summaries.Add(1)
		return summarization.Response{Summary: f.summary}, nil
	})

	var quizResolver capability.Resolver[quiz.Generator]
	if f.quizAvailable {
		quizResolver = bound[quiz.Generator](capability.KindQuiz, "fake-quiz", provider.Func("fake-quiz",
			func(_ context.Context, req quiz.Request) (quiz.Response, error) {
				f.quizzes.Add(1)
				return quiz.Response{Quiz: "Question 1: What produces energy?"}, nil
			}))
	} else {
		noKey := func(context.Context, string) (llm.Provider, error) {
			return nil, stderrors.New("GEMINI_API_KEY is not set")
		}
		quizResolver = capability.NewSlot(capability.KindQuiz, quiz.GeminiCandidates(quiz.GeminiModels, noKey),
			capability.WithLogger(logger.Nop()))
	}

	return Capabilities{
		Transcription: bound[transcription.Provider](capability.KindTranscription, "fake-whisper", transcriber),
		Summarization: bound[summarization.Summarizer](capability.KindSummarization, "fake-summary", summarizer),
		Quiz:          quizResolver,
		Translation: bound[translation.Translator](capability.KindTranslation, "fake-translate", provider.Func("fake-translate",
			func(_ context.Context, req translation.Request) (translation.Response, error) {
				f.translations.Add(1)
				return translation.Response{Text: "[" + req.Target + "] " + req.Text}, nil
			})),
	}
}

func newCoordinator(t *testing.T, cfg Config, m Media, caps Capabilities, keepDir string) (*Coordinator, *workspace.Manager) {
	t.Helper()
	ws, err := workspace.NewManager(workspace.Config{RootDir: t.TempDir(), KeepClipsDir: keepDir})
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	c, err := New(cfg, ws, m, caps, WithLogger(logger.Nop()))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return c, ws
}

func writeSource(t *testing.T) string {
	t.Helper()
	p := t.TempDir() + "/lecture.mp4"
	if err := os.WriteFile(p, []byte("video"), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func statusesOf(res *Result) string {
	parts := make([]string, len(res.Outcomes))
	for i, o := range res.Outcomes {
		parts[i] = o.Stage + "=" + string(o.Status)
	}
	return strings.Join(parts, ",")
}

func TestRunAllStagesSucceed(t *testing.T) {
	f := newFixture()
	c, ws := newCoordinator(t, Config{}, &fakeMedia{duration: 30 * time.Second}, f.capabilities(), "")

	res, err := c.Run(context.Background(), Request{SourcePath: writeSource(t), TargetLang: "fr"})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	for i, o := range res.Outcomes {
		if o.Stage != StageOrder[i] {
			t.Errorf("expected outcome %d to be %q, got %q", i, StageOrder[i], o.Stage)
		}
		if !o.Ok() {
			t.Errorf("expected %s to succeed, got %s (%s)", o.Stage, o.Status, o.Message())
		}
	}

	p := res.Payload()
	if p.Transcript != transcript {
		t.Errorf("expected transcript %q, got %q", transcript, p.Transcript)
	}
	if p.TranslatedSummary != "[fr] Mitochondria produce energy for cells." {
		t.Errorf("unexpected translated summary %q", p.TranslatedSummary)
	}
	if ws.Active() != 0 {
		t.Errorf("expected workspace released, %d active", ws.Active())
	}

	clips, _ := res.Outcome(StageClips)
	if len(clips.Paths()) != 1 || !strings.HasSuffix(clips.Paths()[0], "lecture_clip_0-5.mp4") {
		t.Fatalf("expected one clip in the outcome, got %v", clips.Paths())
	}
	if _, err := os.Stat(clips.Paths()[0]); !os.IsNotExist(err) {
		t.Errorf("expected clip removed with the workspace, got %v", err)
	}
	if len(p.Clips) != 0 {
		t.Errorf("expected no deleted clip paths in the payload, got %v", p.Clips)
	}
}

func TestRunGatesOnOutcomeNotText(t *testing.T) {
	f := newFixture()
	f.summary = "The experiment failed to reject the null hypothesis. Error bars overlapped."
	c, _ := newCoordinator(t, Config{}, &fakeMedia{duration: 3 * time.Second}, f.capabilities(), "")

	res, err := c.Run(context.Background(), Request{SourcePath: writeSource(t), TargetLang: "de"})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	want := "audio_extraction=succeeded,transcription=succeeded,summarization=succeeded," +
		"quiz_generation=succeeded,translation=succeeded,clip_generation=succeeded"
	if got := statusesOf(res); got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
	if f.quizzes.Load() != 1 || f.translations.Load() != 1 {
		t.Errorf("expected quiz and translation to run once each, got %d and %d", f.quizzes.Load(), f.translations.Load())
	}
	if p := res.Payload(); p.TranslatedSummary != "[de] "+f.summary {
		t.Errorf("expected %q, got %q", "[de] "+f.summary, p.TranslatedSummary)
	}
}

func TestRunClipFailureIsIsolated(t *testing.T) {
	f := newFixture()
	m := &fakeMedia{duration: 30 * time.Second, clipErr: stderrors.New("libx264: encoder init failed")}
	c, _ := newCoordinator(t, Config{}, m, f.capabilities(), t.TempDir())

	res, err := c.Run(context.Background(), Request{SourcePath: writeSource(t)})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	want := "audio_extraction=succeeded,transcription=succeeded,summarization=succeeded," +
		"quiz_generation=succeeded,translation=succeeded,clip_generation=succeeded"
	if got := statusesOf(res); got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
	if m.clips.Load() != 1 {
		t.Errorf("expected one clip attempt, got %d", m.clips.Load())
	}
	clips, _ := res.Outcome(StageClips)
	if !clips.Value.Empty || len(clips.Paths()) != 0 {
		t.Errorf("expected an empty clip list, got %+v", clips.Value)
	}
	p := res.Payload()
	if p.Transcript != transcript || p.Quiz == "" || p.TranslatedSummary == "" {
		t.Errorf("expected text stages untouched, got %+v", p)
	}
	if len(p.Clips) != 0 {
		t.Errorf("expected no clips, got %v", p.Clips)
	}
}

func TestRunClipCancellationFails(t *testing.T) {
	f := newFixture()
	m := &fakeMedia{duration: 30 * time.Second, block: true}
	cfg := Config{StageTimeouts: map[string]time.Duration{StageClips: 20 * time.Millisecond}}
	c, _ := newCoordinator(t, cfg, m, f.capabilities(), "")

	res, _ := c.Run(context.Background(), Request{SourcePath: writeSource(t)})
	clips, _ := res.Outcome(StageClips)
	if clips.Status != stage.StatusFailed {
		t.Errorf("expected a timed out clip stage to fail, got %s", clips.Status)
	}
}

func TestRunAudioFailureSkipsTextStages(t *testing.T) {
	f := newFixture()
	m := &fakeMedia{extractErr: fmt.Errorf("ffprobe: %w", media.ErrNoAudio), duration: 30 * time.Second}
	c, _ := newCoordinator(t, Config{}, m, f.capabilities(), "")

	res, err := c.Run(context.Background(), Request{SourcePath: writeSource(t)})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	want := "audio_extraction=failed,transcription=skipped,summarization=skipped," +
		"quiz_generation=skipped,translation=skipped,clip_generation=succeeded"
	if got := statusesOf(res); got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
	if n := f.transcriptions.Load(); n != 0 {
		t.Errorf("expected transcription never invoked, got %d calls", n)
	}
	if m.clips.Load() != 1 {
		t.Error("expected clip generation to run regardless of audio failure")
	}

	p := res.Payload()
	if !strings.Contains(p.Transcript, "no audio track") {
		t.Errorf("expected transcript to carry the audio failure, got %q", p.Transcript)
	}
	skipped, _ := res.Outcome(StageSummarization)
	if skipped.Error.Kind != errors.KindUpstreamSkip || !strings.Contains(skipped.Reason, StageTranscription) {
		t.Errorf("expected skip naming %q, got %+v", StageTranscription, skipped)
	}
}

func TestRunQuizUnavailable(t *testing.T) {
	f := newFixture()
	f.quizAvailable = false
	c, _ := newCoordinator(t, Config{}, &fakeMedia{duration: 3 * time.Second}, f.capabilities(), "")

	res, err := c.Run(context.Background(), Request{SourcePath: writeSource(t)})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	want := "audio_extraction=succeeded,transcription=succeeded,summarization=succeeded," +
		"quiz_generation=failed,translation=succeeded,clip_generation=succeeded"
	if got := statusesOf(res); got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
	q, _ := res.Outcome(StageQuiz)
	if q.Error.Kind != errors.KindResourceUnavailable {
		t.Errorf("expected kind %q, got %q", errors.KindResourceUnavailable, q.Error.Kind)
	}
	clips, _ := res.Outcome(StageClips)
	if !clips.Value.Empty || len(clips.Paths()) != 0 {
		t.Errorf("expected empty clip list for a short source, got %+v", clips.Value)
	}
	if p := res.Payload(); p.Clips == nil || len(p.Clips) != 0 {
		t.Errorf("expected clips to project as [], got %v", p.Clips)
	}
}

func TestRunIsRepeatable(t *testing.T) {
	f := newFixture()
	f.quizAvailable = false
	c, _ := newCoordinator(t, Config{}, &fakeMedia{duration: 12 * time.Second}, f.capabilities(), "")
	src := writeSource(t)

	first, _ := c.Run(context.Background(), Request{SourcePath: src})
	second, _ := c.Run(context.Background(), Request{SourcePath: src})
	if statusesOf(first) != statusesOf(second) {
		t.Errorf("expected identical outcome kinds, got %s and %s", statusesOf(first), statusesOf(second))
	}
	if first.WorkspaceID == second.WorkspaceID {
		t.Error("expected a fresh workspace per run")
	}
}

func TestRunEmptyTranscript(t *testing.T) {
	f := newFixture()
	f.transcriber = func(context.Context, transcription.TranscriptionRequest) (transcription.TranscriptionResponse, error) {
		return transcription.TranscriptionResponse{Text: "  \n"}, nil
	}
	c, _ := newCoordinator(t, Config{}, &fakeMedia{}, f.capabilities(), "")

	res, _ := c.Run(context.Background(), Request{SourcePath: writeSource(t)})
	tr, _ := res.Outcome(StageTranscription)
	if !tr.Ok() || !tr.Value.Empty {
		t.Errorf("expected succeeded empty transcript, got %+v", tr)
	}
	sum, _ := res.Outcome(StageSummarization)
	if sum.Status != stage.StatusFailed || sum.Error.Kind != errors.KindStageFailure {
		t.Errorf("expected summarization to fail on empty input, got %+v", sum)
	}
	if f.summaries.Load() != 0 {
		t.Error("expected the summarizer not to be called for empty text")
	}
}

func TestRunStageTimeout(t *testing.T) {
	f := newFixture()
	f.transcriber = func(ctx context.Context, _ transcription.TranscriptionRequest) (transcription.TranscriptionResponse, error) {
		<-ctx.Done()
		return transcription.TranscriptionResponse{}, ctx.Err()
	}
	cfg := Config{StageTimeouts: map[string]time.Duration{StageTranscription: 20 * time.Millisecond}}
	c, _ := newCoordinator(t, cfg, &fakeMedia{}, f.capabilities(), "")

	res, _ := c.Run(context.Background(), Request{SourcePath: writeSource(t)})
	tr, _ := res.Outcome(StageTranscription)
	if tr.Status != stage.StatusFailed || tr.Error.Code != errors.ErrCodeTimeout {
		t.Errorf("expected timed out transcription, got %+v", tr.Error)
	}
	if !strings.Contains(tr.Message(), "timed out") {
		t.Errorf("expected a timed out message, got %q", tr.Message())
	}
}

func TestRunUploadBody(t *testing.T) {
	f := newFixture()
	keep := t.TempDir()
	c, ws := newCoordinator(t, Config{}, &fakeMedia{duration: 8 * time.Second}, f.capabilities(), keep)

	res, err := c.Run(context.Background(), Request{
		Body:     strings.NewReader("uploaded video"),
		Filename: "../../etc/passwd.mp4",
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	clips := res.Payload().Clips
	if len(clips) != 1 {
		t.Fatalf("expected one clip, got %v", clips)
	}
	if !strings.HasPrefix(clips[0], keep) || strings.Contains(clips[0], "..") {
		t.Errorf("expected a persisted, sanitized clip path, got %q", clips[0])
	}
	if _, err := os.Stat(clips[0]); err != nil {
		t.Errorf("expected persisted clip to outlive the workspace: %v", err)
	}
	entries, _ := os.ReadDir(ws.Root())
	if len(entries) != 0 {
		t.Errorf("expected workspace root to be empty, got %d entries", len(entries))
	}
}

type panicWorkspaces struct{}

func (panicWorkspaces) Acquire(context.Context, string) (*workspace.Handle, error) {
	panic("disk on fire")
}

func TestRunRecoversFault(t *testing.T) {
	f := newFixture()
	c, err := New(Config{}, panicWorkspaces{}, &fakeMedia{}, f.capabilities(), WithLogger(logger.Nop()))
	if err != nil {
		t.Fatal(err)
	}
	res, err := c.Run(context.Background(), Request{SourcePath: "lecture.mp4"})
	if err != nil {
		t.Fatalf("expected recovered fault without error, got %v", err)
	}
	if res.Error == nil || res.Error.Kind != errors.KindFatal {
		t.Fatalf("expected a fatal top-level error, got %+v", res.Error)
	}
	if len(res.Outcomes) != len(StageOrder) {
		t.Fatalf("expected %d outcomes, got %d", len(StageOrder), len(res.Outcomes))
	}
	for _, o := range res.Outcomes {
		if o.Status != stage.StatusFailed {
			t.Errorf("expected %s failed, got %s", o.Stage, o.Status)
		}
	}
}

func TestRunWithoutSource(t *testing.T) {
	f := newFixture()
	c, ws := newCoordinator(t, Config{}, &fakeMedia{}, f.capabilities(), "")
	res, err := c.Run(context.Background(), Request{Filename: "x.mp4"})
	if err == nil {
		t.Fatal("expected an error without a source")
	}
	if errors.KindOf(err) != errors.KindInputInvalid {
		t.Errorf("expected input_invalid, got %q", errors.KindOf(err))
	}
	if len(res.Outcomes) != len(StageOrder) {
		t.Errorf("expected every stage reported, got %d", len(res.Outcomes))
	}
	if ws.Active() != 0 {
		t.Error("expected workspace released")
	}
}

func TestNewValidates(t *testing.T) {
	ws, _ := workspace.NewManager(workspace.Config{RootDir: t.TempDir()})
	if _, err := New(Config{}, ws, &fakeMedia{}, Capabilities{}); err == nil {
		t.Error("expected error for missing capabilities")
	}
	if _, err := New(Config{}, nil, &fakeMedia{}, newFixture().capabilities()); err == nil {
		t.Error("expected error for missing workspaces")
	}
}
