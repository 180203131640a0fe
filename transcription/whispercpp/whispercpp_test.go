package whispercpp

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kbukum/snapstudy/capability"
	"github.com/kbukum/snapstudy/logger"
	"github.com/kbukum/snapstudy/process"
	"github.com/kbukum/snapstudy/transcription"
)

type fakeRunner struct {
	transcript string
	runErr     error
	missing    bool
	calls      []process.Command
}

func (f *fakeRunner) LookPath(binary string) (string, error) {
	if f.missing {
		return "", stderrors.New("not found")
	}
	return "/usr/local/bin/" + binary, nil
}

func (f *fakeRunner) Run(_ context.Context, cmd process.Command) (*process.Result, error) {
	f.calls = append(f.calls, cmd)
	if f.runErr != nil {
		return &process.Result{ExitCode: 1, Stderr: []byte("failed to load model")}, f.runErr
	}
	for i, a := range cmd.Args {
		if a == "-of" && f.transcript != "" {
			if err := os.WriteFile(cmd.Args[i+1]+".txt", []byte(f.transcript), 0o644); err != nil {
				return nil, err
			}
		}
	}
	return &process.Result{}, nil
}

func TestExecute(t *testing.T) {
	dir := t.TempDir()
	audio := filepath.Join(dir, "lecture.wav")
	runner := &fakeRunner{transcript: "\n Cells divide by mitosis.\n"}
	p := NewProvider(Config{ModelPath: "/models/ggml-base.bin"}, runner)

	resp, err := p.Execute(context.Background(), transcription.TranscriptionRequest{
		AudioPath:    audio,
		OutputPrefix: filepath.Join(dir, "lecture.transcript"),
	})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if resp.Text != "Cells divide by mitosis." {
		t.Errorf("expected trimmed transcript, got %q", resp.Text)
	}
	args := strings.Join(runner.calls[0].Args, " ")
	want := "-m /models/ggml-base.bin -f " + audio + " -of " + filepath.Join(dir, "lecture.transcript") + " -otxt -np -l auto"
	if args != want {
		t.Errorf("expected args %q, got %q", want, args)
	}
	if _, err := os.Stat(filepath.Join(dir, "lecture.transcript.txt")); err != nil {
		t.Errorf("expected transcript inside the given prefix: %v", err)
	}
}

func TestExecuteFailures(t *testing.T) {
	dir := t.TempDir()
	req := transcription.TranscriptionRequest{AudioPath: filepath.Join(dir, "a.wav")}

	p := NewProvider(Config{ModelPath: "m.bin"}, &fakeRunner{runErr: stderrors.New("exit status 1")})
	if _, err := p.Execute(context.Background(), req); err == nil || !strings.Contains(err.Error(), "whisper-cpp") {
		t.Errorf("expected external service error, got %v", err)
	}

	p = NewProvider(Config{ModelPath: "m.bin"}, &fakeRunner{})
	if _, err := p.Execute(context.Background(), req); err == nil {
		t.Error("expected missing transcript error")
	}

	p = NewProvider(Config{}, &fakeRunner{})
	if _, err := p.Execute(context.Background(), req); err == nil {
		t.Error("expected missing model error")
	}
}

func TestCheck(t *testing.T) {
	model := filepath.Join(t.TempDir(), "ggml-base.bin")
	if err := os.WriteFile(model, []byte("model"), 0o644); err != nil {
		t.Fatal(err)
	}

	runner := &fakeRunner{}
	if err := NewProvider(Config{ModelPath: model}, runner).Check(context.Background()); err != nil {
		t.Errorf("expected check to pass, got %v", err)
	}
	if len(runner.calls) != 1 || runner.calls[0].Args[0] != "--help" {
		t.Errorf("expected --help check, got %+v", runner.calls)
	}

	if err := NewProvider(Config{}, &fakeRunner{}).Check(context.Background()); err == nil {
		t.Error("expected error without model path")
	}
	if err := NewProvider(Config{ModelPath: model + ".missing"}, &fakeRunner{}).Check(context.Background()); err == nil {
		t.Error("expected error for missing model file")
	}
	if err := NewProvider(Config{ModelPath: model}, &fakeRunner{missing: true}).Check(context.Background()); err == nil {
		t.Error("expected error for missing binary")
	}
}

func TestCandidateRequiresModel(t *testing.T) {
	slot := capability.NewSlot(capability.KindTranscription,
		[]capability.Candidate[transcription.Provider]{Candidate(Config{}, &fakeRunner{})},
		capability.WithLogger(logger.Nop()))
	b := slot.Resolve(context.Background())
	if b.Available {
		t.Fatal("expected unavailable without a model")
	}
	if len(b.Attempts) != 1 || b.Attempts[0].Phase != capability.PhaseSmoke {
		t.Errorf("expected one failed smoke attempt, got %+v", b.Attempts)
	}
}
