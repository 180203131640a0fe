package llm

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/kbukum/snapstudy/provider"
)

type stubProvider struct {
	reply string
	err   error
	last  CompletionRequest
}

func (s *stubProvider) Name() string                       { return "stub" }
func (s *stubProvider) IsAvailable(_ context.Context) bool { return true }
func (s *stubProvider) Execute(_ context.Context, req CompletionRequest) (CompletionResponse, error) {
	s.last = req
	if s.err != nil {
		return CompletionResponse{}, s.err
	}
	return CompletionResponse{Content: s.reply}, nil
}

var _ Provider = (*stubProvider)(nil)

func TestComplete(t *testing.T) {
	p := &stubProvider{reply: "  The answer is 42.\n"}
	got, err := Complete(context.Background(), p, "You are helpful.", "What is the answer?")
	if err != nil {
		t.Fatalf("Complete() error: %v", err)
	}
	if got != "The answer is 42." {
		t.Errorf("expected trimmed reply, got %q", got)
	}
	if p.last.SystemPrompt != "You are helpful." || p.last.Messages[0].Role != RoleUser {
		t.Errorf("unexpected request: %+v", p.last)
	}

	if _, err := Complete(context.Background(), &stubProvider{reply: "   "}, "", "x"); !stderrors.Is(err, ErrEmptyResponse) {
		t.Errorf("expected ErrEmptyResponse, got %v", err)
	}
}

func TestSmoke(t *testing.T) {
	p := &stubProvider{reply: "test"}
	if err := Smoke(context.Background(), p); err != nil {
		t.Errorf("expected smoke to pass, got %v", err)
	}
	if p.last.Messages[0].Content != SmokePrompt {
		t.Errorf("expected smoke prompt, got %q", p.last.Messages[0].Content)
	}

	boom := stderrors.New("quota exceeded")
	if err := Smoke(context.Background(), &stubProvider{err: boom}); !stderrors.Is(err, boom) {
		t.Errorf("expected wrapped error, got %v", err)
	}
	if err := Smoke(context.Background(), &stubProvider{}); err == nil {
		t.Error("expected empty reply to fail smoke")
	}
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry()
	reg.RegisterFactory("stub", func(cfg Config) (Provider, error) {
		return &stubProvider{reply: cfg.Model}, nil
	})
	p, err := reg.Create("stub", Config{Model: "m1"})
	if err != nil {
		t.Fatal(err)
	}
	if got, _ := Complete(context.Background(), p, "", "x"); got != "m1" {
		t.Errorf("expected config passed to factory, got %q", got)
	}

	wrapped := provider.Observe[CompletionRequest, CompletionResponse](p, nil, nil)
	if err := Smoke(context.Background(), wrapped); err != nil {
		t.Errorf("expected wrapped provider to pass smoke, got %v", err)
	}
}

func TestConfigDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()
	if cfg.Timeout != DefaultTimeout {
		t.Errorf("expected default timeout, got %v", cfg.Timeout)
	}
	if got := cfg.WithModel("x"); got.Model != "x" || cfg.Model != "" {
		t.Error("expected WithModel to copy")
	}
}

func TestCandidate(t *testing.T) {
	backend := &stubProvider{reply: "test"}
	c := Candidate("stub", func(context.Context) (Provider, error) { return backend, nil },
		func(p Provider) string { return "wrapped:" + p.Name() })

	h, err := c.Construct(context.Background())
	if err != nil {
		t.Fatalf("Construct failed: %v", err)
	}
	if h != "wrapped:stub" {
		t.Errorf("expected wrapped handle, got %q", h)
	}
	if err := c.Smoke(context.Background(), h); err != nil {
		t.Errorf("expected smoke to pass, got %v", err)
	}
	if backend.last.Messages[0].Content != SmokePrompt {
		t.Errorf("expected smoke prompt to reach the backend, got %q", backend.last.Messages[0].Content)
	}

	boom := stderrors.New("missing GEMINI_API_KEY")
	failing := Candidate("gemini", func(context.Context) (Provider, error) { return nil, boom },
		func(p Provider) string { return p.Name() })
	if _, err := failing.Construct(context.Background()); !stderrors.Is(err, boom) {
		t.Errorf("expected builder error, got %v", err)
	}
}

func TestFromRegistry(t *testing.T) {
	reg := NewRegistry()
	reg.RegisterFactory("stub", func(cfg Config) (Provider, error) {
		return &stubProvider{reply: cfg.Model}, nil
	})

	p, err := FromRegistry(reg, "stub", Config{Model: "m1"})(context.Background())
	if err != nil {
		t.Fatalf("expected registered backend, got %v", err)
	}
	if got, _ := Complete(context.Background(), p, "", "hi"); got != "m1" {
		t.Errorf("expected config to reach the factory, got %q", got)
	}
	if _, err := FromRegistry(reg, "missing", Config{})(context.Background()); err == nil {
		t.Error("expected error for unregistered backend")
	}
}
