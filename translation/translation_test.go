package translation

import (
	"context"
	stderrors "errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/kbukum/snapstudy/llm"
)

type echoLLM struct {
	calls []llm.CompletionRequest
	err   error
}

func (e *echoLLM) Name() string                       { return "echo" }
func (e *echoLLM) IsAvailable(_ context.Context) bool { return true }
func (e *echoLLM) Execute(_ context.Context, req llm.CompletionRequest) (llm.CompletionResponse, error) {
	e.calls = append(e.calls, req)
	if e.err != nil {
		return llm.CompletionResponse{}, e.err
	}
	return llm.CompletionResponse{Content: "[" + req.Messages[0].Content + "]"}, nil
}

func TestTranslate(t *testing.T) {
	backend := &echoLLM{}
	got, err := Translate(context.Background(), FromLLM(backend), "  Hello world  ", "fr")
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}
	if got != "[Hello world]" {
		t.Errorf("expected %q, got %q", "[Hello world]", got)
	}
	if !strings.Contains(backend.calls[0].SystemPrompt, `"fr"`) {
		t.Errorf("expected target language in system prompt, got %q", backend.calls[0].SystemPrompt)
	}
}

func TestTranslateDefaultsTarget(t *testing.T) {
	backend := &echoLLM{}
	if _, err := Translate(context.Background(), FromLLM(backend), "Hello", ""); err != nil {
		t.Fatalf("Translate failed: %v", err)
	}
	if !strings.Contains(backend.calls[0].SystemPrompt, `"hi"`) {
		t.Errorf("expected default target %q, got %q", DefaultTarget, backend.calls[0].SystemPrompt)
	}
}

func TestTranslateRejectsShortText(t *testing.T) {
	backend := &echoLLM{}
	if _, err := Translate(context.Background(), FromLLM(backend), " ok ", "hi"); !stderrors.Is(err, ErrTextTooShort) {
		t.Errorf("expected ErrTextTooShort, got %v", err)
	}
	if len(backend.calls) != 0 {
		t.Error("expected backend not to be called")
	}
}

func TestTranslateChunksInOrder(t *testing.T) {
	backend := &echoLLM{}
	text := strings.Repeat("a", 4000) + " " + strings.Repeat("b", 4000) + " " + strings.Repeat("c", 10)

	got, err := Translate(context.Background(), FromLLM(backend), text, "hi")
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}
	if len(backend.calls) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(backend.calls))
	}
	want := "[" + strings.Repeat("a", 4000) + "] [" + strings.Repeat("b", 4000) + " " + strings.Repeat("c", 10) + "]"
	if got != want {
		t.Errorf("expected chunks joined by a single space in order")
	}
}

func TestTranslateChunkError(t *testing.T) {
	boom := stderrors.New("rate limited")
	_, err := Translate(context.Background(), FromLLM(&echoLLM{err: boom}), "Hello world", "hi")
	if !stderrors.Is(err, boom) {
		t.Errorf("expected backend error, got %v", err)
	}
}

func TestChunk(t *testing.T) {
	tests := []struct {
		name string
		text string
		size int
		want []string
	}{
		{"fits", "short text", 50, []string{"short text"}},
		{"breaks at space", "aaaa bbbb cccc", 9, []string{"aaaa bbbb", "cccc"}},
		{"hard split without spaces", "abcdefghij", 4, []string{"abcd", "efgh", "ij"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Chunk(tc.text, tc.size)
			if strings.Join(got, "|") != strings.Join(tc.want, "|") {
				t.Errorf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestChunkKeepsRunesWhole(t *testing.T) {
	text := strings.Repeat("é", 10)
	for _, c := range Chunk(text, 5) {
		if !utf8.ValidString(c) {
			t.Errorf("expected valid UTF-8 chunk, got %q", c)
		}
		if len(c) > 5 {
			t.Errorf("expected chunk within size, got %d bytes", len(c))
		}
	}
}
