// Package translation translates text into a target language through an
// LLM backend, chunking long input.
package translation

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/kbukum/snapstudy/capability"
	"github.com/kbukum/snapstudy/llm"
	"github.com/kbukum/snapstudy/provider"
)

const (
	// MinTextChars is the shortest text worth translating.
	MinTextChars = 3
	// ChunkChars bounds one backend request.
	ChunkChars = 5000
	// DefaultTarget is used when no target language is given.
	DefaultTarget = "hi"
	// SourceAuto asks the backend to detect the source language.
	SourceAuto = "auto"
)

// ErrTextTooShort is returned for input under MinTextChars.
var ErrTextTooShort = stderrors.New("text too short to translate")

// Request is the input of a Translator.
type Request struct {
	Text   string
	Source string
	Target string
}

// Response is the translated text.
type Response struct {
	Text  string
	Model string
}

// Translator is a translation capability handle. It translates one chunk.
type Translator = provider.RequestResponse[Request, Response]

// Translate validates text, splits it into chunks of at most ChunkChars,
// translates them in order and joins the results with a single space.
func Translate(ctx context.Context, tr Translator, text, target string) (string, error) {
	text = strings.TrimSpace(text)
	if len(text) < MinTextChars {
		return "", ErrTextTooShort
	}
	if target == "" {
		target = DefaultTarget
	}
	chunks := Chunk(text, ChunkChars)
	out := make([]string, 0, len(chunks))
	for i, c := range chunks {
		resp, err := tr.Execute(ctx, Request{Text: c, Source: SourceAuto, Target: target})
		if err != nil {
			return "", fmt.Errorf("chunk %d/%d: %w", i+1, len(chunks), err)
		}
		out = append(out, strings.TrimSpace(resp.Text))
	}
	return strings.Join(out, " "), nil
}

// Chunk splits text into pieces of at most size bytes, preferring to break
// at whitespace and never splitting a UTF-8 sequence.
func Chunk(text string, size int) []string {
	if size <= 0 || len(text) <= size {
		return []string{text}
	}
	var chunks []string
	for len(text) > size {
		cut := size
		for cut > 0 && !isBoundary(text, cut) {
			cut--
		}
		if !unicode.IsSpace(rune(text[cut])) {
			if ws := strings.LastIndexFunc(text[:cut], unicode.IsSpace); ws > 0 {
				cut = ws
			}
		}
		if cut == 0 {
			cut = size
		}
		if c := strings.TrimSpace(text[:cut]); c != "" {
			chunks = append(chunks, c)
		}
		text = strings.TrimLeftFunc(text[cut:], unicode.IsSpace)
	}
	if text != "" {
		chunks = append(chunks, text)
	}
	return chunks
}

// isBoundary reports whether i starts a UTF-8 sequence in s.
func isBoundary(s string, i int) bool {
	return i >= len(s) || s[i]&0xC0 != 0x80
}

// Prompt builds the translation instruction.
func Prompt(req Request) (system, user string) {
	source := "the detected source language"
	if req.Source != "" && req.Source != SourceAuto {
		source = req.Source
	}
	system = fmt.Sprintf("You are a translation engine. Translate from %s into the language with code %q. "+
		"Reply with the translation only, keeping the meaning and tone. Do not explain.", source, req.Target)
	return system, req.Text
}

// FromLLM adapts a chat completion backend to a Translator.
func FromLLM(p llm.Provider) Translator {
	return provider.Adapt(p, p.Name(),
		func(_ context.Context, req Request) (llm.CompletionRequest, error) {
			system, user := Prompt(req)
			return llm.UserPrompt(system, user), nil
		},
		func(resp llm.CompletionResponse) (Response, error) {
			if strings.TrimSpace(resp.Content) == "" {
				return Response{}, fmt.Errorf("translation: %w", llm.ErrEmptyResponse)
			}
			return Response{Text: resp.Content, Model: resp.Model}, nil
		},
	)
}

// LLMCandidate is a capability candidate backed by an LLM.
func LLMCandidate(id string, build llm.Builder) capability.Candidate[Translator] {
	return llm.Candidate(id, build, FromLLM)
}
