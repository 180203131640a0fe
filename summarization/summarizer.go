package summarization

import (
	"context"
	stderrors "errors"
	"strings"

	"github.com/kbukum/snapstudy/capability"
	"github.com/kbukum/snapstudy/llm"
	"github.com/kbukum/snapstudy/provider"
	"github.com/kbukum/snapstudy/util"
)

const (
	// MinTextChars is the shortest transcript worth summarizing.
	MinTextChars = 10
	// LLMWindowWords is the input window for LLM backends.
	LLMWindowWords = 1024
	// ExtractiveWindowWords is the input window for the extractive fallback.
	ExtractiveWindowWords = 512
	// Prefix marks the input of a summarization prompt.
	Prefix = "summarize: "
)

// ErrTextTooShort is returned for input under MinTextChars.
var ErrTextTooShort = stderrors.New("text too short to summarize")

// Request is the input of a Summarizer.
type Request struct {
	Text string
}

// Response is the output of a Summarizer.
type Response struct {
	Summary string
	Model   string
}

// Summarizer is a summarization capability handle.
type Summarizer = provider.RequestResponse[Request, Response]

// Summarize validates text and returns the trimmed summary.
func Summarize(ctx context.Context, s Summarizer, text string) (string, error) {
	text = strings.TrimSpace(text)
	if len(text) < MinTextChars {
		return "", ErrTextTooShort
	}
	resp, err := s.Execute(ctx, Request{Text: text})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(resp.Summary), nil
}

const systemPrompt = "You summarize lecture and video transcripts for students. " +
	"Write a concise, factual summary of 100 to 300 words in plain prose. " +
	"Do not add information that is not in the transcript."

// FromLLM adapts a chat completion backend to a Summarizer. Input beyond
// LLMWindowWords is dropped.
func FromLLM(p llm.Provider) Summarizer {
	return provider.Adapt(p, p.Name(),
		func(_ context.Context, req Request) (llm.CompletionRequest, error) {
			return llm.UserPrompt(systemPrompt, Prefix+util.TruncateWords(req.Text, LLMWindowWords)), nil
		},
		func(resp llm.CompletionResponse) (Response, error) {
			if strings.TrimSpace(resp.Content) == "" {
				return Response{}, llm.ErrEmptyResponse
			}
			return Response{Summary: resp.Content, Model: resp.Model}, nil
		},
	)
}

// LLMCandidate is a capability candidate backed by an LLM.
func LLMCandidate(id string, build llm.Builder) capability.Candidate[Summarizer] {
	return llm.Candidate(id, build, FromLLM)
}
