package quiz

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/kbukum/snapstudy/capability"
	"github.com/kbukum/snapstudy/llm"
	"github.com/kbukum/snapstudy/provider"
)

// MinSummaryChars is the shortest summary a quiz is generated from.
const MinSummaryChars = 20

// QuestionCount is the number of questions requested.
const QuestionCount = 5

// GeminiModels are the Gemini model variants tried in order.
var GeminiModels = []string{
	"gemini-1.5-flash",
	"models/gemini-1.5-flash",
	"gemini-2.0-flash-exp",
	"models/gemini-1.5-pro",
	"models/gemini-2.5-flash",
	"models/gemini-2.0-flash",
}

// ErrSummaryTooShort is returned for summaries under MinSummaryChars.
var ErrSummaryTooShort = stderrors.New("summary too short to generate meaningful quiz questions")

// Request is the input of a Generator.
type Request struct {
	Summary string
}

// Response is the generated quiz text.
type Response struct {
	Quiz  string
	Model string
}

// Generator is a quiz capability handle.
type Generator = provider.RequestResponse[Request, Response]

// Generate validates summary and returns the trimmed quiz text.
func Generate(ctx context.Context, g Generator, summary string) (string, error) {
	summary = strings.TrimSpace(summary)
	if len(summary) < MinSummaryChars {
		return "", ErrSummaryTooShort
	}
	resp, err := g.Execute(ctx, Request{Summary: summary})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(resp.Quiz), nil
}

// Prompt builds the quiz prompt for summary.
func Prompt(summary string) string {
	var b strings.Builder
	b.WriteString("Based on the following content, create ")
	fmt.Fprintf(&b, "%d multiple choice questions to test understanding:\n\n", QuestionCount)
	b.WriteString("CONTENT:\n")
	b.WriteString(summary)
	b.WriteString("\n\nREQUIREMENTS:\n")
	fmt.Fprintf(&b, "- Generate exactly %d questions\n", QuestionCount)
	b.WriteString("- Each question should have 4 options: (A), (B), (C), (D)\n")
	b.WriteString("- Mark the correct answer clearly\n")
	b.WriteString("- Questions should test different aspects of the content\n")
	b.WriteString("- Make questions clear and unambiguous\n")
	b.WriteString("- Focus on key concepts and facts\n\n")
	b.WriteString("FORMAT:\n")
	b.WriteString("Question 1: [Your question here]\n")
	b.WriteString("(A) First option\n(B) Second option\n(C) Third option\n(D) Fourth option\n")
	b.WriteString("Correct Answer: (X)\n\n")
	fmt.Fprintf(&b, "[Continue for all %d questions]\n\n", QuestionCount)
	b.WriteString("Please ensure all questions are based on the provided content.")
	return b.String()
}

// FromLLM adapts a chat completion backend to a Generator.
func FromLLM(p llm.Provider) Generator {
	return provider.Adapt(p, p.Name(),
		func(_ context.Context, req Request) (llm.CompletionRequest, error) {
			return llm.UserPrompt("", Prompt(req.Summary)), nil
		},
		func(resp llm.CompletionResponse) (Response, error) {
			if strings.TrimSpace(resp.Content) == "" {
				return Response{}, fmt.Errorf("quiz generation: %w", llm.ErrEmptyResponse)
			}
			return Response{Quiz: resp.Content, Model: resp.Model}, nil
		},
	)
}

// LLMCandidate is a capability candidate backed by an LLM.
func LLMCandidate(id string, build llm.Builder) capability.Candidate[Generator] {
	return llm.Candidate(id, build, FromLLM)
}

// GeminiCandidates returns one candidate per entry of models, in order.
// newModel builds the Gemini backend for one model name.
func GeminiCandidates(models []string, newModel func(ctx context.Context, model string) (llm.Provider, error)) []capability.Candidate[Generator] {
	out := make([]capability.Candidate[Generator], 0, len(models))
	for _, m := range models {
		model := m
		out = append(out, LLMCandidate(model, func(ctx context.Context) (llm.Provider, error) {
			return newModel(ctx, model)
		}))
	}
	return out
}
