package llm

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
)

// SmokePrompt is the cheap request used to prove a backend answers.
const SmokePrompt = "Say 'test' in one word."

// ErrEmptyResponse is returned when a backend answers with no text.
var ErrEmptyResponse = stderrors.New("llm: empty response")

// Complete sends system + user prompts and returns the trimmed text response.
// An empty reply is an error.
func Complete(ctx context.Context, p Provider, system, user string) (string, error) {
	resp, err := p.Execute(ctx, UserPrompt(system, user))
	if err != nil {
		return "", err
	}
	content := strings.TrimSpace(resp.Content)
	if content == "" {
		return "", ErrEmptyResponse
	}
	return content, nil
}

// Smoke sends SmokePrompt and fails unless the backend replies with text.
func Smoke(ctx context.Context, p Provider) error {
	if _, err := Complete(ctx, p, "", SmokePrompt); err != nil {
		return fmt.Errorf("%s smoke test: %w", p.Name(), err)
	}
	return nil
}

