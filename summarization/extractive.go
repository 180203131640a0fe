package summarization

import (
	"context"
	"strings"
	"unicode"

	"github.com/kbukum/snapstudy/capability"
	"github.com/kbukum/snapstudy/provider"
)

// ExtractiveName is the ID of the local fallback.
const ExtractiveName = "extractive"

const (
	extractiveMinWords = 30
	extractiveMaxWords = 150
)

// Extractive returns a Summarizer that keeps the leading sentences of the
// input. It needs no backend and is always available.
func Extractive() Summarizer {
	return provider.Func(ExtractiveName, func(_ context.Context, req Request) (Response, error) {
		return Response{Summary: extract(req.Text), Model: ExtractiveName}, nil
	})
}

// ExtractiveCandidate is the last-resort summarization candidate.
func ExtractiveCandidate() capability.Candidate[Summarizer] {
	return capability.Candidate[Summarizer]{
		ID: ExtractiveName,
		Construct: func(context.Context) (Summarizer, error) {
			return Extractive(), nil
		},
	}
}

// extract takes whole sentences from the start of text until at least
// extractiveMinWords are collected, never exceeding extractiveMaxWords.
func extract(text string) string {
	text = strings.TrimPrefix(strings.TrimSpace(text), Prefix)
	words := strings.Fields(text)
	if len(words) > ExtractiveWindowWords {
		words = words[:ExtractiveWindowWords]
	}

	var out []string
	count := 0
	for _, s := range sentences(strings.Join(words, " ")) {
		n := len(strings.Fields(s))
		if count > 0 && count+n > extractiveMaxWords {
			break
		}
		out = append(out, s)
		count += n
		if count >= extractiveMinWords {
			break
		}
	}
	summary := strings.Join(out, " ")
	if fields := strings.Fields(summary); len(fields) > extractiveMaxWords {
		summary = strings.Join(fields[:extractiveMaxWords], " ")
	}
	return summary
}

// sentences splits on '.', '!' or '?' followed by whitespace.
func sentences(text string) []string {
	var out []string
	start := 0
	runes := []rune(text)
	for i, r := range runes {
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		if i+1 < len(runes) && !unicode.IsSpace(runes[i+1]) {
			continue
		}
		if s := strings.TrimSpace(string(runes[start : i+1])); s != "" {
			out = append(out, s)
		}
		start = i + 1
	}
	if s := strings.TrimSpace(string(runes[start:])); s != "" {
		out = append(out, s)
	}
	return out
}
