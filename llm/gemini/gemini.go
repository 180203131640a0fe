// Package gemini implements llm.Provider on the Google Gen AI SDK.
package gemini

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/kbukum/snapstudy/errors"
	"github.com/kbukum/snapstudy/llm"
)

const (
	// ProviderName is the registered name for the Gemini provider.
	ProviderName = "gemini"
	// DefaultModel is used when the config names none.
	DefaultModel = "gemini-1.5-flash"
)

// ErrNoAPIKey is returned when no API key is configured.
var ErrNoAPIKey = stderrors.New("gemini: api key is required (GEMINI_API_KEY)")

var _ llm.Provider = (*Provider)(nil)

// Provider calls one Gemini model.
type Provider struct {
	cfg    llm.Config
	client *genai.Client
}

// NewProvider creates a Gemini client. It fails without an API key; no
// request is sent.
func NewProvider(ctx context.Context, cfg llm.Config) (*Provider, error) {
	cfg.ApplyDefaults()
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrNoAPIKey
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}

	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	return &Provider{cfg: cfg, client: client}, nil
}

// Factory returns a factory for the llm registry.
func Factory() llm.Factory {
	return func(cfg llm.Config) (llm.Provider, error) {
		return NewProvider(context.Background(), cfg)
	}
}

// Name returns "gemini/<model>".
func (p *Provider) Name() string { return ProviderName + "/" + p.cfg.Model }

// Model returns the configured model name.
func (p *Provider) Model() string { return p.cfg.Model }

// IsAvailable reports whether a client was built. Reachability is proven by
// the caller's smoke test.
func (p *Provider) IsAvailable(_ context.Context) bool { return p.client != nil }

// Execute generates content for the request.
func (p *Provider) Execute(ctx context.Context, req llm.CompletionRequest) (llm.CompletionResponse, error) {
	model := p.cfg.Model
	if req.Model != "" {
		model = req.Model
	}

	result, err := p.client.Models.GenerateContent(ctx, model, buildContents(req), p.buildConfig(req))
	if err != nil {
		return llm.CompletionResponse{}, errors.ExternalServiceError(ProviderName, fmt.Errorf("gemini generate content: %w", err))
	}

	resp := llm.CompletionResponse{Content: textOf(result), Model: model}
	if result != nil && result.UsageMetadata != nil {
		resp.Usage = llm.Usage{
			PromptTokens:     int(result.UsageMetadata.PromptTokenCount),
			CompletionTokens: int(result.UsageMetadata.CandidatesTokenCount),
			TotalTokens:      int(result.UsageMetadata.TotalTokenCount),
		}
	}
	return resp, nil
}

func buildContents(req llm.CompletionRequest) []*genai.Content {
	contents := make([]*genai.Content, 0, len(req.Messages))
	for _, m := range req.Messages {
		switch m.Role {
		case llm.RoleSystem:
			continue
		case llm.RoleAssistant:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleUser))
		}
	}
	return contents
}

func (p *Provider) buildConfig(req llm.CompletionRequest) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{}
	system := systemText(req)
	if system != "" {
		cfg.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}
	temp := p.cfg.Temperature
	if req.Temperature != 0 {
		temp = req.Temperature
	}
	if temp != 0 {
		cfg.Temperature = genai.Ptr(float32(temp))
	}
	return cfg
}

// systemText merges SystemPrompt with any system-role messages.
func systemText(req llm.CompletionRequest) string {
	parts := make([]string, 0, 1)
	if req.SystemPrompt != "" {
		parts = append(parts, req.SystemPrompt)
	}
	for _, m := range req.Messages {
		if m.Role == llm.RoleSystem && m.Content != "" {
			parts = append(parts, m.Content)
		}
	}
	return strings.Join(parts, "\n\n")
}

func textOf(result *genai.GenerateContentResponse) string {
	if result == nil || len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range result.Candidates[0].Content.Parts {
		if part != nil && part.Text != "" {
			b.WriteString(part.Text)
		}
	}
	return b.String()
}
