// Package openai implements llm.Provider on the official OpenAI SDK. Any
// OpenAI-compatible endpoint works through BaseURL.
package openai

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"

	"github.com/kbukum/snapstudy/errors"
	"github.com/kbukum/snapstudy/llm"
)

const (
	// ProviderName is the registered name for the OpenAI provider.
	ProviderName = "openai"
	// DefaultModel is used when the config names none.
	DefaultModel = "gpt-4o-mini"
)

// ErrNoAPIKey is returned when no API key is configured.
var ErrNoAPIKey = stderrors.New("openai: api key is required (OPENAI_API_KEY)")

var _ llm.Provider = (*Provider)(nil)

// Provider calls the chat completions API.
type Provider struct {
	cfg    llm.Config
	client openai.Client
}

// NewProvider creates an OpenAI client. Extra options are appended after the
// config-derived ones.
func NewProvider(cfg llm.Config, opts ...option.RequestOption) (*Provider, error) {
	cfg.ApplyDefaults()
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrNoAPIKey
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}

	base := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
	}
	if cfg.BaseURL != "" {
		base = append(base, option.WithBaseURL(cfg.BaseURL))
	}
	return &Provider{cfg: cfg, client: openai.NewClient(append(base, opts...)...)}, nil
}

// Factory returns a factory for the llm registry.
func Factory() llm.Factory {
	return func(cfg llm.Config) (llm.Provider, error) {
		return NewProvider(cfg)
	}
}

// Name returns "openai/<model>".
func (p *Provider) Name() string { return ProviderName + "/" + p.cfg.Model }

// IsAvailable reports whether the client is configured.
func (p *Provider) IsAvailable(_ context.Context) bool { return p.cfg.APIKey != "" }

// Execute sends a chat completion request.
func (p *Provider) Execute(ctx context.Context, req llm.CompletionRequest) (llm.CompletionResponse, error) {
	params := p.buildParams(req)

	resp, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return llm.CompletionResponse{}, errors.ExternalServiceError(ProviderName, fmt.Errorf("openai chat completion: %w", err))
	}
	if len(resp.Choices) == 0 {
		return llm.CompletionResponse{Model: string(resp.Model)}, nil
	}

	return llm.CompletionResponse{
		Content: resp.Choices[0].Message.Content,
		Model:   string(resp.Model),
		Usage: llm.Usage{
			PromptTokens:     int(resp.Usage.PromptTokens),
			CompletionTokens: int(resp.Usage.CompletionTokens),
			TotalTokens:      int(resp.Usage.TotalTokens),
		},
	}, nil
}

func (p *Provider) buildParams(req llm.CompletionRequest) openai.ChatCompletionNewParams {
	model := p.cfg.Model
	if req.Model != "" {
		model = req.Model
	}

	msgs := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Messages)+1)
	if req.SystemPrompt != "" {
		msgs = append(msgs, systemMessage(req.SystemPrompt))
	}
	for _, m := range req.Messages {
		switch m.Role {
		case llm.RoleSystem:
			msgs = append(msgs, systemMessage(m.Content))
		case llm.RoleAssistant:
			msgs = append(msgs, openai.ChatCompletionMessageParamUnion{
				OfAssistant: &openai.ChatCompletionAssistantMessageParam{
					Content: openai.ChatCompletionAssistantMessageParamContentUnion{
						OfString: openai.Opt(m.Content),
					},
				},
			})
		default:
			msgs = append(msgs, openai.ChatCompletionMessageParamUnion{
				OfUser: &openai.ChatCompletionUserMessageParam{
					Content: openai.ChatCompletionUserMessageParamContentUnion{
						OfString: openai.Opt(m.Content),
					},
				},
			})
		}
	}

	params := openai.ChatCompletionNewParams{
		Model:    shared.ChatModel(model),
		Messages: msgs,
	}

	temp := p.cfg.Temperature
	if req.Temperature != 0 {
		temp = req.Temperature
	}
	if temp != 0 {
		params.Temperature = openai.Opt(temp)
	}
	maxTokens := p.cfg.MaxTokens
	if req.MaxTokens != 0 {
		maxTokens = req.MaxTokens
	}
	if maxTokens != 0 {
		params.MaxTokens = openai.Opt(int64(maxTokens))
	}
	return params
}

func systemMessage(content string) openai.ChatCompletionMessageParamUnion {
	return openai.ChatCompletionMessageParamUnion{
		OfSystem: &openai.ChatCompletionSystemMessageParam{
			Content: openai.ChatCompletionSystemMessageParamContentUnion{
				OfString: openai.Opt(content),
			},
		},
	}
}
