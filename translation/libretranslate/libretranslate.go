// Package libretranslate implements translation.Translator against a
// LibreTranslate server. A self-hosted instance needs no API key.
package libretranslate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/kbukum/snapstudy/capability"
	"github.com/kbukum/snapstudy/errors"
	"github.com/kbukum/snapstudy/translation"
)

const (
	// ProviderName is the candidate ID.
	ProviderName = "libretranslate"

	// DefaultURL is the local server address.
	DefaultURL = "http://localhost:5050"

	defaultTimeout = 60 * time.Second
)

// Config configures the LibreTranslate client.
type Config struct {
	URL string `yaml:"url" mapstructure:"url"`
	// APIKey is only required by hosted instances.
	APIKey  string        `yaml:"api_key" mapstructure:"api_key"`
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// Provider translates one chunk per POST /translate.
type Provider struct {
	cfg    Config
	client *http.Client
}

var _ translation.Translator = (*Provider)(nil)

// NewProvider creates a client for cfg.URL.
func NewProvider(cfg Config) *Provider {
	if cfg.URL == "" {
		cfg.URL = DefaultURL
	}
	cfg.URL = strings.TrimRight(cfg.URL, "/")
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Provider{cfg: cfg, client: &http.Client{Timeout: cfg.Timeout}}
}

// Name returns the provider name.
func (p *Provider) Name() string { return ProviderName }

// Languages lists the target codes the server supports.
func (p *Provider) Languages(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.cfg.URL+"/languages", http.NoBody)
	if err != nil {
		return nil, err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("libretranslate languages: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("libretranslate languages: status %d", resp.StatusCode)
	}
	var langs []struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&langs); err != nil {
		return nil, fmt.Errorf("decode languages: %w", err)
	}
	codes := make([]string, 0, len(langs))
	for _, l := range langs {
		codes = append(codes, l.Code)
	}
	return codes, nil
}

// IsAvailable reports whether the server answers /languages.
func (p *Provider) IsAvailable(ctx context.Context) bool {
	_, err := p.Languages(ctx)
	return err == nil
}

type translateRequest struct {
	Q      string `json:"q"`
	Source string `json:"source"`
	Target string `json:"target"`
	Format string `json:"format"`
	APIKey string `json:"api_key,omitempty"`
}

type translateResponse struct {
	TranslatedText string `json:"translatedText"`
	Error          string `json:"error"`
}

// Execute translates req.Text into req.Target.
func (p *Provider) Execute(ctx context.Context, req translation.Request) (translation.Response, error) {
	var zero translation.Response
	source := req.Source
	if source == "" {
		source = translation.SourceAuto
	}
	body, err := json.Marshal(translateRequest{
		Q:      req.Text,
		Source: source,
		Target: req.Target,
		Format: "text",
		APIKey: p.cfg.APIKey,
	})
	if err != nil {
		return zero, fmt.Errorf("encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.URL+"/translate", bytes.NewReader(body))
	if err != nil {
		return zero, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return zero, errors.ExternalServiceError(ProviderName, fmt.Errorf("libretranslate request: %w", err))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return zero, fmt.Errorf("read response: %w", err)
	}
	var result translateResponse
	if err := json.Unmarshal(raw, &result); err != nil && resp.StatusCode == http.StatusOK {
		return zero, fmt.Errorf("decode libretranslate response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		msg := result.Error
		if msg == "" {
			msg = strings.TrimSpace(string(raw))
		}
		return zero, errors.ExternalServiceError(ProviderName,
			fmt.Errorf("libretranslate error (status %d): %s", resp.StatusCode, msg))
	}
	if strings.TrimSpace(result.TranslatedText) == "" {
		return zero, errors.ExternalServiceError(ProviderName, fmt.Errorf("libretranslate returned no text"))
	}
	return translation.Response{Text: result.TranslatedText, Model: ProviderName}, nil
}

// Candidate is the libretranslate translation candidate. The smoke test
// fetches /languages; it needs no LLM credentials.
func Candidate(cfg Config) capability.Candidate[translation.Translator] {
	var p *Provider
	return capability.Candidate[translation.Translator]{
		ID: ProviderName,
		Construct: func(_ context.Context) (translation.Translator, error) {
			p = NewProvider(cfg)
			return p, nil
		},
		Smoke: func(ctx context.Context, _ translation.Translator) error {
			_, err := p.Languages(ctx)
			return err
		},
	}
}
