package llm

import "time"

// DefaultTimeout bounds a single completion call.
const DefaultTimeout = 120 * time.Second

// Config configures one LLM backend. Fields a backend does not use are ignored.
type Config struct {
	// APIKey authenticates against hosted backends (Gemini, OpenAI).
	APIKey string `yaml:"api_key" mapstructure:"api_key"`
	// BaseURL overrides the backend's API base URL.
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	// Model is the default model.
	Model string `yaml:"model" mapstructure:"model"`
	// Temperature is the default sampling temperature.
	Temperature float64 `yaml:"temperature" mapstructure:"temperature" validate:"gte=0,lte=2"`
	// MaxTokens is the default response limit. 0 means backend default.
	MaxTokens int `yaml:"max_tokens" mapstructure:"max_tokens" validate:"gte=0"`
	// Timeout bounds each request. Defaults to 120s.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// ApplyDefaults sets default values for unset fields.
func (c *Config) ApplyDefaults() {
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
}

// WithModel returns a copy of c using model.
func (c Config) WithModel(model string) Config {
	c.Model = model
	return c
}
