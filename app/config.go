package app

import (
	"fmt"
	"os"
	"time"

	"github.com/kbukum/snapstudy/config"
	"github.com/kbukum/snapstudy/ingest"
	"github.com/kbukum/snapstudy/llm"
	"github.com/kbukum/snapstudy/media"
	"github.com/kbukum/snapstudy/observability"
	"github.com/kbukum/snapstudy/pipeline"
	"github.com/kbukum/snapstudy/process"
	"github.com/kbukum/snapstudy/quiz"
	"github.com/kbukum/snapstudy/server"
	"github.com/kbukum/snapstudy/transcription/whisper"
	"github.com/kbukum/snapstudy/transcription/whispercpp"
	"github.com/kbukum/snapstudy/translation/libretranslate"
	"github.com/kbukum/snapstudy/util"
	"github.com/kbukum/snapstudy/validation"
	"github.com/kbukum/snapstudy/workspace"
)

// Environment variables read in addition to the config file.
const (
	EnvGeminiAPIKey = "GEMINI_API_KEY"
	EnvOpenAIAPIKey = "OPENAI_API_KEY"
	EnvOllamaURL    = "OLLAMA_URL"

	EnvLibreTranslateURL = "LIBRETRANSLATE_URL"
)

// Config is the snapstudy service configuration.
type Config struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`

	Server        server.Config        `yaml:"server" mapstructure:"server"`
	Workspace     workspace.Config     `yaml:"workspace" mapstructure:"workspace"`
	Pipeline      pipeline.Config      `yaml:"pipeline" mapstructure:"pipeline"`
	Media         media.Config         `yaml:"media" mapstructure:"media"`
	Process       process.Config       `yaml:"process" mapstructure:"process"`
	Capabilities  CapabilityConfig     `yaml:"capabilities" mapstructure:"capabilities"`
	Transcription TranscriptionConfig  `yaml:"transcription" mapstructure:"transcription"`
	LLM           LLMConfig            `yaml:"llm" mapstructure:"llm"`
	Translation   TranslationConfig    `yaml:"translation" mapstructure:"translation"`
	Watch         ingest.Config        `yaml:"watch" mapstructure:"watch"`
	Telemetry     observability.Config `yaml:"telemetry" mapstructure:"telemetry"`
}

// CapabilityConfig tunes capability resolution.
type CapabilityConfig struct {
	// AttemptTimeout bounds construction plus smoke test of one candidate.
	AttemptTimeout time.Duration `yaml:"attempt_timeout" mapstructure:"attempt_timeout"`
}

// TranscriptionConfig holds the transcription candidates in priority order.
type TranscriptionConfig struct {
	Whisper    whisper.Config    `yaml:"whisper" mapstructure:"whisper"`
	WhisperCpp whispercpp.Config `yaml:"whisper_cpp" mapstructure:"whisper_cpp"`
}

// TranslationConfig holds the translation backend that needs no LLM.
type TranslationConfig struct {
	LibreTranslate libretranslate.Config `yaml:"libretranslate" mapstructure:"libretranslate"`
}

// LLMConfig holds one section per LLM backend.
type LLMConfig struct {
	Gemini GeminiConfig `yaml:"gemini" mapstructure:"gemini"`
	OpenAI llm.Config   `yaml:"openai" mapstructure:"openai"`
	Ollama llm.Config   `yaml:"ollama" mapstructure:"ollama"`
}

// GeminiConfig is the Gemini backend plus the model variants the quiz
// capability tries in order.
type GeminiConfig struct {
	llm.Config `yaml:",inline" mapstructure:",squash"`
	QuizModels []string `yaml:"quiz_models" mapstructure:"quiz_models"`
}

// ApplyDefaults fills empty fields of every section and reads the API
// keys from the environment when the config leaves them empty.
func (c *Config) ApplyDefaults() {
	c.ServiceConfig.ApplyDefaults()
	c.Server.ApplyDefaults()
	c.Workspace.ApplyDefaults()
	c.Pipeline.ApplyDefaults()
	c.Media.ApplyDefaults()
	c.Watch.ApplyDefaults()
	c.Telemetry.ApplyDefaults()

	if c.Capabilities.AttemptTimeout == 0 {
		c.Capabilities.AttemptTimeout = 30 * time.Second
	}

	envDefault(&c.LLM.Gemini.APIKey, EnvGeminiAPIKey)
	envDefault(&c.LLM.OpenAI.APIKey, EnvOpenAIAPIKey)
	envDefault(&c.LLM.Ollama.BaseURL, EnvOllamaURL)
	envDefault(&c.Translation.LibreTranslate.URL, EnvLibreTranslateURL)
	if len(c.LLM.Gemini.QuizModels) == 0 {
		c.LLM.Gemini.QuizModels = append([]string(nil), quiz.GeminiModels...)
	}
	c.LLM.Gemini.ApplyDefaults()
	c.LLM.OpenAI.ApplyDefaults()
	c.LLM.Ollama.ApplyDefaults()
}

// Validate checks struct tags and the sections with their own rules.
func (c *Config) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	if err := c.Server.Validate(); err != nil {
		return err
	}
	if err := validation.Validate(c); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// Development reports whether the process runs in the development environment.
func (c *Config) Development() bool {
	return c.Environment == "development"
}

func envDefault(dst *string, key string) {
	if *dst == "" {
		*dst = util.SanitizeEnvValue(os.Getenv(key))
	}
}
