package app

import (
	"context"
	"fmt"

	"github.com/kbukum/snapstudy/capability"
	"github.com/kbukum/snapstudy/llm"
	"github.com/kbukum/snapstudy/llm/gemini"
	"github.com/kbukum/snapstudy/llm/ollama"
	"github.com/kbukum/snapstudy/llm/openai"
	"github.com/kbukum/snapstudy/logger"
	"github.com/kbukum/snapstudy/observability"
	"github.com/kbukum/snapstudy/pipeline"
	"github.com/kbukum/snapstudy/process"
	"github.com/kbukum/snapstudy/provider"
	"github.com/kbukum/snapstudy/quiz"
	"github.com/kbukum/snapstudy/summarization"
	"github.com/kbukum/snapstudy/transcription"
	"github.com/kbukum/snapstudy/transcription/whisper"
	"github.com/kbukum/snapstudy/transcription/whispercpp"
	"github.com/kbukum/snapstudy/translation"
	"github.com/kbukum/snapstudy/translation/libretranslate"
	"github.com/kbukum/snapstudy/util"
)

// Capabilities holds one slot per capability kind and the registry that
// reports and resets them.
type Capabilities struct {
	Registry      *capability.Registry
	Transcription *capability.Slot[transcription.Provider]
	Summarization *capability.Slot[summarization.Summarizer]
	Quiz          *capability.Slot[quiz.Generator]
	Translation   *capability.Slot[translation.Translator]
}

// Resolvers returns the slots in the form the coordinator takes.
func (c *Capabilities) Resolvers() pipeline.Capabilities {
	return pipeline.Capabilities{
		Transcription: c.Transcription,
		Summarization: c.Summarization,
		Quiz:          c.Quiz,
		Translation:   c.Translation,
	}
}

// Candidates lists candidate IDs per kind in priority order.
func (c *Capabilities) Candidates() map[capability.Kind][]string {
	return map[capability.Kind][]string{
		capability.KindTranscription: c.Transcription.Candidates(),
		capability.KindSummarization: c.Summarization.Candidates(),
		capability.KindQuiz:          c.Quiz.Candidates(),
		capability.KindTranslation:   c.Translation.Candidates(),
	}
}

// Backends builds LLM backends by name from the service config.
type Backends struct {
	cfg LLMConfig
	reg *llm.Registry
}

// NewBackends registers the gemini, openai and ollama factories.
func NewBackends(cfg LLMConfig) *Backends {
	reg := llm.NewRegistry()
	reg.RegisterFactory(gemini.ProviderName, gemini.Factory())
	reg.RegisterFactory(openai.ProviderName, openai.Factory())
	reg.RegisterFactory(ollama.ProviderName, ollama.Factory())
	return &Backends{cfg: cfg, reg: reg}
}

// Builder returns a lazy builder for the named backend with its configured
// model. Ollama is only attempted when a base URL is configured.
func (b *Backends) Builder(name string) llm.Builder {
	switch name {
	case gemini.ProviderName:
		return llm.FromRegistry(b.reg, name, b.cfg.Gemini.Config)
	case openai.ProviderName:
		return llm.FromRegistry(b.reg, name, b.cfg.OpenAI)
	case ollama.ProviderName:
		if b.cfg.Ollama.BaseURL == "" {
			return func(context.Context) (llm.Provider, error) {
				return nil, fmt.Errorf("ollama: base_url is not configured (%s)", EnvOllamaURL)
			}
		}
		return llm.FromRegistry(b.reg, name, b.cfg.Ollama)
	default:
		return func(context.Context) (llm.Provider, error) {
			return nil, fmt.Errorf("unknown llm backend %q", name)
		}
	}
}

// Describe reports the configured backends for logging, with API keys
// masked.
func (b *Backends) Describe() map[string]interface{} {
	return map[string]interface{}{
		"gemini_key":   maskKey(b.cfg.Gemini.APIKey),
		"gemini_model": b.cfg.Gemini.Model,
		"openai_key":   maskKey(b.cfg.OpenAI.APIKey),
		"openai_model": b.cfg.OpenAI.Model,
		"ollama_url":   util.Coalesce(b.cfg.Ollama.BaseURL, "unset"),
	}
}

func maskKey(key string) string {
	if key == "" {
		return "unset"
	}
	return util.MaskSecret(key, 4)
}

// GeminiModel builds a Gemini backend for one model variant.
func (b *Backends) GeminiModel(_ context.Context, model string) (llm.Provider, error) {
	return b.reg.Create(gemini.ProviderName, b.cfg.Gemini.WithModel(model))
}

// Deps are the collaborators candidates are built from.
type Deps struct {
	Runner  process.Runner
	Log     *logger.Logger
	Metrics *observability.Metrics
}

// NewCapabilities builds every slot with its candidates in priority order
// and registers the slots. Nothing is resolved here.
func NewCapabilities(cfg *Config, deps Deps) *Capabilities {
	log := deps.Log
	if log == nil {
		log = logger.Get("capability")
	}
	backends := NewBackends(cfg.LLM)
	log.Debug("LLM backends configured", backends.Describe())
	opts := []capability.SlotOption{
		capability.WithAttemptTimeout(cfg.Capabilities.AttemptTimeout),
		capability.WithLogger(log),
		capability.WithMetrics(deps.Metrics),
	}
	providerLog := log.WithComponent("provider")

	c := &Capabilities{
		Registry: capability.NewRegistry(),
		Transcription: capability.NewSlot(capability.KindTranscription,
			observeAll(TranscriptionCandidates(cfg.Transcription, deps.Runner), providerLog, deps.Metrics), opts...),
		Summarization: capability.NewSlot(capability.KindSummarization,
			observeAll(SummarizationCandidates(backends), providerLog, deps.Metrics), opts...),
		Quiz: capability.NewSlot(capability.KindQuiz,
			observeAll(QuizCandidates(backends, cfg.LLM.Gemini.QuizModels), providerLog, deps.Metrics), opts...),
		Translation: capability.NewSlot(capability.KindTranslation,
			observeAll(TranslationCandidates(backends, cfg.Translation), providerLog, deps.Metrics), opts...),
	}
	c.Registry.Register(c.Transcription)
	c.Registry.Register(c.Summarization)
	c.Registry.Register(c.Quiz)
	c.Registry.Register(c.Translation)
	return c
}

// TranscriptionCandidates: whisper-http sidecar, then whisper.cpp.
func TranscriptionCandidates(cfg TranscriptionConfig, runner process.Runner) []capability.Candidate[transcription.Provider] {
	return []capability.Candidate[transcription.Provider]{
		whisper.Candidate(cfg.Whisper),
		whispercpp.Candidate(cfg.WhisperCpp, runner),
	}
}

// SummarizationCandidates: gemini, openai, ollama, then the local
// extractive summarizer, which always binds.
func SummarizationCandidates(b *Backends) []capability.Candidate[summarization.Summarizer] {
	return []capability.Candidate[summarization.Summarizer]{
		summarization.LLMCandidate(gemini.ProviderName, b.Builder(gemini.ProviderName)),
		summarization.LLMCandidate(openai.ProviderName, b.Builder(openai.ProviderName)),
		summarization.LLMCandidate(ollama.ProviderName, b.Builder(ollama.ProviderName)),
		summarization.ExtractiveCandidate(),
	}
}

// QuizCandidates: every Gemini model variant in order, then openai and ollama.
func QuizCandidates(b *Backends, geminiModels []string) []capability.Candidate[quiz.Generator] {
	out := quiz.GeminiCandidates(geminiModels, b.GeminiModel)
	return append(out,
		quiz.LLMCandidate(openai.ProviderName, b.Builder(openai.ProviderName)),
		quiz.LLMCandidate(ollama.ProviderName, b.Builder(ollama.ProviderName)),
	)
}

// TranslationCandidates: gemini, openai, ollama, then a LibreTranslate
// server, which needs no LLM key.
func TranslationCandidates(b *Backends, cfg TranslationConfig) []capability.Candidate[translation.Translator] {
	return []capability.Candidate[translation.Translator]{
		translation.LLMCandidate(gemini.ProviderName, b.Builder(gemini.ProviderName)),
		translation.LLMCandidate(openai.ProviderName, b.Builder(openai.ProviderName)),
		translation.LLMCandidate(ollama.ProviderName, b.Builder(ollama.ProviderName)),
		libretranslate.Candidate(cfg.LibreTranslate),
	}
}

// observeAll wraps the handle each candidate constructs with tracing,
// metrics and logging. Smoke tests see the wrapped handle.
func observeAll[I, O any](cands []capability.Candidate[provider.RequestResponse[I, O]], log *logger.Logger, m *observability.Metrics) []capability.Candidate[provider.RequestResponse[I, O]] {
	out := make([]capability.Candidate[provider.RequestResponse[I, O]], len(cands))
	for i, c := range cands {
		construct := c.Construct
		if construct != nil {
			c.Construct = func(ctx context.Context) (provider.RequestResponse[I, O], error) {
				h, err := construct(ctx)
				if err != nil {
					return nil, err
				}
				return provider.Observe(h, log, m), nil
			}
		}
		out[i] = c
	}
	return out
}
