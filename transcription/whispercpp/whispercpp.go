// Package whispercpp implements transcription.Provider with a local
// whisper.cpp binary writing a .txt transcript.
package whispercpp

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kbukum/snapstudy/capability"
	"github.com/kbukum/snapstudy/process"
	"github.com/kbukum/snapstudy/transcription"
)

const (
	// ProviderName is the registered name for the whisper.cpp provider.
	ProviderName = "whisper-cpp"
	// DefaultBinary is looked up on PATH.
	DefaultBinary = "whisper-cli"
)

// Config configures the whisper.cpp provider.
type Config struct {
	Binary    string        `yaml:"binary" mapstructure:"binary"`
	ModelPath string        `yaml:"model_path" mapstructure:"model_path"`
	Language  string        `yaml:"language" mapstructure:"language"`
	Threads   int           `yaml:"threads" mapstructure:"threads" validate:"gte=0"`
	Timeout   time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// Provider runs whisper.cpp once per request.
type Provider struct {
	cfg    Config
	runner process.Runner
	sub    *process.Subprocess[transcription.TranscriptionRequest, transcription.TranscriptionResponse]
}

var _ transcription.Provider = (*Provider)(nil)

// NewProvider creates a provider. It does not check the binary; call Check.
func NewProvider(cfg Config, runner process.Runner) *Provider {
	if cfg.Binary == "" {
		cfg.Binary = DefaultBinary
	}
	p := &Provider{cfg: cfg, runner: runner}
	p.sub = process.NewSubprocess(ProviderName, runner, cfg.Binary, p.buildCommand, p.readTranscript)
	return p
}

// Name returns the provider name.
func (p *Provider) Name() string { return ProviderName }

// IsAvailable reports whether the binary is on PATH.
func (p *Provider) IsAvailable(ctx context.Context) bool { return p.sub.IsAvailable(ctx) }

// Check verifies the binary runs and the model file exists.
func (p *Provider) Check(ctx context.Context) error {
	if p.cfg.ModelPath == "" {
		return fmt.Errorf("whisper.cpp: model_path is not configured")
	}
	if _, err := os.Stat(p.cfg.ModelPath); err != nil {
		return fmt.Errorf("whisper.cpp: model: %w", err)
	}
	if _, err := p.runner.LookPath(p.cfg.Binary); err != nil {
		return err
	}
	if _, err := p.runner.Run(ctx, process.Command{Binary: p.cfg.Binary, Args: []string{"--help"}}); err != nil {
		return fmt.Errorf("whisper.cpp: %s --help: %w", p.cfg.Binary, err)
	}
	return nil
}

// Execute transcribes req.AudioPath.
func (p *Provider) Execute(ctx context.Context, req transcription.TranscriptionRequest) (transcription.TranscriptionResponse, error) {
	if p.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.cfg.Timeout)
		defer cancel()
	}
	return p.sub.Execute(ctx, req)
}

// outputPrefix is where whisper.cpp writes <prefix>.txt.
func outputPrefix(req transcription.TranscriptionRequest) string {
	if req.OutputPrefix != "" {
		return req.OutputPrefix
	}
	return strings.TrimSuffix(req.AudioPath, filepath.Ext(req.AudioPath))
}

func (p *Provider) buildCommand(req transcription.TranscriptionRequest) (process.Command, error) {
	model := p.cfg.ModelPath
	if req.Model != "" {
		model = req.Model
	}
	if model == "" {
		return process.Command{}, fmt.Errorf("whisper.cpp: no model configured")
	}
	args := []string{
		"-m", model,
		"-f", req.AudioPath,
		"-of", outputPrefix(req),
		"-otxt",
		"-np",
	}
	lang := p.cfg.Language
	if req.Language != "" {
		lang = req.Language
	}
	if lang == "" {
		lang = "auto"
	}
	args = append(args, "-l", lang)
	if p.cfg.Threads > 0 {
		args = append(args, "-t", fmt.Sprint(p.cfg.Threads))
	}
	return process.Command{Binary: p.cfg.Binary, Args: args}, nil
}

func (p *Provider) readTranscript(req transcription.TranscriptionRequest, _ *process.Result) (transcription.TranscriptionResponse, error) {
	path := outputPrefix(req) + ".txt"
	data, err := os.ReadFile(path)
	if err != nil {
		return transcription.TranscriptionResponse{}, fmt.Errorf("whisper.cpp completed but transcript is missing: %w", err)
	}
	lang := req.Language
	if lang == "" {
		lang = p.cfg.Language
	}
	return transcription.TranscriptionResponse{
		Text:     strings.TrimSpace(string(data)),
		Language: lang,
	}, nil
}

// Candidate is the whisper-cpp transcription candidate. The smoke test
// requires the model file and a working binary.
func Candidate(cfg Config, runner process.Runner) capability.Candidate[transcription.Provider] {
	var p *Provider
	return capability.Candidate[transcription.Provider]{
		ID: ProviderName,
		Construct: func(_ context.Context) (transcription.Provider, error) {
			p = NewProvider(cfg, runner)
			return p, nil
		},
		Smoke: func(ctx context.Context, _ transcription.Provider) error {
			return p.Check(ctx)
		},
	}
}
