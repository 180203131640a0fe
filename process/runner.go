package process

import (
	"context"
	"time"

	"github.com/kbukum/snapstudy/errors"
	"github.com/kbukum/snapstudy/logger"
	"github.com/kbukum/snapstudy/provider"
)

// Runner executes commands. Exec is the real implementation; tests
// substitute a fake.
type Runner interface {
	Run(ctx context.Context, cmd Command) (*Result, error)
	LookPath(binary string) (string, error)
}

// Config configures an Exec runner.
type Config struct {
	// GracePeriod is the default grace period for SIGTERM to SIGKILL.
	GracePeriod time.Duration `yaml:"grace_period,omitempty" mapstructure:"grace_period"`
	// Timeout bounds each command. Zero means the caller's context decides.
	Timeout time.Duration `yaml:"timeout,omitempty" mapstructure:"timeout"`
}

// Exec runs commands on the host.
type Exec struct {
	config Config
	log    *logger.Logger
}

var _ Runner = (*Exec)(nil)

// NewExec creates a host runner.
func NewExec(cfg Config, log *logger.Logger) *Exec {
	if log == nil {
		log = logger.Get("process")
	}
	return &Exec{config: cfg, log: log}
}

// Run executes cmd, applying runner-level defaults.
func (e *Exec) Run(ctx context.Context, cmd Command) (*Result, error) {
	if cmd.GracePeriod == 0 && e.config.GracePeriod > 0 {
		cmd.GracePeriod = e.config.GracePeriod
	}
	if e.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.config.Timeout)
		defer cancel()
	}

	result, err := Run(ctx, cmd)
	fields := logger.Fields(logger.FieldOperation, cmd.Binary)
	if result != nil {
		fields = logger.DurationFields(cmd.Binary, result.Duration)
		fields["exit_code"] = result.ExitCode
	}
	fields["command"] = cmd.String()
	if err != nil {
		fields[logger.FieldError] = err.Error()
		e.log.WithContext(ctx).Debug("command failed", fields)
	} else {
		e.log.WithContext(ctx).Debug("command finished", fields)
	}
	return result, err
}

// LookPath resolves binary on PATH.
func (e *Exec) LookPath(binary string) (string, error) {
	return LookPath(binary)
}

// Subprocess is a provider.RequestResponse backed by one command per call.
// build turns the input into a command and parse reads the output.
type Subprocess[I, O any] struct {
	name   string
	runner Runner
	binary string
	build  func(I) (Command, error)
	parse  func(I, *Result) (O, error)
}

var _ provider.RequestResponse[string, string] = (*Subprocess[string, string])(nil)

// NewSubprocess creates a subprocess-backed provider. binary is checked by
// IsAvailable.
func NewSubprocess[I, O any](
	name string,
	runner Runner,
	binary string,
	build func(I) (Command, error),
	parse func(I, *Result) (O, error),
) *Subprocess[I, O] {
	return &Subprocess[I, O]{name: name, runner: runner, binary: binary, build: build, parse: parse}
}

func (p *Subprocess[I, O]) Name() string { return p.name }

// IsAvailable reports whether the binary is on PATH.
func (p *Subprocess[I, O]) IsAvailable(_ context.Context) bool {
	_, err := p.runner.LookPath(p.binary)
	return err == nil
}

func (p *Subprocess[I, O]) Execute(ctx context.Context, input I) (O, error) {
	var zero O
	cmd, err := p.build(input)
	if err != nil {
		return zero, err
	}
	result, err := p.runner.Run(ctx, cmd)
	if err != nil {
		if ctx.Err() != nil {
			return zero, ctx.Err()
		}
		return zero, errors.ExternalServiceError(p.name, err).WithDetail("stderr", result.StderrTail(512))
	}
	return p.parse(input, result)
}
