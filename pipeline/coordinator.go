package pipeline

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/kbukum/snapstudy/capability"
	"github.com/kbukum/snapstudy/dag"
	"github.com/kbukum/snapstudy/errors"
	"github.com/kbukum/snapstudy/logger"
	"github.com/kbukum/snapstudy/observability"
	"github.com/kbukum/snapstudy/quiz"
	"github.com/kbukum/snapstudy/stage"
	"github.com/kbukum/snapstudy/summarization"
	"github.com/kbukum/snapstudy/transcription"
	"github.com/kbukum/snapstudy/translation"
	"github.com/kbukum/snapstudy/workspace"
)

// DefaultMaxParallel bounds the quiz, translation and clip fan-out.
const DefaultMaxParallel = 3

// Config configures the coordinator.
type Config struct {
	// StageTimeout bounds every stage. Defaults to 10 minutes.
	StageTimeout time.Duration `yaml:"stage_timeout" mapstructure:"stage_timeout"`
	// StageTimeouts overrides StageTimeout per stage name.
	StageTimeouts map[string]time.Duration `yaml:"stage_timeouts" mapstructure:"stage_timeouts"`
	// MaxParallel bounds concurrent stages within one level.
	MaxParallel int `yaml:"max_parallel" mapstructure:"max_parallel" validate:"gte=0"`
	// Language is the transcription language hint. Empty means auto.
	Language string `yaml:"language" mapstructure:"language"`
}

// ApplyDefaults fills empty fields.
func (c *Config) ApplyDefaults() {
	if c.StageTimeout == 0 {
		c.StageTimeout = stage.DefaultTimeout
	}
	if c.MaxParallel == 0 {
		c.MaxParallel = DefaultMaxParallel
	}
}

// Media is the audio/video toolchain used by the extraction and clip stages.
// *media.Toolchain implements it.
type Media interface {
	ExtractAudio(ctx context.Context, src, dst string) error
	Duration(ctx context.Context, path string) (time.Duration, error)
	ClipLength() time.Duration
	Clip(ctx context.Context, src, dst string, start, end int) error
}

// Workspaces hands out per-run workspaces. *workspace.Manager implements it.
type Workspaces interface {
	Acquire(ctx context.Context, originalName string) (*workspace.Handle, error)
}

// Capabilities are the resolvers for the external capabilities.
type Capabilities struct {
	Transcription capability.Resolver[transcription.Provider]
	Summarization capability.Resolver[summarization.Summarizer]
	Quiz          capability.Resolver[quiz.Generator]
	Translation   capability.Resolver[translation.Translator]
}

func (c Capabilities) validate() error {
	if c.Transcription == nil || c.Summarization == nil || c.Quiz == nil || c.Translation == nil {
		return fmt.Errorf("pipeline: every capability resolver is required")
	}
	return nil
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithLogger sets the coordinator logger.
func WithLogger(log *logger.Logger) Option {
	return func(c *Coordinator) { c.log = log }
}

// WithMetrics records pipeline and stage metrics.
func WithMetrics(m *observability.Metrics) Option {
	return func(c *Coordinator) { c.metrics = m }
}

// WithServiceName sets the service name reported on pipeline spans.
func WithServiceName(name string) Option {
	return func(c *Coordinator) { c.service = name }
}

// Coordinator runs pipelines. It holds no per-run state and is safe for
// concurrent use.
type Coordinator struct {
	cfg        Config
	workspaces Workspaces
	media      Media
	caps       Capabilities
	exec       *stage.Executor
	engine     *dag.Engine
	log        *logger.Logger
	metrics    *observability.Metrics
	service    string
}

// New creates a Coordinator.
func New(cfg Config, workspaces Workspaces, media Media, caps Capabilities, opts ...Option) (*Coordinator, error) {
	if workspaces == nil || media == nil {
		return nil, fmt.Errorf("pipeline: workspaces and media are required")
	}
	if err := caps.validate(); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	c := &Coordinator{
		cfg:        cfg,
		workspaces: workspaces,
		media:      media,
		caps:       caps,
		engine:     &dag.Engine{MaxParallel: cfg.MaxParallel},
		service:    "snapstudy",
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		c.log = logger.Get("pipeline")
	}
	execOpts := []stage.Option{
		stage.WithTimeout(cfg.StageTimeout),
		stage.WithLogger(c.log.WithComponent("stage")),
		stage.WithMetrics(c.metrics),
	}
	for name, d := range cfg.StageTimeouts {
		execOpts = append(execOpts, stage.WithStageTimeout(name, d))
	}
	c.exec = stage.NewExecutor(execOpts...)
	return c, nil
}

// Run processes one request. The returned Result always holds one outcome
// per stage. The error is non-nil only when the run could not start (no
// workspace, unreadable upload); the Result then marks every stage Failed.
// The workspace is released before Run returns, on every path.
func (c *Coordinator) Run(ctx context.Context, req Request) (res *Result, err error) {
	requestID := logger.RequestIDFromContext(ctx)
	oc := observability.NewOperationContext(c.service, observability.SpanPipelineRun, requestID, c.metrics)
	ctx, span := oc.StartSpanForOperation(ctx, observability.SpanPipelineRun)
	observability.SetSpanAttribute(ctx, observability.AttrSourceFile, req.filename())
	observability.SetSpanAttribute(ctx, observability.AttrTargetLang, req.targetLang())
	log := c.log.WithContext(ctx)

	res = &Result{RequestID: requestID}
	defer func() {
		if r := recover(); r != nil {
			fault := errors.Internal(fmt.Errorf("pipeline panicked: %v", r))
			log.Error("pipeline fault recovered", logger.Fields(logger.FieldError, fault.Cause.Error()))
			res.Error = &stage.Detail{Kind: errors.KindFatal, Code: fault.Code, Message: fault.Message, Stage: "pipeline", Cause: fault}
			res.fill(fault)
			err = nil
		}
		res.Duration = oc.Duration()
		oc.EndOperation(ctx, span, c.status(res, err), err)
		log.Info("pipeline finished", logger.Fields(
			"statuses", res.Statuses(),
			logger.FieldDuration, res.Duration.Milliseconds(),
		))
	}()

	h, err := c.workspaces.Acquire(ctx, req.filename())
	if err != nil {
		res.fill(err)
		return res, err
	}
	defer h.Release()
	res.WorkspaceID = h.ID()

	src, err := c.source(h, req)
	if err != nil {
		res.fill(err)
		return res, err
	}

	s := &stages{c: c, h: h, req: req}
	seed := stage.Succeeded("init", stage.PathsValue(src))
	out, err := c.engine.Execute(ctx, c.graph(s), seed)
	if err != nil {
		fault := errors.Internal(err)
		res.Error = &stage.Detail{Kind: errors.KindFatal, Code: fault.Code, Message: fault.Message, Stage: "pipeline", Cause: err}
		res.fill(fault)
		return res, nil
	}
	res.Outcomes = out.Outcomes
	res.KeptClips = s.kept
	res.fill(errors.Internal(stderrors.New("stage produced no outcome")))
	return res, nil
}

func (c *Coordinator) source(h *workspace.Handle, req Request) (string, error) {
	if req.Body != nil {
		return h.WriteSource(req.Body)
	}
	if req.SourcePath == "" {
		return "", errors.MissingField("file")
	}
	return req.SourcePath, nil
}

func (c *Coordinator) status(res *Result, err error) string {
	switch {
	case err != nil || res.Error != nil:
		return "error"
	default:
		for _, o := range res.Outcomes {
			if !o.Ok() {
				return "degraded"
			}
		}
		return "ok"
	}
}

// graph declares the stage graph for one run.
func (c *Coordinator) graph(s *stages) *dag.Graph {
	return &dag.Graph{
		Nodes: []dag.Node{
			dag.StageNode(StageAudio, c.exec, s.extractAudio),
			dag.StageNode(StageTranscription, c.exec, s.transcribe),
			dag.StageNode(StageSummarization, c.exec, s.summarize),
			dag.StageNode(StageQuiz, c.exec, s.generateQuiz),
			dag.StageNode(StageTranslation, c.exec, s.translate),
			dag.StageNode(StageClips, c.exec, s.cutClips),
		},
		Edges: []dag.Edge{
			dag.DependsOn(StageTranscription, StageAudio),
			dag.DependsOn(StageSummarization, StageTranscription),
			dag.DependsOn(StageQuiz, StageSummarization),
			dag.DependsOn(StageTranslation, StageSummarization),
			dag.After(StageClips, StageSummarization),
		},
	}
}
