package app

import (
	"context"
	"fmt"

	"github.com/kbukum/snapstudy/bootstrap"
	"github.com/kbukum/snapstudy/component"
	"github.com/kbukum/snapstudy/ingest"
	"github.com/kbukum/snapstudy/logger"
	"github.com/kbukum/snapstudy/media"
	"github.com/kbukum/snapstudy/observability"
	"github.com/kbukum/snapstudy/pipeline"
	"github.com/kbukum/snapstudy/process"
	"github.com/kbukum/snapstudy/server"
	"github.com/kbukum/snapstudy/workspace"
)

// Service is the wired snapstudy process: toolchain, workspaces,
// capability slots and the coordinator that runs them.
type Service struct {
	Config      *Config
	Log         *logger.Logger
	Metrics     *observability.Metrics
	Runner      process.Runner
	Media       *media.Toolchain
	Workspaces  *workspace.Manager
	Caps        *Capabilities
	Coordinator *pipeline.Coordinator

	checks []*component.Check
}

// Option configures New.
type Option func(*Service)

// WithRunner replaces the host process runner used by ffmpeg and whisper.cpp.
func WithRunner(r process.Runner) Option {
	return func(s *Service) { s.Runner = r }
}

// WithMetrics sets the metric instruments. By default they are created on
// the global meter provider.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Service) { s.Metrics = m }
}

// New wires a Service from cfg. cfg must have defaults applied. No
// capability is resolved and no external process is started.
func New(cfg *Config, log *logger.Logger, opts ...Option) (*Service, error) {
	if log == nil {
		log = logger.Get("app")
	}
	s := &Service{Config: cfg, Log: log}
	for _, opt := range opts {
		opt(s)
	}
	if s.Metrics == nil {
		m, err := observability.NewMetrics(observability.Meter(cfg.Name))
		if err != nil {
			return nil, fmt.Errorf("metrics: %w", err)
		}
		s.Metrics = m
	}
	if s.Runner == nil {
		s.Runner = process.NewExec(cfg.Process, log.WithComponent("process"))
	}

	s.Media = media.New(cfg.Media, s.Runner)
	ws, err := workspace.NewManager(cfg.Workspace)
	if err != nil {
		return nil, err
	}
	s.Workspaces = ws

	s.Caps = NewCapabilities(cfg, Deps{
		Runner:  s.Runner,
		Log:     log.WithComponent("capability"),
		Metrics: s.Metrics,
	})

	s.Coordinator, err = pipeline.New(cfg.Pipeline, s.Workspaces, s.Media, s.Caps.Resolvers(),
		pipeline.WithLogger(log.WithComponent("pipeline")),
		pipeline.WithMetrics(s.Metrics),
		pipeline.WithServiceName(cfg.Name),
	)
	if err != nil {
		return nil, err
	}

	s.checks = s.newChecks()
	return s, nil
}

// Register adds the health checks to a, records the candidate lists for
// the startup summary and refuses to become ready on a read-only workspace
// root.
func (s *Service) Register(a *bootstrap.App[*Config]) error {
	a.OnReady(s.Workspaces.CheckWritable)
	for _, c := range s.checks {
		if err := a.RegisterComponent(c); err != nil {
			return err
		}
	}
	for _, kind := range kindOrder {
		a.Summary.TrackCapability(string(kind), s.Caps.Candidates()[kind])
	}
	return nil
}

// Health runs the media and capability checks in order.
func (s *Service) Health(ctx context.Context) []component.Health {
	out := make([]component.Health, 0, len(s.checks))
	for _, c := range s.checks {
		out = append(out, c.Health(ctx))
	}
	return out
}

// NewServer builds the HTTP server with the middleware stack, the default
// endpoints and POST /upload. The capability reset endpoint is only
// registered in development.
func (s *Service) NewServer() *server.Server {
	srv := server.New(s.Config.Server, s.Log)
	if s.Metrics != nil {
		srv.RecordRequests(s.Metrics)
	}
	srv.ApplyMiddleware()
	srv.RegisterDefaultEndpoints(s.Config.Name, s.Config.Environment, s.Health)
	srv.RegisterPipeline(s.Coordinator)
	if s.Config.Development() {
		srv.RegisterAdmin(s.Caps.Registry)
	}
	return srv
}

// NewWatcher builds the watch-folder component on the coordinator.
func (s *Service) NewWatcher() *ingest.Watcher {
	return ingest.New(s.Config.Watch, s.Coordinator, ingest.WithLogger(s.Log.WithComponent("watcher")))
}
