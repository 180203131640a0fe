package ingest

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"

	"github.com/kbukum/snapstudy/component"
	"github.com/kbukum/snapstudy/ingest/stream"
	"github.com/kbukum/snapstudy/logger"
	"github.com/kbukum/snapstudy/pipeline"
	"github.com/kbukum/snapstudy/workspace"
)

const componentName = "watcher"

var (
	_ component.Component   = (*Watcher)(nil)
	_ component.Describable = (*Watcher)(nil)
)

// Runner executes one pipeline run. Satisfied by *pipeline.Coordinator.
type Runner interface {
	Run(ctx context.Context, req pipeline.Request) (*pipeline.Result, error)
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithLogger sets the watcher logger.
func WithLogger(l *logger.Logger) Option {
	return func(w *Watcher) { w.log = l }
}

// WithReportHook registers fn to be called after each sidecar is written.
func WithReportHook(fn func(Report)) Option {
	return func(w *Watcher) { w.onReport = fn }
}

// Watcher runs video files dropped into a directory through the pipeline
// and writes a YAML sidecar per file.
type Watcher struct {
	cfg      Config
	runner   Runner
	log      *logger.Logger
	onReport func(Report)

	fsw    *fsnotify.Watcher
	cancel context.CancelFunc
	done   chan struct{}

	mu   sync.Mutex
	seen map[string]time.Time

	running   atomic.Bool
	processed atomic.Int64
	failed    atomic.Int64
}

// New creates a Watcher. Call Start to begin watching.
func New(cfg Config, runner Runner, opts ...Option) *Watcher {
	cfg.ApplyDefaults()
	w := &Watcher{
		cfg:    cfg,
		runner: runner,
		log:    logger.Get(componentName),
		seen:   make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Name returns the component name used for registration.
func (w *Watcher) Name() string { return componentName }

// Start creates the directories, subscribes to the input dir and starts
// the processing loop in the background.
func (w *Watcher) Start(_ context.Context) error {
	if w.cfg.InputDir == "" {
		return fmt.Errorf("watcher: input_dir is required")
	}
	for _, dir := range []string{w.cfg.InputDir, w.cfg.OutputDir} {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("watcher: create %s: %w", dir, err)
		}
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watcher: %w", err)
	}
	if err := fsw.Add(w.cfg.InputDir); err != nil {
		fsw.Close()
		return fmt.Errorf("watcher: watch %s: %w", w.cfg.InputDir, err)
	}
	w.fsw = fsw

	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel
	w.done = make(chan struct{})

	paths := make(chan string, 64)
	go w.forward(ctx, paths)
	go func() {
		defer close(w.done)
		if err := w.run(ctx, paths); err != nil && !stderrors.Is(err, context.Canceled) {
			w.log.Error("watch loop stopped", logger.Fields(logger.FieldError, err.Error()))
		}
	}()

	w.running.Store(true)
	w.log.Info("watching for videos", logger.Fields(
		"input_dir", w.cfg.InputDir,
		"output_dir", w.cfg.OutputDir,
		"max_concurrent", w.cfg.MaxConcurrent,
	))
	return nil
}

// Stop cancels in-flight runs and waits for the loop to exit or ctx to end.
func (w *Watcher) Stop(ctx context.Context) error {
	if !w.running.Swap(false) {
		return nil
	}
	w.cancel()
	closeErr := w.fsw.Close()
	select {
	case <-w.done:
	case <-ctx.Done():
		return ctx.Err()
	}
	w.log.Info("watcher stopped", logger.Fields(
		"processed", w.processed.Load(),
		"failed", w.failed.Load(),
	))
	return closeErr
}

// Health reports healthy while the loop runs.
func (w *Watcher) Health(_ context.Context) component.Health {
	h := component.Health{
		Name: componentName,
		Details: map[string]any{
			"processed": w.processed.Load(),
			"failed":    w.failed.Load(),
		},
	}
	if w.running.Load() {
		h.Status = component.StatusHealthy
	} else {
		h.Status = component.StatusUnhealthy
		h.Message = "watcher not running"
	}
	return h
}

// Describe returns the startup summary entry.
func (w *Watcher) Describe() component.Description {
	return component.Description{
		Name:    "Watch Folder",
		Type:    "watcher",
		Details: fmt.Sprintf("%s → %s max_concurrent=%d", w.cfg.InputDir, w.cfg.OutputDir, w.cfg.MaxConcurrent),
	}
}

// forward turns filesystem events into candidate paths. It closes paths
// when ctx ends or the fsnotify watcher is closed.
func (w *Watcher) forward(ctx context.Context, paths chan<- string) {
	defer close(paths)
	send := func(p string) bool {
		select {
		case paths <- p:
			return true
		case <-ctx.Done():
			return false
		}
	}

	if w.cfg.ProcessExisting {
		entries, err := os.ReadDir(w.cfg.InputDir)
		if err != nil {
			w.log.Warn("cannot list input dir", logger.Fields(logger.FieldError, err.Error()))
		}
		for _, e := range entries {
			if !e.IsDir() && !send(filepath.Join(w.cfg.InputDir, e.Name())) {
				return
			}
		}
	}

	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if ev.Has(fsnotify.Create) || ev.Has(fsnotify.Write) {
				if !send(ev.Name) {
					return
				}
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Warn("fsnotify error", logger.Fields(logger.FieldError, err.Error()))
		case <-ctx.Done():
			return
		}
	}
}

// run is the processing loop: videos settle, are claimed once, run with
// bounded concurrency and end up in a sidecar.
func (w *Watcher) run(ctx context.Context, paths <-chan string) error {
	videos := stream.Filter(stream.FromChannel(paths), IsVideo)
	settled := stream.Settle(videos, w.cfg.SettleDelay, func(p string) string { return p })
	claimed := stream.Filter(settled, w.claim)
	reports := stream.Parallel(claimed, w.cfg.MaxConcurrent, w.process)
	return stream.Drain(reports, w.record).Run(ctx)
}

// claim reports whether path is a non-empty file that has not been
// processed in its current version.
func (w *Watcher) claim(path string) bool {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() || info.Size() == 0 {
		return false
	}
	if side, err := os.Stat(w.sidecarPath(path)); err == nil && side.ModTime().After(info.ModTime()) {
		w.log.Debug("already processed", logger.Fields(logger.FieldPath, path))
		return false
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if mod, ok := w.seen[path]; ok && mod.Equal(info.ModTime()) {
		return false
	}
	w.seen[path] = info.ModTime()
	return true
}

// process runs one file. Run failures are carried in the report so one
// bad file never stops the loop.
func (w *Watcher) process(ctx context.Context, path string) (Report, error) {
	ctx = logger.ContextWithRequestID(ctx, uuid.NewString())
	w.log.WithContext(ctx).Info("processing video", logger.Fields(logger.FieldPath, path))

	started := time.Now()
	rep := Report{Source: path, Sidecar: w.sidecarPath(path), StartedAt: started.UTC()}
	res, err := w.runner.Run(ctx, pipeline.Request{SourcePath: path, TargetLang: w.cfg.TargetLang})
	rep.Duration = time.Since(started).Round(time.Millisecond)
	if res != nil {
		p := res.Payload()
		rep.Result = &p
	}
	if err != nil {
		rep.Error = err.Error()
		rep.err = err
	}
	return rep, nil
}

// record writes the sidecar and updates counters. Runs cut short by
// shutdown are dropped so they are picked up again on the next start.
func (w *Watcher) record(ctx context.Context, rep Report) error {
	log := w.log.WithContext(ctx)
	if stderrors.Is(rep.err, context.Canceled) {
		w.forget(rep.Source)
		log.Debug("run cancelled", logger.Fields(logger.FieldPath, rep.Source))
		return nil
	}
	if err := rep.Write(); err != nil {
		log.Error("cannot write sidecar", logger.Fields(logger.FieldPath, rep.Sidecar, logger.FieldError, err.Error()))
	}
	if rep.Failed() {
		w.failed.Add(1)
		log.Warn("video failed", logger.Fields(logger.FieldPath, rep.Source, logger.FieldError, rep.Error))
	} else {
		w.processed.Add(1)
		log.Info("video processed", logger.Fields(
			logger.FieldPath, rep.Source,
			"sidecar", rep.Sidecar,
			logger.FieldDuration, rep.Duration.Milliseconds(),
		))
	}
	if w.onReport != nil {
		w.onReport(rep)
	}
	return nil
}

func (w *Watcher) forget(path string) {
	w.mu.Lock()
	delete(w.seen, path)
	w.mu.Unlock()
}

func (w *Watcher) sidecarPath(source string) string {
	return filepath.Join(w.cfg.OutputDir, workspace.Stem(filepath.Base(source))+SidecarSuffix)
}
