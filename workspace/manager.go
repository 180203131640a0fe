package workspace

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/kbukum/snapstudy/logger"
)

// Config configures the workspace manager.
type Config struct {
	// RootDir holds one directory per run. Defaults to <tmp>/snapstudy.
	RootDir string `yaml:"root_dir" mapstructure:"root_dir"`
	// MaxNameLength bounds sanitized file names.
	MaxNameLength int `yaml:"max_name_length" mapstructure:"max_name_length" validate:"gte=0"`
	// KeepClipsDir, when set, receives a copy of every clip before release.
	KeepClipsDir string `yaml:"keep_clips_dir" mapstructure:"keep_clips_dir"`
}

// ApplyDefaults fills empty fields.
func (c *Config) ApplyDefaults() {
	if c.RootDir == "" {
		c.RootDir = filepath.Join(os.TempDir(), "snapstudy")
	}
	if c.MaxNameLength == 0 {
		c.MaxNameLength = DefaultMaxNameLength
	}
}

// Manager creates and tracks workspaces.
type Manager struct {
	cfg    Config
	log    *logger.Logger
	active atomic.Int64
}

// NewManager creates the root directory and returns a Manager.
func NewManager(cfg Config) (*Manager, error) {
	cfg.ApplyDefaults()
	root, err := filepath.Abs(cfg.RootDir)
	if err != nil {
		return nil, fmt.Errorf("workspace: resolve root: %w", err)
	}
	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, fmt.Errorf("workspace: create root: %w", err)
	}
	cfg.RootDir = root
	if cfg.KeepClipsDir != "" {
		if err := os.MkdirAll(cfg.KeepClipsDir, 0o750); err != nil {
			return nil, fmt.Errorf("workspace: create clips dir: %w", err)
		}
	}
	return &Manager{cfg: cfg, log: logger.Get("workspace")}, nil
}

// Root returns the absolute root directory.
func (m *Manager) Root() string { return m.cfg.RootDir }

// CheckWritable creates and removes a scratch file under the root.
func (m *Manager) CheckWritable(_ context.Context) error {
	f, err := os.CreateTemp(m.cfg.RootDir, ".ready-*")
	if err != nil {
		return fmt.Errorf("workspace: root %s is not writable: %w", m.cfg.RootDir, err)
	}
	name := f.Name()
	_ = f.Close()
	return os.Remove(name)
}

// Active returns the number of acquired, unreleased workspaces.
func (m *Manager) Active() int { return int(m.active.Load()) }

// Acquire creates an isolated directory for one run. originalName is the
// client-supplied file name; derived paths are built from its sanitized form.
func (m *Manager) Acquire(ctx context.Context, originalName string) (*Handle, error) {
	id := uuid.NewString()
	dir := filepath.Join(m.cfg.RootDir, id)
	if err := os.Mkdir(dir, 0o750); err != nil {
		return nil, fmt.Errorf("workspace: create dir: %w", err)
	}
	m.active.Add(1)

	h := &Handle{
		id:      id,
		dir:     dir,
		name:    SanitizeFilename(originalName, m.cfg.MaxNameLength),
		keepDir: m.cfg.KeepClipsDir,
		manager: m,
		log:     m.log.WithContext(ctx).WithFields(logger.Fields("workspace", id)),
	}
	h.log.Debug("workspace acquired", logger.Fields(logger.FieldPath, dir))
	return h, nil
}

// Handle is the scoped ownership of one workspace directory.
type Handle struct {
	id      string
	dir     string
	name    string
	keepDir string
	manager *Manager
	log     *logger.Logger

	mu      sync.Mutex
	tracked []string
	once    sync.Once
}

// ID returns the workspace identifier.
func (h *Handle) ID() string { return h.id }

// Dir returns the workspace directory.
func (h *Handle) Dir() string { return h.dir }

// Name returns the sanitized source file name.
func (h *Handle) Name() string { return h.name }

// SourcePath returns the tracked path for the uploaded source.
func (h *Handle) SourcePath() string {
	return h.derive(h.name)
}

// AudioPath returns the tracked path for the extracted audio sidecar. It
// never equals SourcePath, so a .wav upload gets a ".audio.wav" sidecar.
func (h *Handle) AudioPath() string {
	name := Stem(h.name) + ".wav"
	if strings.EqualFold(name, h.name) {
		name = Stem(h.name) + ".audio.wav"
	}
	return h.derive(name)
}

// ClipPath returns the tracked path for the clip spanning start to end seconds.
func (h *Handle) ClipPath(start, end int) string {
	return h.derive(fmt.Sprintf("%s_clip_%d-%d.mp4", Stem(h.name), start, end))
}

// Derive returns a tracked path for an arbitrary file name inside the
// workspace. The name is sanitized first.
func (h *Handle) Derive(name string) string {
	return h.derive(SanitizeFilename(name, h.manager.cfg.MaxNameLength))
}

func (h *Handle) derive(name string) string {
	p := filepath.Join(h.dir, name)
	h.track(p)
	return p
}

func (h *Handle) track(p string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, t := range h.tracked {
		if t == p {
			return
		}
	}
	h.tracked = append(h.tracked, p)
}

// Paths returns the tracked paths in creation order.
func (h *Handle) Paths() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.tracked...)
}

// WriteSource streams r into SourcePath and returns the path.
func (h *Handle) WriteSource(r io.Reader) (string, error) {
	p := h.SourcePath()
	f, err := os.OpenFile(p, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o640)
	if err != nil {
		return "", fmt.Errorf("workspace: create source: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("workspace: write source: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("workspace: close source: %w", err)
	}
	return p, nil
}

// KeepsClips reports whether a keep-clips directory is configured.
func (h *Handle) KeepsClips() bool { return h.keepDir != "" }

// Persist copies path into the keep-clips directory when one is configured
// and returns the persisted path. Without one it returns path unchanged.
func (h *Handle) Persist(path string) (string, error) {
	if h.keepDir == "" {
		return path, nil
	}
	dst := filepath.Join(h.keepDir, h.id+"_"+filepath.Base(path))
	src, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("workspace: open %s: %w", path, err)
	}
	defer src.Close()
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o640)
	if err != nil {
		return "", fmt.Errorf("workspace: create %s: %w", dst, err)
	}
	if _, err := io.Copy(out, src); err != nil {
		_ = out.Close()
		return "", fmt.Errorf("workspace: copy %s: %w", path, err)
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("workspace: close %s: %w", dst, err)
	}
	return dst, nil
}

// Release deletes every tracked path and the directory. It runs once; later
// calls do nothing. Missing files are ignored and other errors are logged.
func (h *Handle) Release() {
	h.once.Do(func() {
		removed := 0
		for _, p := range h.Paths() {
			if err := os.Remove(p); err != nil {
				if !os.IsNotExist(err) {
					h.log.Warn("workspace file not removed", logger.Fields(logger.FieldPath, p, logger.FieldError, err.Error()))
				}
				continue
			}
			removed++
		}
		if err := os.Remove(h.dir); err != nil && !os.IsNotExist(err) {
			h.log.Warn("workspace dir not removed", logger.Fields(logger.FieldPath, h.dir, logger.FieldError, err.Error()))
		}
		h.manager.active.Add(-1)
		h.log.Debug("workspace released", logger.Fields("removed", removed))
	})
}
