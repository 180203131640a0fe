package ingest

import (
	"path/filepath"
	"slices"
	"strings"
	"time"
)

// VideoExtensions are the file extensions picked up from the input dir.
var VideoExtensions = []string{".mp4", ".mov", ".avi", ".mkv", ".webm", ".m4v", ".flv"}

// SidecarSuffix is appended to the source stem to name a result file.
const SidecarSuffix = ".result.yaml"

// Config configures watch-folder ingestion.
type Config struct {
	// InputDir is watched for new video files.
	InputDir string `yaml:"input_dir" mapstructure:"input_dir"`
	// OutputDir receives one result sidecar per processed file.
	// Defaults to <input_dir>/results.
	OutputDir string `yaml:"output_dir" mapstructure:"output_dir"`
	// MaxConcurrent bounds the number of pipelines run at once.
	MaxConcurrent int `yaml:"max_concurrent" mapstructure:"max_concurrent" validate:"gte=0"`
	// SettleDelay is how long a file must stay unchanged before it is picked up.
	SettleDelay time.Duration `yaml:"settle_delay" mapstructure:"settle_delay"`
	// TargetLang is the translation target for every run.
	TargetLang string `yaml:"target_lang" mapstructure:"target_lang"`
	// ProcessExisting queues files already present when the watcher starts.
	ProcessExisting bool `yaml:"process_existing" mapstructure:"process_existing"`
}

// ApplyDefaults fills empty fields.
func (c *Config) ApplyDefaults() {
	if c.OutputDir == "" && c.InputDir != "" {
		c.OutputDir = filepath.Join(c.InputDir, "results")
	}
	if c.MaxConcurrent == 0 {
		c.MaxConcurrent = 2
	}
	if c.SettleDelay == 0 {
		c.SettleDelay = 2 * time.Second
	}
}

// IsVideo reports whether path has one of the VideoExtensions.
func IsVideo(path string) bool {
	return slices.Contains(VideoExtensions, strings.ToLower(filepath.Ext(path)))
}
