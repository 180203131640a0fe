package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/kbukum/snapstudy/pipeline"
)

// Report is the sidecar written for one processed file.
type Report struct {
	Source    string            `yaml:"source"`
	StartedAt time.Time         `yaml:"started_at"`
	Duration  time.Duration     `yaml:"duration"`
	Result    *pipeline.Payload `yaml:"result,omitempty"`
	Error     string            `yaml:"error,omitempty"`

	// Sidecar is where the report is written.
	Sidecar string `yaml:"-"`
	err     error
}

// Failed reports whether the run itself failed. Stage failures inside a
// completed run are recorded in Result.
func (r Report) Failed() bool { return r.Error != "" }

// Write marshals the report and atomically replaces the sidecar file.
func (r Report) Write() error {
	data, err := yaml.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(r.Sidecar), ".report-*")
	if err != nil {
		return fmt.Errorf("create sidecar: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write sidecar: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close sidecar: %w", err)
	}
	return os.Rename(tmp.Name(), r.Sidecar)
}

// ReadReport loads a sidecar written by Write.
func ReadReport(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var r Report
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parse sidecar %s: %w", filepath.Base(path), err)
	}
	r.Sidecar = path
	return &r, nil
}
