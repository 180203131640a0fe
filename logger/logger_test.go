package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestInitInstallsGlobal(t *testing.T) {
	prev := zerolog.GlobalLevel()
	t.Cleanup(func() {
		zerolog.SetGlobalLevel(prev)
		global.Store(nil)
	})

	l := Init(&Config{Level: "warn", Format: "json"})
	if zerolog.GlobalLevel() != zerolog.WarnLevel {
		t.Errorf("expected global level warn, got %s", zerolog.GlobalLevel())
	}
	if GetGlobalLogger() != l {
		t.Error("expected Init to install the process logger")
	}
	if Get("pipeline") == nil {
		t.Fatal("expected a component logger")
	}
}

func TestNewInvalidLevel(t *testing.T) {
	l := New(&Config{Level: "invalid-level", Format: "json", Output: "stdout"}, "test")
	if l == nil {
		t.Fatal("expected logger to be created even with invalid level")
	}
}

func TestJSONOutputCarriesFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&Config{Level: "debug", Format: "json"}, "snapstudy", &buf)

	l.WithComponent("stage").Info("stage completed", Fields(FieldStage, "transcription", FieldOutcome, "succeeded"))

	var line map[string]interface{}
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line); err != nil {
		t.Fatalf("expected a JSON log line, got %q: %v", buf.String(), err)
	}
	if line[FieldStage] != "transcription" {
		t.Errorf("expected stage field, got %v", line[FieldStage])
	}
	if line[FieldOutcome] != "succeeded" {
		t.Errorf("expected outcome field, got %v", line[FieldOutcome])
	}
	if line[FieldComponent] != "stage" {
		t.Errorf("expected component field, got %v", line[FieldComponent])
	}
	if line["service"] != "snapstudy" {
		t.Errorf("expected service field, got %v", line["service"])
	}
}

func TestWithContextAddsRequestID(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&Config{Level: "info", Format: "json"}, "test", &buf)

	ctx := ContextWithRequestID(context.Background(), "req-42")
	l.WithContext(ctx).Info("hello")

	if !strings.Contains(buf.String(), `"request_id":"req-42"`) {
		t.Errorf("expected request_id in output, got %q", buf.String())
	}
}

func TestWithContextWithoutRequestID(t *testing.T) {
	l := Nop()
	if got := l.WithContext(context.Background()); got != l {
		t.Error("expected the same logger when ctx carries no request ID")
	}
}

func TestWithError(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&Config{Level: "info", Format: "json"}, "test", &buf)
	l.WithError(fmt.Errorf("boom")).Warn("failed")
	if !strings.Contains(buf.String(), `"error":"boom"`) {
		t.Errorf("expected error field, got %q", buf.String())
	}
}

func TestNopDiscards(t *testing.T) {
	l := Nop()
	l.Info("nothing", Fields("a", 1))
}

func TestGetGlobalLoggerDefault(t *testing.T) {
	global.Store(nil)
	if GetGlobalLogger() == nil {
		t.Fatal("expected default global logger to be created")
	}
	if GetGlobalLogger() != GetGlobalLogger() {
		t.Error("expected the default logger to be created once")
	}
}

func TestDisabledLevelDropsLine(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&Config{Format: "json"}, "test", &buf)
	l.logger = l.logger.Level(zerolog.WarnLevel)
	l.Info("workspace acquired", Fields(FieldPath, "/tmp/x"))
	if buf.Len() != 0 {
		t.Errorf("expected no output below warn, got %q", buf.String())
	}
	l.Warn("workspace file not removed", Fields(FieldPath, "/tmp/x"))
	if !strings.Contains(buf.String(), `"path":"/tmp/x"`) {
		t.Errorf("expected warn line with path, got %q", buf.String())
	}
}

func TestConsoleServicePrefix(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&Config{Format: FormatConsole, NoColor: true}, "snapstudy", &buf)
	l.Info("ready")
	if !strings.Contains(buf.String(), "[SNA][INF]") {
		t.Errorf("expected service and level tags, got %q", buf.String())
	}
}

func TestConfigApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()
	if cfg.Level != "info" {
		t.Errorf("expected level 'info', got %q", cfg.Level)
	}
	if cfg.Format != "console" {
		t.Errorf("expected format 'console', got %q", cfg.Format)
	}
	if cfg.Output != "stdout" {
		t.Errorf("expected output 'stdout', got %q", cfg.Output)
	}
	if !cfg.Timestamp {
		t.Error("expected Timestamp to be true")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"valid", Config{Level: "info", Format: "json"}, false},
		{"valid console", Config{Level: "debug", Format: "console"}, false},
		{"invalid level", Config{Level: "bad", Format: "json"}, true},
		{"invalid format", Config{Level: "info", Format: "xml"}, true},
		{"fatal is not a level", Config{Level: "fatal", Format: "json"}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestFields(t *testing.T) {
	tests := []struct {
		name     string
		input    []interface{}
		expected map[string]interface{}
	}{
		{"key-value pairs", []interface{}{"stage", "quiz_generation", "chars", 42}, map[string]interface{}{"stage": "quiz_generation", "chars": 42}},
		{"odd number of args", []interface{}{"stage", "clip_generation", "trailing"}, map[string]interface{}{"stage": "clip_generation"}},
		{"non-string key skipped", []interface{}{123, "value", "key", "val"}, map[string]interface{}{"key": "val"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result := Fields(tc.input...)
			if len(result) != len(tc.expected) {
				t.Errorf("expected %d fields, got %d", len(tc.expected), len(result))
			}
			for k, v := range tc.expected {
				if result[k] != v {
					t.Errorf("Fields[%q] = %v, expected %v", k, result[k], v)
				}
			}
		})
	}
}

func TestErrorAndDurationFields(t *testing.T) {
	fields := ErrorFields("extract-audio", fmt.Errorf("no audio track"))
	if fields[FieldError] != "no audio track" {
		t.Errorf("expected error field, got %v", fields[FieldError])
	}
	fields = DurationFields("extract-audio", 150*time.Millisecond)
	if fields[FieldDuration] != int64(150) {
		t.Errorf("expected duration 150, got %v", fields[FieldDuration])
	}
}
