package validation

import (
	"strings"
	"testing"

	"github.com/kbukum/snapstudy/errors"
)

func TestValidatorRequired(t *testing.T) {
	v := New()
	v.Required("file", "lecture.mp4")
	if v.HasErrors() {
		t.Error("expected no errors for valid input")
	}

	v2 := New()
	v2.Required("file", "   ")
	if !v2.HasErrors() {
		t.Error("expected error for whitespace-only required field")
	}
}

func TestValidatorValidate(t *testing.T) {
	v := New()
	v.Required("file", "").MaxLength("target_lang", "abcdefghijklmno", 12)
	appErr := v.Validate()
	if appErr == nil {
		t.Fatal("expected error")
	}
	if appErr.Code != errors.ErrCodeInvalidInput {
		t.Errorf("expected INVALID_INPUT, got %s", appErr.Code)
	}
	if !strings.Contains(appErr.Message, "file: is required") {
		t.Errorf("expected file message, got %q", appErr.Message)
	}
	if len(v.Errors()) != 2 {
		t.Errorf("expected 2 field errors, got %d", len(v.Errors()))
	}
}

func TestValidatorValidateClean(t *testing.T) {
	if err := New().Check(true, "x", "never").Validate(); err != nil {
		t.Errorf("expected nil, got %v", err)
	}
}

type serverSection struct {
	Port int `mapstructure:"port" validate:"gte=0,lte=65535"`
}

type sampleConfig struct {
	Name   string        `mapstructure:"name" validate:"required"`
	Server serverSection `mapstructure:"server"`
	Mode   string        `mapstructure:"mode" validate:"oneof=serve watch"`
}

func TestValidateStruct(t *testing.T) {
	tests := []struct {
		name      string
		cfg       sampleConfig
		wantErr   bool
		wantField string
	}{
		{"valid", sampleConfig{Name: "snapstudy", Server: serverSection{Port: 8080}, Mode: "serve"}, false, ""},
		{"missing name", sampleConfig{Server: serverSection{Port: 8080}, Mode: "serve"}, true, "name: is required"},
		{"port out of range", sampleConfig{Name: "s", Server: serverSection{Port: 70000}, Mode: "serve"}, true, "server.port"},
		{"bad mode", sampleConfig{Name: "s", Mode: "batch"}, true, "mode: must be one of"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := Validate(tc.cfg)
			if !tc.wantErr {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tc.wantField) {
				t.Errorf("expected error containing %q, got %q", tc.wantField, err.Error())
			}
		})
	}
}
