package util

import (
	"testing"
)

func TestSanitizeString(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"trims whitespace", "  hello  ", "hello"},
		{"removes control chars", "hello\x00world", "helloworld"},
		{"removes tabs and newlines", "line1\n\tline2", "line1line2"},
		{"empty string", "", ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := SanitizeString(tc.input); got != tc.want {
				t.Errorf("SanitizeString(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestSanitizeEnvValue(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"strips double quotes", `"value"`, "value"},
		{"strips single quotes", `'value'`, "value"},
		{"strips quotes and trims", `  "value"  `, "value"},
		{"mismatched quotes", `"value'`, `"value'`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := SanitizeEnvValue(tc.input); got != tc.want {
				t.Errorf("SanitizeEnvValue(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestNormalizeLanguageCode(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "hi", "hi"},
		{"uppercase", "FR", "fr"},
		{"region", "zh-CN", "zh-cn"},
		{"whitespace", "  es ", "es"},
		{"injection", "en'; rm -rf", "enrm-rf"},
		{"empty falls back", "", "hi"},
		{"only symbols falls back", "../", "hi"},
		{"too long falls back", "abcdefghijklmnop", "hi"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := NormalizeLanguageCode(tc.input, "hi"); got != tc.want {
				t.Errorf("NormalizeLanguageCode(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	if got := TruncateRunes("héllo wörld", 5); got != "héllo" {
		t.Errorf("TruncateRunes = %q", got)
	}
	if got := TruncateRunes("abc", 10); got != "abc" {
		t.Errorf("TruncateRunes = %q", got)
	}
	if got := TruncateWords("one  two three\nfour", 3); got != "one two three" {
		t.Errorf("TruncateWords = %q", got)
	}
	if got := TruncateWords("a \n\t b", 0); got != "a b" {
		t.Errorf("TruncateWords without limit = %q", got)
	}
	if got := Coalesce("", "", "hi"); got != "hi" {
		t.Errorf("Coalesce = %q", got)
	}
}
