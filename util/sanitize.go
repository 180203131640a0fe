package util

import (
	"strings"
	"unicode"
)

// SanitizeString trims whitespace and removes control characters from s.
func SanitizeString(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}

// SanitizeEnvValue cleans an environment variable value by removing surrounding
// quotes and trimming whitespace.
func SanitizeEnvValue(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			s = s[1 : len(s)-1]
		}
	}
	return strings.TrimSpace(s)
}

// NormalizeLanguageCode lowercases a language code and drops everything that
// is not an ASCII letter or '-'. Returns fallback when nothing is left.
func NormalizeLanguageCode(code, fallback string) string {
	code = strings.ToLower(SanitizeString(code))
	cleaned := strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || r == '-' {
			return r
		}
		return -1
	}, code)
	cleaned = strings.Trim(cleaned, "-")
	if cleaned == "" || len(cleaned) > 12 {
		return fallback
	}
	return cleaned
}
