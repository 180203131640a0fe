package workspace

import (
	"path/filepath"
	"strings"

	"github.com/kbukum/snapstudy/util"
)

// DefaultMaxNameLength is the longest sanitized file name.
const DefaultMaxNameLength = 100

const fallbackName = "upload"

// SanitizeFilename maps a client-supplied file name to a safe single path
// segment: characters outside [A-Za-z0-9._-] become '_', dot runs that could
// form a ".." segment are broken up, and the result is at most max runes with
// the extension kept when possible.
func SanitizeFilename(name string, max int) string {
	if max <= 0 {
		max = DefaultMaxNameLength
	}

	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	safe := b.String()
	for strings.Contains(safe, "..") {
		safe = strings.ReplaceAll(safe, "..", "_")
	}
	safe = strings.TrimLeft(safe, ".")
	if safe == "" {
		return fallbackName
	}
	return truncateName(safe, max)
}

func truncateName(name string, max int) string {
	if len(name) <= max {
		return name
	}
	ext := filepath.Ext(name)
	if len(ext) == 0 || len(ext) >= max/2 {
		return util.TruncateRunes(name, max)
	}
	return util.TruncateRunes(name, max-len(ext)) + ext
}

// Stem returns name without its extension.
func Stem(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}
