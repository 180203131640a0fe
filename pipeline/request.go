package pipeline

import (
	"io"
	"path/filepath"

	"github.com/kbukum/snapstudy/translation"
	"github.com/kbukum/snapstudy/util"
)

// Request describes one pipeline run. It is not modified by the Coordinator.
type Request struct {
	// SourcePath is the media file to process. Ignored when Body is set.
	SourcePath string
	// Body, when set, is streamed into the workspace as the source media.
	Body io.Reader
	// Filename is the client-supplied name derived paths are built from.
	// Defaults to the base name of SourcePath.
	Filename string
	// TargetLang is the translation target. It is normalized to a
	// lowercase code; empty or unusable values mean "hi".
	TargetLang string
}

func (r Request) filename() string {
	return util.Coalesce(r.Filename, filepath.Base(r.SourcePath))
}

func (r Request) targetLang() string {
	return util.NormalizeLanguageCode(r.TargetLang, translation.DefaultTarget)
}
