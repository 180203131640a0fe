package app

import (
	"context"
	"strings"

	"github.com/kbukum/snapstudy/capability"
	"github.com/kbukum/snapstudy/component"
	"github.com/kbukum/snapstudy/server/endpoint"
)

var kindOrder = []capability.Kind{
	capability.KindTranscription,
	capability.KindSummarization,
	capability.KindQuiz,
	capability.KindTranslation,
}

// newChecks returns the media check followed by one check per capability.
// Only the transcription check resolves its slot; the others report the
// state they are in.
func (s *Service) newChecks() []*component.Check {
	checks := []*component.Check{
		component.NewCheck(endpoint.ComponentMedia, s.mediaHealth).WithDescription(component.Description{
			Name:    "ffmpeg",
			Type:    "toolchain",
			Details: "ffmpeg=" + s.Media.Config().FFmpegPath + " ffprobe=" + s.Media.Config().FFprobePath,
		}),
		component.NewCheck(endpoint.ComponentTranscription, s.transcriptionHealth),
	}
	for _, e := range []capability.Entry{s.Caps.Summarization, s.Caps.Quiz, s.Caps.Translation} {
		checks = append(checks, component.NewCheck(string(e.Kind()), entryHealth(e)))
	}
	for _, c := range checks[1:] {
		c.WithDescription(component.Description{
			Type:    "capability",
			Details: strings.Join(s.Caps.Candidates()[capability.Kind(c.Name())], ", "),
		})
	}
	return checks
}

func (s *Service) mediaHealth(_ context.Context) component.Health {
	if err := s.Media.Available(); err != nil {
		return component.Health{Status: component.StatusDegraded, Message: err.Error()}
	}
	return component.Health{Status: component.StatusHealthy}
}

func (s *Service) transcriptionHealth(ctx context.Context) component.Health {
	b := s.Caps.Transcription.Resolve(ctx)
	if !b.Available {
		return component.Health{
			Status:  component.StatusDegraded,
			Message: b.Err().Error(),
			Details: map[string]any{"attempts": b.Attempts},
		}
	}
	return component.Health{
		Status:  component.StatusHealthy,
		Details: map[string]any{"candidate": b.CandidateID},
	}
}

// entryHealth maps a slot state to a health status without resolving.
func entryHealth(e capability.Entry) func(context.Context) component.Health {
	return func(context.Context) component.Health {
		st := e.Status()
		switch st.State {
		case capability.StateBound:
			return component.Health{
				Status:  component.StatusHealthy,
				Details: map[string]any{"candidate": st.CandidateID},
			}
		case capability.StateUnavailable:
			return component.Health{
				Status:  component.StatusDegraded,
				Message: string(st.Kind) + " capability unavailable",
				Details: map[string]any{"attempts": st.Attempts},
			}
		default:
			return component.Health{Status: component.StatusUnresolved}
		}
	}
}
