package endpoint

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/snapstudy/component"
	"github.com/kbukum/snapstudy/version"
)

// Components whose health backs the availability flags.
const (
	ComponentMedia         = "media"
	ComponentTranscription = "transcription"
)

// HealthChecker returns health status for registered components.
type HealthChecker func(ctx context.Context) []component.Health

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status           component.HealthStatus `json:"status"`
	Service          string                 `json:"service"`
	Version          string                 `json:"version"`
	Timestamp        string                 `json:"timestamp"`
	FFmpegAvailable  bool                   `json:"ffmpeg_available"`
	WhisperAvailable bool                   `json:"whisper_available"`
	Components       []component.Health     `json:"components"`
}

// Health returns a handler that reports service health, the audio
// toolchain and transcription availability flags, and every component.
// It answers 503 only when a component is unhealthy.
func Health(serviceName string, checker HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		resp := HealthResponse{
			Status:     component.StatusHealthy,
			Service:    serviceName,
			Version:    version.Version,
			Timestamp:  time.Now().UTC().Format(time.RFC3339),
			Components: []component.Health{},
		}
		if checker != nil {
			resp.Components = checker(c.Request.Context())
			resp.Status = component.Overall(resp.Components)
		}
		for _, h := range resp.Components {
			switch h.Name {
			case ComponentMedia:
				resp.FFmpegAvailable = h.Status == component.StatusHealthy
			case ComponentTranscription:
				resp.WhisperAvailable = h.Status == component.StatusHealthy
			}
		}

		httpStatus := http.StatusOK
		if resp.Status == component.StatusUnhealthy {
			httpStatus = http.StatusServiceUnavailable
		}
		c.JSON(httpStatus, resp)
	}
}
