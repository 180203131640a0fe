package endpoint

import (
	"github.com/gin-gonic/gin"

	"github.com/kbukum/snapstudy/capability"
	apperrors "github.com/kbukum/snapstudy/errors"
)

// ResetCapabilities returns a handler that drops cached capability
// bindings. With ?kind=<kind> only that kind is reset. The response lists
// the statuses after the reset.
func ResetCapabilities(reg *capability.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		if kind := c.Query("kind"); kind != "" {
			if !reg.Reset(capability.Kind(kind)) {
				RespondWithError(c, apperrors.NotFound("capability", kind))
				return
			}
		} else {
			reg.ResetAll()
		}
		RespondOK(c, reg.Statuses())
	}
}
