package endpoint

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/kbukum/snapstudy/errors"
	"github.com/kbukum/snapstudy/logger"
	"github.com/kbukum/snapstudy/pipeline"
	"github.com/kbukum/snapstudy/validation"
)

// Upload form fields.
const (
	FieldFile       = "file"
	FieldTargetLang = "target_lang"
)

// maxLangLength is the longest language tag accepted in the form.
const maxLangLength = 35

// Runner runs one pipeline. *pipeline.Coordinator implements it.
type Runner interface {
	Run(ctx context.Context, req pipeline.Request) (*pipeline.Result, error)
}

// Upload returns the POST /upload handler. The multipart field "file" is
// required; "target_lang" is optional. Any completed run answers 200 with
// the pipeline payload, whatever the stage outcomes.
func Upload(runner Runner) gin.HandlerFunc {
	return func(c *gin.Context) {
		fh, err := c.FormFile(FieldFile)
		if err != nil {
			RespondWithError(c, uploadError(err))
			return
		}
		lang := c.PostForm(FieldTargetLang)
		v := validation.New().
			Required(FieldFile, fh.Filename).
			MaxLength(FieldTargetLang, lang, maxLangLength)
		if verr := v.Validate(); verr != nil {
			RespondWithError(c, verr)
			return
		}

		f, err := fh.Open()
		if err != nil {
			RespondWithError(c, err)
			return
		}
		defer f.Close()

		ctx := c.Request.Context()
		res, err := runner.Run(ctx, pipeline.Request{
			Body:       f,
			Filename:   fh.Filename,
			TargetLang: lang,
		})
		if err != nil {
			logger.Get("server").WithContext(ctx).Error("Pipeline did not start", logger.ErrorFields("upload", err))
			RespondWithError(c, apperrors.Internal(err))
			return
		}
		c.JSON(http.StatusOK, res.Payload())
	}
}

func uploadError(err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return apperrors.InvalidInput(FieldFile, "upload exceeds the size limit").WithCause(err)
	}
	return apperrors.MissingField(FieldFile).WithCause(err)
}
