// Package response writes API results and errors in one shape for every handler.
package response

import (
	"errors"
	"net/http"

	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/skyon-community/skyon-backend/internal/apperr"
	"github.com/skyon-community/skyon-backend/internal/logging"
)

var publicErrors = []error{
	apperr.ErrUnauthenticated,
	apperr.ErrProfileIncomplete,
	apperr.ErrUnauthorized,
	apperr.ErrNotFound,
	apperr.ErrUploadFailed,
	apperr.ErrWriteFailed,
	apperr.ErrStoreUnavailable,
}

// Error aborts the request with the status and body that err maps to. Server-side failures
// are logged and reported to Sentry; their details never reach the client.
func Error(c *gin.Context, err error) {
	status := apperr.Status(err)
	body := gin.H{
		"error": message(err),
		"code":  apperr.Code(err),
	}
	if fields := apperr.FieldErrors(err); fields != nil {
		body["fields"] = fields
	}

	log := logging.FromContext(c.Request.Context())
	if status >= http.StatusInternalServerError || status == http.StatusBadGateway {
		log.Error("request failed", zap.Int("status", status), zap.Error(err))
		if hub := sentrygin.GetHubFromContext(c); hub != nil {
			hub.WithScope(func(scope *sentry.Scope) {
				scope.SetTag("error_code", apperr.Code(err))
				hub.CaptureException(err)
			})
		}
	} else {
		log.Debug("request rejected", zap.Int("status", status), zap.Error(err))
	}

	c.AbortWithStatusJSON(status, body)
}

func message(err error) string {
	if errors.Is(err, apperr.ErrValidation) {
		return apperr.ErrValidation.Error()
	}
	for _, known := range publicErrors {
		if errors.Is(err, known) {
			return known.Error()
		}
	}
	return "internal server error"
}

func OK(c *gin.Context, body any) {
	c.JSON(http.StatusOK, body)
}

func Created(c *gin.Context, body any) {
	c.JSON(http.StatusCreated, body)
}
