package response

import (
	"log/slog"
	"net/http"

	"ctchen222/fatty-hosting/internal/api/apperror"

	"github.com/gin-gonic/gin"
)

// Error writes err as a JSON error body. Validation errors carry their
// field list; 5xx bodies only include the underlying error when
// exposeDetail is set (development mode).
func Error(c *gin.Context, err error, exposeDetail bool) {
	appErr := apperror.From(err, "Something went wrong!")
	status := appErr.HTTPStatus()

	body := gin.H{
		"success": false,
		"message": appErr.Message,
	}
	if len(appErr.Fields) > 0 {
		body["errors"] = appErr.Fields
	}

	if status >= http.StatusInternalServerError {
		slog.ErrorContext(c.Request.Context(), "Request failed",
			"kind", appErr.Kind,
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", status,
			"error", appErr.Error(),
		)
		if exposeDetail && appErr.Cause != nil {
			body["error"] = appErr.Cause.Error()
		}
	}

	c.AbortWithStatusJSON(status, body)
}
