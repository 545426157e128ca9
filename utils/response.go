// utils/response.go
package utils

import (
	"errors"
	"log/slog"

	"github.com/gin-gonic/gin"
)

// RespondWithError aborts the request with a JSON error body.
func RespondWithError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}

// RespondWithAppError maps err to its status and kind. Internal causes are
// logged and replaced by a generic message.
func RespondWithAppError(c *gin.Context, err error) {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		appErr = Internal("Server error", err)
	}

	message := appErr.Message
	if appErr.Kind == KindInternal {
		slog.ErrorContext(c.Request.Context(), "request failed",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"error", err,
		)
		if message == "" {
			message = "Server error"
		}
	}

	c.AbortWithStatusJSON(appErr.Kind.HTTPStatus(), gin.H{
		"error": message,
		"kind":  appErr.Kind,
	})
}
