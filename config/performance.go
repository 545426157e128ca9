package config

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
)

// PerformanceLogger logs every request with its latency and warns about
// requests slower than slow.
func PerformanceLogger(logger *slog.Logger, slow time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		latency := time.Since(start)
		attrs := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", latency,
		}

		if latency > slow {
			logger.Warn("slow request", attrs...)
			return
		}
		logger.Info("request", attrs...)
	}
}
