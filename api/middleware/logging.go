package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vocalmail/voicestack/internal/logger"
)

// RequestLoggingMiddleware logs one line per request with method, path,
// status and latency.
func RequestLoggingMiddleware(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		if status >= 500 {
			log.Errorf("%s %s -> %d (%s)", c.Request.Method, path, status, latency)
		} else {
			log.Infof("%s %s -> %d (%s)", c.Request.Method, path, status, latency)
		}
	}
}
