// Package middleware holds the gin middleware shared by all HTTP routes.
package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/arqgene/dockprep/internal/infrastructure/monitoring/logging"
)

// skipPaths are high-frequency probe paths excluded from request logs.
var skipPaths = map[string]bool{
	"/healthz": true,
	"/readyz":  true,
	"/metrics": true,
}

// RequestLogger logs one line per request: method, path, status, duration.
// 5xx responses log at Error, 4xx at Warn, the rest at Info.
func RequestLogger(log logging.Logger) gin.HandlerFunc {
	log = log.Named("http")
	return func(c *gin.Context) {
		if skipPaths[c.Request.URL.Path] {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		fields := []logging.Field{
			logging.String("method", c.Request.Method),
			logging.String("path", c.Request.URL.Path),
			logging.Int("status", status),
			logging.Duration("duration", time.Since(start)),
			logging.String("client_ip", c.ClientIP()),
		}
		switch {
		case status >= 500:
			log.Error("request failed", fields...)
		case status >= 400:
			log.Warn("request rejected", fields...)
		default:
			log.Info("request", fields...)
		}
	}
}
