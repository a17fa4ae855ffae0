package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/arqgene/dockprep/internal/infrastructure/monitoring/prometheus"
)

// Metrics records per-request counters and latency histograms.  The route
// template (not the raw path) is used as the path label so that /jobs/:id
// stays one series.
func Metrics(m *prometheus.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		m.HTTPRequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		m.HTTPRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}
