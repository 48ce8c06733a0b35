package server

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vslbak/gymflow-web/internal/metrics"
)

// MetricsMiddleware records request count and latency by route template so
// that ids in paths do not create new label values.
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metrics.RecordHTTPRequest(
			c.Request.Method,
			path,
			strconv.Itoa(c.Writer.Status()),
			time.Since(start).Seconds(),
		)
	}
}
