package server

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vslbak/gymflow-web/internal/logger"
)

var quietPaths = map[string]bool{
	"/health":  true,
	"/metrics": true,
}

// RequestLoggingMiddleware logs one line per request, at a level chosen by
// the response status. Probe and scrape endpoints are only logged on failure.
func RequestLoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		status := c.Writer.Status()
		if quietPaths[path] && status < 400 {
			return
		}
		if raw != "" {
			path = path + "?" + raw
		}

		fields := []interface{}{
			"method", c.Request.Method,
			"path", path,
			"status", status,
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		}
		if userID, ok := c.Get("user_id"); ok {
			fields = append(fields, "user_id", userID)
		}
		if len(c.Errors) > 0 {
			fields = append(fields, "errors", c.Errors.String())
		}

		switch {
		case status >= 500:
			logger.Error("HTTP request", fields...)
		case status >= 400:
			logger.Warn("HTTP request", fields...)
		default:
			logger.Info("HTTP request", fields...)
		}
	}
}
