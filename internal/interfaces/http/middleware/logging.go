package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/frknaykc/dragonseye/internal/infrastructure/monitoring/logging"
	"github.com/frknaykc/dragonseye/internal/infrastructure/monitoring/prometheus"
)

// RequestIDHeader carries the request ID in and out of the service.
const RequestIDHeader = "X-Request-ID"

// RequestID assigns each request an ID, honoring one supplied by the
// caller, and echoes it on the response.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Writer.Header().Set(RequestIDHeader, id)
		c.Next()
	}
}

// RequestLogging logs each request on completion and records HTTP
// metrics when metrics is non-nil. Server errors log at error level.
func RequestLogging(log logging.Logger, metrics *prometheus.AppMetrics) gin.HandlerFunc {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		if metrics != nil {
			metrics.HTTPActiveRequests.WithLabelValues(c.Request.Method, path).Inc()
		}

		c.Next()

		if metrics != nil {
			metrics.HTTPActiveRequests.WithLabelValues(c.Request.Method, path).Dec()
		}

		duration := time.Since(start)
		status := c.Writer.Status()

		fields := []logging.Field{
			logging.String("method", c.Request.Method),
			logging.String("path", path),
			logging.Int("status", status),
			logging.Duration("duration", duration),
			logging.String("client_ip", c.ClientIP()),
			logging.String("request_id", c.GetString("request_id")),
		}
		if status >= 500 {
			log.Error("request failed", fields...)
		} else {
			log.Info("request", fields...)
		}

		if metrics != nil {
			prometheus.RecordHTTPRequest(metrics, c.Request.Method, path, status,
				duration, int64(c.Writer.Size()))
		}
	}
}
