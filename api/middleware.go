package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/skillsenselab/healthcore/errors"
	"github.com/skillsenselab/healthcore/logger"
)

const requestIDHeader = "X-Request-Id"

// RequestID ensures every request carries a request id, generating one when
// the client did not send one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Writer.Header().Set(requestIDHeader, id)
		c.Next()
	}
}

// Recovery converts handler panics into a structured 500 response.
func Recovery(log *logger.Logger) gin.HandlerFunc {
	l := log.WithComponent("api")
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				l.Error("handler panic", logger.Fields(
					"path", c.Request.URL.Path,
					"panic", r,
				))
				c.AbortWithStatusJSON(http.StatusInternalServerError,
					errors.Internal(nil).ToResponse())
			}
		}()
		c.Next()
	}
}

// RequestLogger logs every request with method, path, status, and duration.
// The health and metrics scrape paths are skipped.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	l := log.WithComponent("api")
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if path == "/healthz" || path == "/metrics" {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		fields := logger.Fields(
			"method", c.Request.Method,
			"path", path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
		if id, ok := c.Get("request_id"); ok {
			fields["request_id"] = id
		}

		switch {
		case c.Writer.Status() >= 500:
			l.Error("request", fields)
		case c.Writer.Status() >= 400:
			l.Warn("request", fields)
		default:
			l.Info("request", fields)
		}
	}
}
