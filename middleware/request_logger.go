package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Sebas91ts/inmueble-panel-api/pkg/logger"
)

// RequestLogger logs one line per completed request. Identity fields
// (request_id, agencia, username) come from the request context via the
// shared logger, so entries line up with the service-layer logs of the
// same request. Health probes are not logged, they drown everything else.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/health" {
			c.Next()
			return
		}

		inicio := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		status := c.Writer.Status()
		attrs := []any{
			"status", status,
			"method", c.Request.Method,
			"path", path,
			"latency_ms", time.Since(inicio).Milliseconds(),
			"bytes", c.Writer.Size(),
			"client_ip", c.ClientIP(),
		}
		if query != "" {
			attrs = append(attrs, "query", query)
		}

		ctx := c.Request.Context()
		switch {
		case status >= 500:
			logger.Error(ctx, "petición completada", attrs...)
		case status >= 400:
			logger.Warn(ctx, "petición completada", attrs...)
		default:
			logger.Info(ctx, "petición completada", attrs...)
		}
	}
}
