package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/Sebas91ts/inmueble-panel-api/pkg/logger"
)

// Recovery converts a panic into a 500 response the panel can render.
// The log entry goes through the context-aware logger, so request_id,
// agencia and username identify the session that triggered the crash.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.Error(c.Request.Context(), "pánico recuperado",
					"error", err,
					"method", c.Request.Method,
					"path", c.Request.URL.Path,
					"stack", string(debug.Stack()),
				)

				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error":      "Error interno del panel",
					"request_id": GetRequestID(c),
				})
			}
		}()

		c.Next()
	}
}
