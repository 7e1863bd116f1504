package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
)

// Recovery middleware catches panics, logs them with stack traces, and returns
// a 500 error with correlation ID (if available) to maintain request
// traceability. The org scope, when present, lands in the log entry so a
// panicking import or export can be traced back to the tenant that hit it.
func Recovery(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				stack := string(debug.Stack())
				correlationID := GetCorrelationID(c)

				panicLogger := logger
				if correlationID != "" {
					panicLogger = panicLogger.With("correlation_id", correlationID)
				}
				if orgID := c.Param("org_id"); orgID != "" {
					panicLogger = panicLogger.With("org_id", orgID)
				}

				panicLogger.Error("Panic recovered",
					"error", r,
					"stack", stack,
					"path", c.Request.URL.Path,
					"method", c.Request.Method,
				)

				response := gin.H{
					"error": gin.H{
						"code":    "INTERNAL_SERVER_ERROR",
						"message": "An internal server error occurred",
					},
				}

				if correlationID != "" {
					response["correlation_id"] = correlationID
				}

				c.AbortWithStatusJSON(http.StatusInternalServerError, response)
			}
		}()

		c.Next()
	}
}
