package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"resume-studio-backend/internal/shared/server/respond"
	"resume-studio-backend/internal/shared/telemetry"
)

// Recovery turns panics into a standardized 500 response. Panics during an
// SSE stream cannot be translated once the response is committed; the log
// entry is then the only trace.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			telemetry.Error("panic", map[string]any{
				"request_id": RequestIDFromContext(c),
				"error":      rec,
				"stack":      string(debug.Stack()),
				"path":       c.Request.URL.Path,
				"method":     c.Request.Method,
			})
			if !c.Writer.Written() {
				respond.Error(c, http.StatusInternalServerError, "internal", "Unexpected server error", nil)
			}
			c.Abort()
		}()
		c.Next()
	}
}
