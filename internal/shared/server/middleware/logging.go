package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/amk92987/wos-optimizer/internal/shared/telemetry"
)

// Logging emits one structured line per request. Handlers that resolve a
// profile or report store the id in the gin context so the log line can be
// joined with worker output for the same job.
func Logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		fields := map[string]any{
			"request_id":  RequestIDFromContext(c),
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"status":      c.Writer.Status(),
			"duration_ms": float64(time.Since(start).Microseconds()) / 1000.0,
			"client_ip":   c.ClientIP(),
			"user_agent":  c.Request.UserAgent(),
		}
		if userID, ok := c.Get(userIDKey); ok {
			fields["user_id"] = userID
		}
		if isGuest, ok := c.Get("isGuest"); ok {
			fields["is_guest"] = isGuest
		}
		if profileID, ok := c.Get("profileId"); ok {
			fields["profile_id"] = profileID
		}
		if reportID, ok := c.Get("reportId"); ok {
			fields["report_id"] = reportID
		}

		telemetry.Info("request.complete", fields)
	}
}
