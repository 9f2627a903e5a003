package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/projectmgmt/backend/internal/infrastructure/telemetry"
)

// Profiling attaches route and method labels to the request goroutine so
// CPU profiles can be filtered per endpoint. Label values use the route
// pattern, never the raw path.
func Profiling(enabled bool) gin.HandlerFunc {
	if !enabled {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		if !traced(c.Request.URL.Path) {
			c.Next()
			return
		}

		labels := map[string]string{telemetry.ProfilingLabelMethod: c.Request.Method}
		if route := c.FullPath(); route != "" {
			labels[telemetry.ProfilingLabelRoute] = route
		}

		telemetry.WithProfilingLabels(c.Request.Context(), labels, func(ctx context.Context) {
			c.Request = c.Request.WithContext(ctx)
			c.Next()
		})
	}
}
