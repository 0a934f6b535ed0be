// Package middleware provides Gin HTTP middleware for Recruitbase. All
// middleware here is registered in internal/api/router.go before any route
// handlers so every request is covered regardless of handler.
//
// Ordering matters and is enforced in router.go:
//
//	Recovery → RequestID → Metrics → Security → RateLimit → Auth → Handler
//
// Security headers run before rate limiting so they appear on 429 responses
// too. Rate limiting runs before auth to turn away floods before any JWT
// parsing. Auth populates the actor identity handlers read from the context.
package middleware

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/recruitbase/recruitbase/internal/telemetry"
)

// MetricsMiddleware records http_requests_total and
// http_request_duration_seconds for every request.
//
// The path label is taken from c.FullPath(), the matched route template
// (e.g. /v1/shared/:token) rather than the raw URL: public link tokens must
// never become label values. Requests matching no registered route use the
// literal "<no-route>" so unhandled paths do not inflate label cardinality.
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "<no-route>"
		}

		duration := time.Since(start).Seconds()
		method := c.Request.Method
		status := fmt.Sprintf("%d", c.Writer.Status())

		telemetry.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
		telemetry.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
	}
}
