package middleware

import (
	"context"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/placementportal/internal/pkg/logger"
)

// RequestLogger logs one line per request and puts a request-scoped logger
// into the request context.
func RequestLogger(base zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		reqLogger := base.With().Str("method", c.Request.Method).Str("path", path).Logger()
		c.Request = c.Request.WithContext(logger.WithContext(c.Request.Context(), reqLogger))

		c.Next()

		event := reqLogger.Info()
		switch status := c.Writer.Status(); {
		case status >= 500:
			event = reqLogger.Error()
		case status >= 400:
			event = reqLogger.Warn()
		}

		if session, ok := GetSession(c); ok {
			event = event.Str("uid", session.UID)
		}
		event.
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Str("clientIP", c.ClientIP()).
			Msg("Request handled")
	}
}

// RouteTimeout gives every route whose path starts with Prefix its own deadline
type RouteTimeout struct {
	Prefix   string
	Duration time.Duration
}

// Timeout bounds every downstream store call of a request by d, or by the
// first matching override
func Timeout(d time.Duration, overrides ...RouteTimeout) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := d
		path := c.FullPath()
		for _, o := range overrides {
			if o.Prefix != "" && strings.HasPrefix(path, o.Prefix) {
				limit = o.Duration
				break
			}
		}
		if limit <= 0 {
			c.Next()
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), limit)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
