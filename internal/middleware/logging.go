package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/culinara/culinara/pkg/logging"
)

// RequestLogger writes one access log line per request
func RequestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		l := logger
		if sc := trace.SpanContextFromContext(c.Request.Context()); sc.HasTraceID() {
			l = logging.WithTraceID(l, sc.TraceID().String())
		}

		fields := []zap.Field{
			zap.Int("status", c.Writer.Status()),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("query", c.Request.URL.RawQuery),
			zap.String("ip", c.ClientIP()),
			zap.Duration("latency", time.Since(start)),
			zap.String("user_agent", c.Request.UserAgent()),
		}
		if viewer := ViewerFrom(c); viewer != nil {
			fields = append(fields, zap.String("user_id", viewer.UserID))
		}

		switch {
		case len(c.Errors) > 0:
			fields = append(fields, zap.String("error", c.Errors.String()))
			l.Error("request failed", fields...)
		case c.Writer.Status() >= 500:
			l.Error("request processed", fields...)
		default:
			l.Info("request processed", fields...)
		}
	}
}
