package logger

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// GinMiddleware logs one line per HTTP request through zap.
func GinMiddleware(z *zap.Logger) gin.HandlerFunc {
	z = z.Named("http")
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		fields := []zap.Field{
			zap.Int("status", c.Writer.Status()),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("query", query),
			zap.String("ip", c.ClientIP()),
			zap.Duration("latency", time.Since(start)),
		}
		if len(c.Errors) > 0 {
			z.Error(c.Errors.String(), fields...)
			return
		}
		switch status := c.Writer.Status(); {
		case status >= 500:
			z.Error("request failed", fields...)
		case status >= 400:
			z.Warn("request rejected", fields...)
		default:
			z.Info("request", fields...)
		}
	}
}
