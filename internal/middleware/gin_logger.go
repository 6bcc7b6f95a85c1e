package middleware

import (
	"time"

	"DevConnect/pkg/logger"

	"github.com/gin-gonic/gin"
)

// GinLogger 请求访问日志中间件。
// 替代 gin 默认的控制台日志，统一走 zap 并带上 trace_id。
func GinLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		cost := time.Since(start)
		status := c.Writer.Status()

		logger.Info(c, "http request",
			logger.Int("status", status),
			logger.String("method", c.Request.Method),
			logger.String("path", path),
			logger.String("query", query),
			logger.String("ip", GetClientIP(c)),
			logger.Duration("cost", cost),
		)

		if len(c.Errors) > 0 {
			logger.Error(c, "http request errors",
				logger.String("path", path),
				logger.String("errors", c.Errors.ByType(gin.ErrorTypePrivate).String()),
			)
		}
	}
}
