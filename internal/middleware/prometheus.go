package middleware

import (
	"strconv"
	"time"

	"DevConnect/internal/metrics"

	"github.com/gin-gonic/gin"
)

// PrometheusMiddleware HTTP 请求指标采集中间件。
// path 维度使用路由模板（c.FullPath）而非原始 URL，避免
// /messages/:recipientId 这类带参路由把指标基数打爆。
func PrometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			// 未命中任何路由（404），归并到一个桶里
			path = "unmatched"
		}

		metrics.HTTPRequestTotal.WithLabelValues(
			c.Request.Method,
			path,
			strconv.Itoa(c.Writer.Status()),
		).Inc()

		metrics.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			path,
		).Observe(time.Since(start).Seconds())
	}
}
