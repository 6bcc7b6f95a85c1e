package middleware

import (
	"context"
	"net"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	headerXRealIP       = "X-Real-IP"
	headerXForwardedFor = "X-Forwarded-For"
)

// GetClientIP 从请求中获取客户端真实 IP。
// 优先级：X-Real-IP > X-Forwarded-For 首段 > gin.ClientIP。
func GetClientIP(c *gin.Context) string {
	if ip := c.GetHeader(headerXRealIP); ip != "" {
		return strings.TrimSpace(ip)
	}

	if xff := c.GetHeader(headerXForwardedFor); xff != "" {
		first := xff
		if idx := strings.Index(xff, ","); idx != -1 {
			first = xff[:idx]
		}
		first = strings.TrimSpace(first)
		if net.ParseIP(first) != nil {
			return first
		}
	}

	return c.ClientIP()
}

// ClientIPMiddleware 注入客户端 IP 到 Gin 与 request 上下文
func ClientIPMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := GetClientIP(c)

		c.Set("client_ip", ip)

		ctx := context.WithValue(c.Request.Context(), "client_ip", ip)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}
