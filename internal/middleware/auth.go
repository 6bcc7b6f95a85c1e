package middleware

import (
	"context"
	"errors"
	"strings"

	"DevConnect/consts"
	"DevConnect/pkg/result"
	"DevConnect/pkg/util"

	"github.com/gin-gonic/gin"
)

// JWTAuthMiddleware JWT 认证中间件。
// 从请求头中提取 Bearer Token 并验签，通过后将用户身份存入 Context。
// Token 由外部认证服务签发，这里只做验签与有效期校验。
func JWTAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			// 客户端请求错误,属于正常业务流程,不记录日志
			result.Fail(c, nil, consts.CodeUnauthorized)
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			result.Fail(c, nil, consts.CodeUnauthorized)
			c.Abort()
			return
		}

		claims, err := util.ParseToken(parts[1])
		if err != nil {
			code := consts.CodeInvalidToken
			if errors.Is(err, util.ErrTokenExpired) {
				code = consts.CodeTokenExpired
			}
			result.Fail(c, nil, code)
			c.Abort()
			return
		}

		// 将用户身份存入 Context，供后续 Handler 使用
		c.Set("user_uuid", claims.UserUUID)
		c.Set("username", claims.Username)

		c.Next()
	}
}

// GetUserUUID 从 Context 中获取当前登录用户的 UUID
func GetUserUUID(c *gin.Context) (string, bool) {
	userUUID, exists := c.Get("user_uuid")
	if !exists {
		return "", false
	}
	uuid, ok := userUUID.(string)
	return uuid, ok
}

// NewContextWithGin 从 gin.Context 创建携带 trace_id、user_uuid、client_ip
// 的 context.Context，用于把请求身份透传到服务层与日志系统。
func NewContextWithGin(c *gin.Context) context.Context {
	ctx := c.Request.Context()
	if traceId, exists := c.Get("trace_id"); exists {
		ctx = context.WithValue(ctx, "trace_id", traceId)
	}
	if userUUID, exists := c.Get("user_uuid"); exists {
		ctx = context.WithValue(ctx, "user_uuid", userUUID)
	}
	if clientIP, exists := c.Get("client_ip"); exists {
		ctx = context.WithValue(ctx, "client_ip", clientIP)
	}
	return ctx
}
