package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"DevConnect/consts"
	"DevConnect/pkg/logger"
	"DevConnect/pkg/result"

	"github.com/gin-gonic/gin"
	"github.com/sony/gobreaker"
)

// errUpstreamFailure 表示下游处理返回了服务端错误，用于熔断统计
var errUpstreamFailure = errors.New("upstream returned server error")

// NewBreaker 创建熔断器。
// 连续失败比例超过 60% 且请求数达到阈值时打开，30 秒后进入半开试探。
func NewBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 5,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 10 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn(context.Background(), "熔断器状态变化",
				logger.String("breaker", name),
				logger.String("from", from.String()),
				logger.String("to", to.String()),
			)
		},
	})
}

// CircuitBreakerMiddleware 依赖存储层的路由组熔断中间件。
// 以 5xx 响应作为失败信号；熔断打开期间直接快速失败，
// 给 MySQL/Redis 留出恢复窗口。
func CircuitBreakerMiddleware(cb *gobreaker.CircuitBreaker) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, err := cb.Execute(func() (interface{}, error) {
			c.Next()
			if c.Writer.Status() >= http.StatusInternalServerError {
				return nil, errUpstreamFailure
			}
			return nil, nil
		})

		if err == nil || errors.Is(err, errUpstreamFailure) {
			// 请求已经被 handler 处理并写过响应
			return
		}

		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			logger.Warn(c, fmt.Sprintf("熔断器 [%s] 拒绝请求", cb.Name()),
				logger.String("path", c.Request.URL.Path),
				logger.String("method", c.Request.Method),
			)
			result.Fail(c, nil, consts.CodeServiceUnavailable)
			c.Abort()
		}
	}
}
