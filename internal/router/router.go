package router

import (
	"DevConnect/config"
	"DevConnect/internal/middleware"
	v1 "DevConnect/internal/router/v1"
	"DevConnect/pkg/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// InitRouter 初始化路由。
// wsHandler: 实时通道升级入口（/ws 自带 token 鉴权，不走 JWT 中间件）。
func InitRouter(
	cfg config.ServerConfig,
	connectionHandler *v1.ConnectionHandler,
	messageHandler *v1.MessageHandler,
	userHandler *v1.UserHandler,
	wsHandler gin.HandlerFunc,
) *gin.Engine {
	r := gin.New()

	// 恢复中间件
	r.Use(middleware.GinRecovery(true))

	// 追踪中间件 (生成 trace_id)
	r.Use(util.TraceLogger())

	// 客户端 IP 中间件
	r.Use(middleware.ClientIPMiddleware())

	// 日志中间件
	r.Use(middleware.GinLogger())

	// Prometheus 监控中间件
	r.Use(middleware.PrometheusMiddleware())

	// 跨域中间件
	r.Use(middleware.CorsMiddleware())

	// 健康检查（无需认证）
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	})

	// Prometheus 指标暴露接口
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 实时通道入口。升级前做 IP 限流，升级后的帧级限流在连接内部处理
	r.GET("/ws",
		middleware.IPRateLimitMiddleware(cfg.RateLimitPerSecond, cfg.RateLimitBurst),
		wsHandler,
	)

	// API 路由组：JWT 认证 + IP 限流 + 存储层熔断
	api := r.Group("/api/v1")
	api.Use(middleware.IPRateLimitMiddleware(cfg.RateLimitPerSecond, cfg.RateLimitBurst))
	api.Use(middleware.CircuitBreakerMiddleware(middleware.NewBreaker("api-storage")))
	api.Use(middleware.JWTAuthMiddleware())
	{
		// 连接请求
		connections := api.Group("/connections")
		{
			connections.POST("/send", connectionHandler.Send)
			connections.PUT("/accept", connectionHandler.Accept)
			connections.PUT("/reject", connectionHandler.Reject)
			connections.GET("/requests", connectionHandler.ListPending)
		}

		// 消息
		messages := api.Group("/messages")
		{
			messages.POST("", messageHandler.Send)
			messages.GET("/:recipientId", messageHandler.History)
		}

		// 用户资料
		users := api.Group("/users")
		{
			users.GET("/profile", userHandler.GetProfile)
			users.PUT("/skills", userHandler.UpdateSkills)
			users.GET("/search", userHandler.Search)
			users.GET("/connections", userHandler.ListConnections)
		}
	}

	return r
}
