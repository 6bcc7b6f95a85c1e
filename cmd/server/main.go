package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"DevConnect/config"
	"DevConnect/internal/realtime"
	"DevConnect/internal/repository"
	"DevConnect/internal/router"
	v1 "DevConnect/internal/router/v1"
	"DevConnect/internal/service"
	"DevConnect/model"
	"DevConnect/pkg/async"
	"DevConnect/pkg/db"
	"DevConnect/pkg/logger"
	pkgredis "DevConnect/pkg/redis"
	"DevConnect/pkg/util"

	"github.com/gin-gonic/gin"
)

func main() {
	ctx := context.WithValue(context.Background(), "trace_id", "0")

	// 1. 初始化日志
	loggerCfg := config.DefaultLoggerConfig()
	l, err := logger.Build(loggerCfg)
	if err != nil {
		fmt.Printf("初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	logger.ReplaceGlobal(l)
	defer func() {
		// Sync 在输出为 stdout 时可能返回错误，可以忽略
		_ = logger.L().Sync()
	}()

	logger.Info(ctx, "DevConnect 服务初始化中...")

	// 2. 初始化 Redis（失败不阻塞启动，缓存/限流/last_seen 降级）
	redisCfg := config.DefaultRedisConfig()
	redisClient, err := pkgredis.Build(redisCfg)
	if err != nil {
		logger.Error(ctx, "初始化 Redis 失败，缓存与限流降级运行",
			logger.String("addr", redisCfg.Addr),
			logger.ErrorField("error", err),
		)
		redisClient = nil
	} else {
		pkgredis.ReplaceGlobal(redisClient)
		logger.Info(ctx, "Redis 初始化成功",
			logger.String("addr", redisCfg.Addr),
		)
	}

	// 3. 初始化 MySQL
	mysqlCfg := config.DefaultMySQLConfig()
	gormDB, err := db.Build(mysqlCfg)
	if err != nil {
		logger.Fatal(ctx, "初始化 MySQL 失败",
			logger.ErrorField("error", err),
		)
	}
	if err := gormDB.AutoMigrate(
		&model.UserInfo{},
		&model.ConnectionRequest{},
		&model.UserConnection{},
		&model.Message{},
	); err != nil {
		logger.Fatal(ctx, "数据库迁移失败",
			logger.ErrorField("error", err),
		)
	}
	logger.Info(ctx, "MySQL 初始化成功")

	// 4. 初始化协程池（实时通道的持久化任务跑在这里）
	asyncCfg := config.DefaultAsyncConfig()
	if err := async.Init(asyncCfg); err != nil {
		logger.Fatal(ctx, "初始化协程池失败",
			logger.ErrorField("error", err),
		)
	}
	async.SetContextPropagator(func(parent context.Context) context.Context {
		propagated := context.Background()
		if traceID, ok := parent.Value("trace_id").(string); ok && traceID != "" {
			propagated = context.WithValue(propagated, "trace_id", traceID)
		}
		if userUUID, ok := parent.Value("user_uuid").(string); ok && userUUID != "" {
			propagated = context.WithValue(propagated, "user_uuid", userUUID)
		}
		return propagated
	})
	logger.Info(ctx, "协程池初始化完成",
		logger.Int("pool_size", asyncCfg.PoolSize),
	)

	// 5. 初始化 JWT
	util.InitJWT(config.DefaultJWTConfig())

	// 6. 初始化 Repository 层（依赖注入）
	connRepo := repository.NewConnectionRepository(gormDB, redisClient)
	msgRepo := repository.NewMessageRepository(gormDB)
	userRepo := repository.NewUserRepository(gormDB, redisClient)

	// 7. 初始化 Service 层（依赖注入）
	realtimeCfg := config.DefaultRealtimeConfig()
	connectionService := service.NewConnectionService(connRepo, userRepo)
	messageService := service.NewMessageService(msgRepo, connRepo, userRepo, realtimeCfg.MaxContentBytes)
	userService := service.NewUserService(userRepo, connRepo)

	// 8. 初始化实时通道
	registry := realtime.NewRegistry()
	gateway := realtime.NewGateway(registry, messageService, realtimeCfg)

	// 9. 初始化 Handler 层与路由
	connectionHandler := v1.NewConnectionHandler(connectionService)
	messageHandler := v1.NewMessageHandler(messageService)
	userHandler := v1.NewUserHandler(userService)

	gin.SetMode(gin.ReleaseMode)
	serverCfg := config.DefaultServerConfig()
	r := router.InitRouter(serverCfg, connectionHandler, messageHandler, userHandler, gateway.ServeWS)
	logger.Info(ctx, "路由初始化完成")

	srv := &http.Server{
		Addr:              serverCfg.Addr,
		Handler:           r,
		ReadHeaderTimeout: serverCfg.ReadHeaderTimeout,
		IdleTimeout:       serverCfg.IdleTimeout,
		MaxHeaderBytes:    1 << 20,
	}

	// 10. 启动服务器
	go func() {
		logger.Info(ctx, "DevConnect 服务器启动中",
			logger.String("address", serverCfg.Addr),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error(ctx, "服务器启动失败",
				logger.ErrorField("error", err),
			)
			os.Exit(1)
		}
	}()

	// 11. 优雅停机
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	logger.Info(ctx, "收到关闭信号，开始优雅停机...",
		logger.String("signal", sig.String()),
	)

	// 先关实时会话，再关 HTTP 服务器，最后释放协程池，
	// 保证已入队的持久化任务有机会执行完。
	registry.Shutdown()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), serverCfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "服务器强制关闭",
			logger.ErrorField("error", err),
		)
	}

	if err := async.Release(); err != nil {
		logger.Error(ctx, "协程池释放超时",
			logger.ErrorField("error", err),
		)
	}

	logger.Info(ctx, "DevConnect 服务器已优雅退出")
}
