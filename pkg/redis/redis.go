package redis

import (
	"context"

	"DevConnect/config"

	"github.com/redis/go-redis/v9"
)

var global *redis.Client

// Client 返回全局 Redis 客户端（未初始化时为 nil）。
// 所有使用方都必须容忍 nil：Redis 不可用时服务降级运行，不直接拒绝请求。
func Client() *redis.Client {
	return global
}

// ReplaceGlobal 设置全局 Redis 客户端。
func ReplaceGlobal(client *redis.Client) {
	global = client
}

// Build 根据配置创建并探活 Redis 客户端。
func Build(cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		PoolSize:     cfg.PoolSize,
	})

	ctx, cancel := context.WithTimeout(context.Background(), cfg.DialTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}
