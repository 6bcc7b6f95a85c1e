package middleware

import (
	"context"
	"errors"
	"sync"
	"time"

	"DevConnect/consts"
	rediskey "DevConnect/consts/redisKey"
	"DevConnect/pkg/logger"
	pkgredis "DevConnect/pkg/redis"
	"DevConnect/pkg/result"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// luaTokenBucket Redis 令牌桶 Lua 脚本。
// 原子性地补充并扣减令牌，避免多实例竞争。
//
//	KEYS[1]: 限流 key (rate:limit:ip:{ip})
//	ARGV[1]: 当前时间戳 (毫秒)
//	ARGV[2]: 令牌桶容量
//	ARGV[3]: 每秒产生的令牌数
//	ARGV[4]: 本次请求消耗的令牌数
//
// 返回 1 表示允许通过，0 表示令牌不足。
const luaTokenBucket = `
local key = KEYS[1]
local now = tonumber(ARGV[1])
local capacity = tonumber(ARGV[2])
local rate = tonumber(ARGV[3])
local requested = tonumber(ARGV[4])

local info = redis.call('HMGET', key, 'tokens', 'last_time')
local current_tokens = tonumber(info[1])
local last_time = tonumber(info[2])

if current_tokens == nil then
    current_tokens = capacity
end
if last_time == nil then
    last_time = now
end

-- 毫秒精度补充令牌
local time_diff = math.max(0, now - last_time)
local new_tokens = math.floor((time_diff * rate) / 1000)
if new_tokens > 0 then
    current_tokens = math.min(capacity, current_tokens + new_tokens)
    last_time = now -- 产生了新令牌才推进时间，防止精度丢失
end

local allowed = 0
if current_tokens >= requested then
    current_tokens = current_tokens - requested
    allowed = 1
end

redis.call('HMSET', key, 'tokens', current_tokens, 'last_time', last_time)

-- 过期时间：桶填满所需时间 * 2，至少 60 秒
local fill_time = math.ceil(capacity / rate)
local ttl = math.max(60, fill_time * 2)
redis.call('EXPIRE', key, ttl)

return allowed
`

// RedisRateLimiter 基于 Redis 令牌桶的分布式限流器。
// Redis 不可用时降级放行，限流是保护手段不是业务语义。
type RedisRateLimiter struct {
	mu          sync.RWMutex
	redisClient *redis.Client
	rate        float64 // 每秒产生的令牌数
	burst       int     // 令牌桶容量
}

// NewRedisRateLimiter 创建限流器
func NewRedisRateLimiter(rate float64, burst int) *RedisRateLimiter {
	return &RedisRateLimiter{rate: rate, burst: burst}
}

// SetClient 设置 Redis 客户端，延迟注入避免初始化顺序问题
func (r *RedisRateLimiter) SetClient(client *redis.Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.redisClient = client
}

// Allow 检查 key 对应的请求是否允许通过。
// Redis 错误、超时、未初始化均降级返回 true。
func (r *RedisRateLimiter) Allow(ctx context.Context, key string) bool {
	r.mu.RLock()
	client := r.redisClient
	r.mu.RUnlock()

	if client == nil {
		return true
	}

	// 给 Redis 操作加独立短超时，防止 Redis 响应慢拖死请求链路
	redisCtx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()

	now := time.Now().UnixMilli()
	cmd := client.Eval(redisCtx, luaTokenBucket, []string{key}, now, r.burst, r.rate, 1)
	res, err := cmd.Result()
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			logger.Warn(ctx, "Redis 限流检查超时，降级放行",
				logger.String("key", key),
				logger.ErrorField("error", err),
			)
			return true
		}
		logger.Error(ctx, "Redis 限流检查失败，降级放行",
			logger.String("key", key),
			logger.ErrorField("error", err),
		)
		return true
	}

	allowed, ok := res.(int64)
	if !ok {
		logger.Warn(ctx, "Redis 限流返回值类型错误，降级放行",
			logger.String("key", key),
			logger.Any("result", res),
		)
		return true
	}
	return allowed == 1
}

// IPRateLimitMiddleware 基于 Redis 令牌桶的 IP 级限流中间件。
// rate: 每秒产生的令牌数；burst: 令牌桶容量。
func IPRateLimitMiddleware(rate float64, burst int) gin.HandlerFunc {
	limiter := NewRedisRateLimiter(rate, burst)

	// 懒加载 Redis Client，只执行一次
	var once sync.Once

	return func(c *gin.Context) {
		once.Do(func() {
			if client := pkgredis.Client(); client != nil {
				limiter.SetClient(client)
			}
		})

		ip := GetClientIP(c)
		if ip == "" {
			logger.Warn(c, "无法获取客户端 IP，跳过限流检查",
				logger.String("path", c.Request.URL.Path),
			)
			c.Next()
			return
		}

		if !limiter.Allow(c, rediskey.RateLimitIPKey(ip)) {
			logger.Warn(c, "IP 请求被限流",
				logger.String("ip", ip),
				logger.String("path", c.Request.URL.Path),
				logger.String("method", c.Request.Method),
			)
			result.Fail(c, nil, consts.CodeTooManyRequests)
			c.Abort()
			return
		}

		c.Next()
	}
}
