package rediskey

import (
	"fmt"
	"time"
)

// ==================== TTL 常量 ====================

const (
	// UserInfoTTL 用户信息缓存 TTL
	UserInfoTTL = 1 * time.Hour
	// UserInfoEmptyTTL 用户信息空值缓存 TTL
	UserInfoEmptyTTL = 5 * time.Minute

	// ConnectionSetTTL 连接关系缓存 TTL
	ConnectionSetTTL = 24 * time.Hour

	// PresenceLastSeenTTL 在线最后活跃时间 TTL
	PresenceLastSeenTTL = 7 * 24 * time.Hour
)

// ==================== Key 构造函数 ====================

// UserInfoKey 生成用户信息缓存 Key: user:info:{uuid}
func UserInfoKey(uuid string) string {
	return fmt.Sprintf("user:info:%s", uuid)
}

// ConnectionSetKey 生成已接受连接集合 Key: user:connections:{uuid}
// 类型为 Set，成员是对端用户 uuid，用于 O(1) 连接关系判定。
func ConnectionSetKey(uuid string) string {
	return fmt.Sprintf("user:connections:%s", uuid)
}

// PresenceLastSeenKey 生成最后活跃时间 Key: presence:last_seen
// 类型为 Hash，field 是用户 uuid，value 是 unix 秒。
func PresenceLastSeenKey() string {
	return "presence:last_seen"
}

// RateLimitIPKey 生成网关 IP 限流 Key: rate:limit:ip:{ip}
func RateLimitIPKey(ip string) string {
	return fmt.Sprintf("rate:limit:ip:%s", ip)
}
