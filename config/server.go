package config

import "time"

// ServerConfig HTTP 服务运行参数。
// 超时用于限制异常连接占用资源，避免慢连接拖垮服务。
// 注意：WriteTimeout 不能太小，/ws 升级后的长连接不受它约束，
// 但升级前的握手仍受 ReadHeaderTimeout 限制。
type ServerConfig struct {
	Addr              string        `json:"addr" yaml:"addr"`
	ReadHeaderTimeout time.Duration `json:"readHeaderTimeout" yaml:"readHeaderTimeout"`
	IdleTimeout       time.Duration `json:"idleTimeout" yaml:"idleTimeout"`
	ShutdownTimeout   time.Duration `json:"shutdownTimeout" yaml:"shutdownTimeout"`

	// 限流配置（Redis 令牌桶，按 IP）
	RateLimitPerSecond float64 `json:"rateLimitPerSecond" yaml:"rateLimitPerSecond"`
	RateLimitBurst     int     `json:"rateLimitBurst" yaml:"rateLimitBurst"`
}

// DefaultServerConfig 返回本地开发的默认配置。
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Addr:               envString("SERVER_ADDR", ":8080"),
		ReadHeaderTimeout:  5 * time.Second,
		IdleTimeout:        60 * time.Second,
		ShutdownTimeout:    envDuration("SHUTDOWN_TIMEOUT", 15*time.Second),
		RateLimitPerSecond: 20,
		RateLimitBurst:     40,
	}
}

// RealtimeConfig 实时通道运行参数。
type RealtimeConfig struct {
	SendQueueSize   int           `json:"sendQueueSize" yaml:"sendQueueSize"`     // 单连接下行队列长度
	WriteTimeout    time.Duration `json:"writeTimeout" yaml:"writeTimeout"`       // 单帧写超时
	PersistTimeout  time.Duration `json:"persistTimeout" yaml:"persistTimeout"`   // 异步持久化超时
	MessagesPerSec  float64       `json:"messagesPerSec" yaml:"messagesPerSec"`   // 单连接上行消息速率
	MessageBurst    int           `json:"messageBurst" yaml:"messageBurst"`       // 单连接上行消息突发量
	MaxContentBytes int           `json:"maxContentBytes" yaml:"maxContentBytes"` // 消息正文最大字节数
}

// DefaultRealtimeConfig 返回本地开发的默认配置。
func DefaultRealtimeConfig() RealtimeConfig {
	return RealtimeConfig{
		SendQueueSize:   64,
		WriteTimeout:    5 * time.Second,
		PersistTimeout:  10 * time.Second,
		MessagesPerSec:  10,
		MessageBurst:    20,
		MaxContentBytes: 4096,
	}
}
