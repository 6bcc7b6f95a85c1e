package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// 核心观测口径：
// - HTTP 请求量与时延（按路由/方法/状态）；
// - 实时在线会话数；
// - 消息投递结果（live 实时推送 / stored 仅落库）。

var (
	// HTTPRequestTotal HTTP 请求计数
	HTTPRequestTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "devconnect",
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests.",
	}, []string{"method", "path", "status"})

	// HTTPRequestDuration HTTP 请求时延
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "devconnect",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path"})

	// OnlineSessions 当前在线实时会话数
	OnlineSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "devconnect",
		Name:      "realtime_online_sessions",
		Help:      "Number of live realtime sessions.",
	})

	// MessagesDelivered 消息处理结果计数。
	// result: live(已实时推送) / stored(对端离线仅落库) / failed(落库失败)
	MessagesDelivered = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "devconnect",
		Name:      "messages_total",
		Help:      "Messages handled by the realtime gateway, by delivery result.",
	}, []string{"result"})
)
