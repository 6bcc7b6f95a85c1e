package realtime

import (
	"context"
	"net/http"
	"time"

	"DevConnect/config"
	"DevConnect/consts"
	rediskey "DevConnect/consts/redisKey"
	"DevConnect/internal/metrics"
	"DevConnect/internal/service"
	"DevConnect/pkg/async"
	"DevConnect/pkg/logger"
	pkgredis "DevConnect/pkg/redis"
	"DevConnect/pkg/result"
	"DevConnect/pkg/util"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	// 当前阶段默认放开来源校验，方便本地多端调试。
	// 生产环境建议按域名白名单收紧校验策略。
	CheckOrigin: func(_ *http.Request) bool {
		return true
	},
}

// clientSession 事件处理所需的会话能力。
// 在 Session 之上补充上行限流判定，事件分发只依赖该接口，
// 不触及底层 websocket 连接。
type clientSession interface {
	Session
	AllowMessage() bool
}

// Gateway 实时通道入口。
// 职责边界：
//   - 握手阶段校验 token，通道身份以验签后的 claim 为准；
//   - 上行事件的解析、鉴别与限流；
//   - 持久化走与 REST 完全相同的 MessageService.Record，
//     并通过协程池异步执行，单个慢任务不阻塞其他连接。
type Gateway struct {
	registry       *Registry
	messageService service.MessageService
	cfg            config.RealtimeConfig
}

// NewGateway 创建实时通道入口
func NewGateway(registry *Registry, messageService service.MessageService, cfg config.RealtimeConfig) *Gateway {
	return &Gateway{
		registry:       registry,
		messageService: messageService,
		cfg:            cfg,
	}
}

// ServeWS 处理 WebSocket 握手与接入。
// 执行流程：
// 1. 从 query 中读取 token 并验签；
// 2. 构建连接级 context（注入 trace_id/user_uuid）；
// 3. 完成协议升级并进入连接处理主循环。
func (g *Gateway) ServeWS(c *gin.Context) {
	claims, err := util.ParseToken(c.Query("token"))
	if err != nil {
		code := consts.CodeInvalidToken
		if err == util.ErrTokenExpired {
			code = consts.CodeTokenExpired
		}
		result.Fail(c, nil, code)
		return
	}

	connCtx := context.Background()
	if traceID := c.GetString("trace_id"); traceID != "" {
		connCtx = context.WithValue(connCtx, "trace_id", traceID)
	}
	connCtx = context.WithValue(connCtx, "user_uuid", claims.UserUUID)

	conn, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Warn(connCtx, "WebSocket 升级失败",
			logger.ErrorField("error", err),
		)
		return
	}

	g.handleConnection(connCtx, conn, claims.UserUUID)
}

// handleConnection 承载单个连接的完整生命周期。
// 注意：会话进入在线名单要等 addUser 事件，仅握手成功不算上线。
func (g *Gateway) handleConnection(ctx context.Context, conn *websocket.Conn, userUUID string) {
	client := NewClient(conn, userUUID,
		g.cfg.SendQueueSize, g.cfg.WriteTimeout,
		g.cfg.MessagesPerSec, g.cfg.MessageBurst,
	)

	metrics.OnlineSessions.Inc()
	logger.Info(ctx, "WebSocket 连接已建立",
		logger.String("user_uuid", userUUID),
		logger.String("session_id", client.ID()),
	)

	client.Run(ctx, func(raw []byte) {
		g.handleMessage(ctx, client, raw)
	}, func() {
		g.onDisconnect(ctx, client)
	})
}

// onDisconnect 连接关闭后的清理。
// 只有当前注册的会话才触发名单变更广播，
// 被顶号的旧会话迟到断开不影响新会话。
func (g *Gateway) onDisconnect(ctx context.Context, client clientSession) {
	metrics.OnlineSessions.Dec()
	if g.registry.RemoveBySession(client) {
		g.broadcastRoster(ctx)
	}
	logger.Info(ctx, "WebSocket 连接已断开",
		logger.String("user_uuid", client.UserUUID()),
		logger.String("session_id", client.ID()),
		logger.Int("online_count", g.registry.Count()),
	)
}

// handleMessage 处理客户端上行帧
func (g *Gateway) handleMessage(ctx context.Context, client clientSession, raw []byte) {
	envelope, err := ParseEnvelope(raw)
	if err != nil {
		g.sendErrorFrame(ctx, client, wsInvalidFormatCode, "invalid frame format")
		return
	}

	switch envelope.Type {
	case EventAddUser:
		g.onAddUser(ctx, client, envelope)
	case EventSendMessage:
		g.onSendMessage(ctx, client, envelope)
	case EventHeartbeat:
		g.onHeartbeat(ctx, client)
	default:
		g.sendErrorFrame(ctx, client, wsUnsupportedCode, "unsupported message type")
	}
}

// onAddUser 注册在线会话并广播名单。
// userId 必须与通道 claim 一致，通道身份不由客户端自报。
func (g *Gateway) onAddUser(ctx context.Context, client clientSession, envelope *Envelope) {
	var data AddUserData
	if err := unmarshalData(envelope, &data); err != nil {
		g.sendErrorFrame(ctx, client, wsInvalidFormatCode, "invalid addUser payload")
		return
	}
	if data.UserId != client.UserUUID() {
		g.sendErrorFrame(ctx, client, wsIdentityMismatchCode, "userId does not match channel identity")
		return
	}

	replaced, ok := g.registry.AddUser(client)
	if !ok {
		client.Close()
		return
	}
	if replaced != nil {
		replaced.Close()
	}

	g.touchLastSeen(ctx, client.UserUUID())
	logger.Info(ctx, "用户上线",
		logger.String("user_uuid", client.UserUUID()),
		logger.String("session_id", client.ID()),
		logger.Bool("replaced", replaced != nil),
		logger.Int("online_count", g.registry.Count()),
	)
	g.broadcastRoster(ctx)
}

// onSendMessage 处理实时发消息。
// 前置条件：会话已通过 addUser 完成注册，且仍是该用户的当前会话；
// 落库与 REST 共用 MessageService.Record，通过协程池异步执行；
// 落库成功且对端在线时，仅向对端会话投递一条 getMessage。
func (g *Gateway) onSendMessage(ctx context.Context, client clientSession, envelope *Envelope) {
	if !client.AllowMessage() {
		g.sendErrorFrame(ctx, client, wsThrottledCode, "message rate limit exceeded")
		return
	}

	var data SendMessageData
	if err := unmarshalData(envelope, &data); err != nil {
		g.sendErrorFrame(ctx, client, wsInvalidFormatCode, "invalid sendMessage payload")
		return
	}
	if data.SenderId != client.UserUUID() {
		g.sendErrorFrame(ctx, client, wsIdentityMismatchCode, "senderId does not match channel identity")
		return
	}
	if current, ok := g.registry.Get(client.UserUUID()); !ok || current != client {
		g.sendErrorFrame(ctx, client, wsNotRegisteredCode, "addUser required before sendMessage")
		return
	}

	submitErr := async.RunSafe(ctx, func(runCtx context.Context) {
		item, err := g.messageService.Record(runCtx, data.SenderId, data.ReceiverId, data.Text)
		if err != nil {
			metrics.MessagesDelivered.WithLabelValues("failed").Inc()
			code := consts.ExtractErrorCode(err)
			if !consts.IsNonServerError(code) {
				logger.Error(runCtx, "实时消息持久化失败",
					logger.String("sender", data.SenderId),
					logger.String("receiver", data.ReceiverId),
					logger.ErrorField("error", err),
				)
			}
			g.sendErrorFrame(runCtx, client, code, consts.GetMessage(code))
			return
		}

		// 落库成功后才尝试实时投递，失败的写入绝不触发推送
		frame, marshalErr := MarshalEnvelope(EventGetMessage, GetMessageData{
			MessageId: item.Id,
			SenderId:  item.Sender,
			Text:      item.Content,
			CreatedAt: item.CreatedAt,
		})
		if marshalErr != nil {
			logger.Warn(runCtx, "getMessage 帧序列化失败",
				logger.ErrorField("error", marshalErr),
			)
			metrics.MessagesDelivered.WithLabelValues("stored").Inc()
			return
		}

		if peer, online := g.registry.Get(data.ReceiverId); online && peer.Enqueue(frame) {
			metrics.MessagesDelivered.WithLabelValues("live").Inc()
		} else {
			metrics.MessagesDelivered.WithLabelValues("stored").Inc()
		}
	}, g.cfg.PersistTimeout)

	if submitErr != nil {
		metrics.MessagesDelivered.WithLabelValues("failed").Inc()
		g.sendErrorFrame(ctx, client, consts.CodeMessageSendFail, consts.GetMessage(consts.CodeMessageSendFail))
	}
}

// onHeartbeat 刷新最后活跃时间并应答。
// Redis 不可用时只丢失 last_seen，不影响心跳应答。
func (g *Gateway) onHeartbeat(ctx context.Context, client clientSession) {
	g.touchLastSeen(ctx, client.UserUUID())

	ack, err := MarshalEnvelope(EventHeartbeatAck, nil)
	if err != nil {
		logger.Warn(ctx, "心跳应答序列化失败",
			logger.ErrorField("error", err),
		)
		return
	}
	if !client.Enqueue(ack) {
		client.Close()
	}
}

// touchLastSeen 刷新用户最后活跃时间（上线与心跳都会触发）
func (g *Gateway) touchLastSeen(ctx context.Context, userUUID string) {
	rdb := pkgredis.Client()
	if rdb == nil {
		return
	}
	pipe := rdb.Pipeline()
	pipe.HSet(ctx, rediskey.PresenceLastSeenKey(), userUUID, time.Now().Unix())
	pipe.Expire(ctx, rediskey.PresenceLastSeenKey(), rediskey.PresenceLastSeenTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		logger.Warn(ctx, "刷新最后活跃时间失败",
			logger.String("user_uuid", userUUID),
			logger.ErrorField("error", err),
		)
	}
}

// broadcastRoster 向所有在线会话广播 getUsers 名单
func (g *Gateway) broadcastRoster(ctx context.Context) {
	frame, err := MarshalEnvelope(EventGetUsers, g.registry.Roster())
	if err != nil {
		logger.Warn(ctx, "在线名单序列化失败",
			logger.ErrorField("error", err),
		)
		return
	}
	g.registry.Broadcast(frame)
}

// sendErrorFrame 发送 ws 协议层错误帧。
// 发送失败通常表示连接不可写，此时主动关闭连接避免资源泄漏。
func (g *Gateway) sendErrorFrame(ctx context.Context, client clientSession, code int32, message string) {
	payload, err := MarshalEnvelope(EventError, ErrorData{
		Code:    code,
		Message: message,
	})
	if err != nil {
		logger.Warn(ctx, "错误帧序列化失败",
			logger.Int("code", int(code)),
			logger.ErrorField("error", err),
		)
		return
	}
	if !client.Enqueue(payload) {
		client.Close()
	}
}
