package realtime

import (
	"encoding/json"
	"errors"
)

// ErrEmptyPayload 表示帧内缺少业务载荷
var ErrEmptyPayload = errors.New("empty payload")

// 实时通道事件类型。
// 上行：addUser / sendMessage / heartbeat；
// 下行：getUsers / getMessage / heartbeat_ack / error。
const (
	EventAddUser      = "addUser"
	EventSendMessage  = "sendMessage"
	EventHeartbeat    = "heartbeat"
	EventGetUsers     = "getUsers"
	EventGetMessage   = "getMessage"
	EventHeartbeatAck = "heartbeat_ack"
	EventError        = "error"
)

// ws 协议层错误码（仅用于 ws 帧内的 error 消息，不是 HTTP 状态码）
const (
	wsInvalidFormatCode    int32 = 10001
	wsUnsupportedCode      int32 = 10002
	wsIdentityMismatchCode int32 = 10003
	wsThrottledCode        int32 = 10004
	wsNotRegisteredCode    int32 = 10005
)

// Envelope 实时通道统一帧结构
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// AddUserData addUser 上行载荷
type AddUserData struct {
	UserId string `json:"userId"`
}

// SendMessageData sendMessage 上行载荷
type SendMessageData struct {
	SenderId   string `json:"senderId"`
	ReceiverId string `json:"receiverId"`
	Text       string `json:"text"`
}

// RosterEntry getUsers 下行条目（在线用户 + 会话 ID）
type RosterEntry struct {
	UserId   string `json:"userId"`
	SocketId string `json:"socketId"`
}

// GetMessageData getMessage 下行载荷。
// MessageId 为落库后的消息 ID 十进制字符串，客户端用于去重。
type GetMessageData struct {
	MessageId string `json:"messageId"`
	SenderId  string `json:"senderId"`
	Text      string `json:"text"`
	CreatedAt int64  `json:"createdAt"` // unix 毫秒
}

// ErrorData error 下行载荷
type ErrorData struct {
	Code    int32  `json:"code"`
	Message string `json:"message"`
}

// ParseEnvelope 解析上行帧
func ParseEnvelope(raw []byte) (*Envelope, error) {
	var envelope Envelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, err
	}
	return &envelope, nil
}

// unmarshalData 解析帧内业务载荷
func unmarshalData(envelope *Envelope, out interface{}) error {
	if len(envelope.Data) == 0 {
		return ErrEmptyPayload
	}
	return json.Unmarshal(envelope.Data, out)
}

// MarshalEnvelope 序列化下行帧
func MarshalEnvelope(eventType string, data interface{}) ([]byte, error) {
	envelope := Envelope{Type: eventType}
	if data != nil {
		payload, err := json.Marshal(data)
		if err != nil {
			return nil, err
		}
		envelope.Data = payload
	}
	return json.Marshal(envelope)
}
