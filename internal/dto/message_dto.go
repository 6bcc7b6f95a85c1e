package dto

// SendMessageRequest REST 发送消息请求
type SendMessageRequest struct {
	Recipient string `json:"recipient" binding:"required"`
	Content   string `json:"content" binding:"required"`
}

// MessageItem 消息条目。
// Id 为雪花 ID 的十进制字符串（避免 JS 端 int64 精度丢失），
// 客户端用它对实时推送与历史拉取去重。
type MessageItem struct {
	Id        string `json:"id"`
	Sender    string `json:"sender"`
	Recipient string `json:"recipient"`
	Content   string `json:"content"`
	CreatedAt int64  `json:"createdAt"` // unix 毫秒
}

// ListMessagesResponse 会话历史响应（按创建时间升序）
type ListMessagesResponse struct {
	Messages []*MessageItem `json:"messages"`
}
