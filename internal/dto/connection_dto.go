package dto

// SendConnectionRequest 发起连接请求
type SendConnectionRequest struct {
	RecipientId string `json:"recipientId" binding:"required"`
}

// SendConnectionResponse 发起连接响应
type SendConnectionResponse struct {
	RequestId int64 `json:"requestId"`
}

// ActionConnectionRequest 接受/拒绝连接请求
type ActionConnectionRequest struct {
	RequestId int64 `json:"requestId" binding:"required"`
}

// PendingRequestItem 待处理连接请求条目
type PendingRequestItem struct {
	RequestId         int64  `json:"requestId"`
	RequesterId       string `json:"requesterId"`
	RequesterUsername string `json:"requesterUsername"`
	RequesterAvatar   string `json:"requesterAvatar"`
	CreatedAt         int64  `json:"createdAt"` // unix 秒
}

// ListPendingResponse 待处理连接请求列表响应
type ListPendingResponse struct {
	Requests []*PendingRequestItem `json:"requests"`
}
