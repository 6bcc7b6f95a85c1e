package repository

import (
	"context"

	"DevConnect/model"
)

// PendingRequest 待处理连接请求（连表带出发起方展示字段）。
type PendingRequest struct {
	RequestId         int64  `gorm:"column:request_id"`
	RequesterUuid     string `gorm:"column:requester_uuid"`
	RequesterUsername string `gorm:"column:requester_username"`
	RequesterAvatar   string `gorm:"column:requester_avatar"`
	CreatedAtUnix     int64  `gorm:"column:created_at_unix"`
}

// IConnectionRepository 连接图数据访问层。
type IConnectionRepository interface {
	// CreateRequest 创建 pending 边；同一对用户已存在任意状态的边时返回 ErrDuplicateKey。
	CreateRequest(ctx context.Context, requesterUUID, recipientUUID string) (*model.ConnectionRequest, error)

	// GetRequestByID 按 ID 查询边；不存在返回 ErrRecordNotFound。
	GetRequestByID(ctx context.Context, id int64) (*model.ConnectionRequest, error)

	// GetRequestByPair 查询一对用户之间的边（方向无关）；不存在返回 ErrRecordNotFound。
	GetRequestByPair(ctx context.Context, a, b string) (*model.ConnectionRequest, error)

	// AcceptRequest 在单个事务中将 pending 边置为 accepted 并物化双向连接；
	// 边已不处于 pending 时返回 ErrStaleState。
	AcceptRequest(ctx context.Context, req *model.ConnectionRequest) error

	// DeclineRequest 将 pending 边置为 declined；
	// 边已不处于 pending 时返回 ErrStaleState。
	DeclineRequest(ctx context.Context, req *model.ConnectionRequest) error

	// ListPendingFor 查询发给 recipientUUID 的全部 pending 边，连表带出发起方信息。
	ListPendingFor(ctx context.Context, recipientUUID string) ([]*PendingRequest, error)

	// IsConnected 判断两用户是否已是连接（先查 Redis 集合，未命中回源数据库）。
	IsConnected(ctx context.Context, userUUID, peerUUID string) (bool, error)

	// ListConnections 查询用户的全部连接（对端用户资料）。
	ListConnections(ctx context.Context, userUUID string) ([]*model.UserInfo, error)
}

// IMessageRepository 消息数据访问层。
type IMessageRepository interface {
	// Create 持久化一条消息（仅追加）。
	Create(ctx context.Context, msg *model.Message) error

	// ListBetween 查询两用户之间的全部消息，按 (created_at, id) 升序。
	ListBetween(ctx context.Context, userUUID, peerUUID string) ([]*model.Message, error)
}

// IUserRepository 用户资料数据访问层。
type IUserRepository interface {
	// GetByUuid 按 uuid 查询用户；不存在返回 ErrRecordNotFound。
	GetByUuid(ctx context.Context, uuid string) (*model.UserInfo, error)

	// UpdateSkills 全量替换技能标签，返回更新后的资料。
	UpdateSkills(ctx context.Context, uuid string, skills model.Skills) (*model.UserInfo, error)

	// SearchBySkill 查询技能标签包含 skill 的用户。
	SearchBySkill(ctx context.Context, skill string) ([]*model.UserInfo, error)
}
