package service

import (
	"context"

	"DevConnect/internal/dto"
)

// ConnectionService 连接请求工作流。
// 这是连接图唯一的写入口：pending 边的创建与终态迁移都在这里校验。
type ConnectionService interface {
	// Send 发起连接请求。拒绝自连与重复边（方向无关、任意状态）。
	Send(ctx context.Context, req *dto.SendConnectionRequest) (*dto.SendConnectionResponse, error)

	// Accept 接受连接请求。仅接收方可操作，仅 pending 可迁移；
	// 成功后双方连接列表互相可见。
	Accept(ctx context.Context, req *dto.ActionConnectionRequest) error

	// Decline 拒绝连接请求。前置条件与 Accept 相同，迁移到 declined 终态。
	Decline(ctx context.Context, req *dto.ActionConnectionRequest) error

	// ListPending 查询发给当前用户的待处理请求（带发起方展示字段）。
	ListPending(ctx context.Context) (*dto.ListPendingResponse, error)
}

// MessageService 消息读写。
// Record 是统一的落库操作：REST 与实时通道两条入口都经由它，
// 保证存储形态与校验完全一致。
type MessageService interface {
	// Record 校验并持久化一条消息。双方必须已是连接。
	Record(ctx context.Context, senderUUID, recipientUUID, content string) (*dto.MessageItem, error)

	// History 查询当前用户与 peer 的会话历史，按创建时间升序。
	History(ctx context.Context, peerUUID string) (*dto.ListMessagesResponse, error)
}

// UserService 用户资料读写（外部身份服务拥有账号，这里只管展示字段与技能）。
type UserService interface {
	GetProfile(ctx context.Context) (*dto.UserProfile, error)
	UpdateSkills(ctx context.Context, req *dto.UpdateSkillsRequest) (*dto.UserProfile, error)
	SearchBySkill(ctx context.Context, skill string) (*dto.SearchUsersResponse, error)
	ListConnections(ctx context.Context) (*dto.ListConnectionsResponse, error)
}
