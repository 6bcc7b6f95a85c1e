package model

import (
	"strings"
	"time"
)

// 连接请求状态。pending 是唯一的非终态：
// pending -> accepted / declined 各发生至多一次，终态不再迁移，
// 记录永不删除（拒绝后该用户对不允许重新发起）。
const (
	// ConnectionStatusPending 待处理
	ConnectionStatusPending int8 = 0
	// ConnectionStatusAccepted 已接受
	ConnectionStatusAccepted int8 = 1
	// ConnectionStatusDeclined 已拒绝
	ConnectionStatusDeclined int8 = 2
)

// ConnectionRequest 连接请求表（用户对之间的边）。
// PairKey 为归一化的 "min(a,b):max(a,b)"，唯一索引保证同一对用户
// 无论方向、无论状态，至多存在一条边——并发重复发起由数据库兜底，
// 应用层的预检查只负责返回更友好的错误。
type ConnectionRequest struct {
	Id            int64  `gorm:"column:id;primaryKey;autoIncrement"`
	RequesterUuid string `gorm:"column:requester_uuid;type:char(32);not null;index;comment:发起方uuid"`
	RecipientUuid string `gorm:"column:recipient_uuid;type:char(32);not null;index:idx_recipient_status;comment:接收方uuid"`
	PairKey       string `gorm:"column:pair_key;type:char(65);not null;uniqueIndex;comment:归一化用户对"`
	Status        int8   `gorm:"column:status;not null;default:0;index:idx_recipient_status;comment:状态 0.待处理 1.已接受 2.已拒绝"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (ConnectionRequest) TableName() string { return "connection_request" }

// NormalizePairKey 构造归一化用户对键，方向无关。
func NormalizePairKey(a, b string) string {
	if strings.Compare(a, b) > 0 {
		a, b = b, a
	}
	return a + ":" + b
}
