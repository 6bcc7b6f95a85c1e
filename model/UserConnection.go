package model

import "time"

// UserConnection 已接受连接的物化视图（双向各一行）。
// 连接请求被接受时，与状态更新同一事务内写入 (A,B) 与 (B,A) 两行，
// 使 "X 的连接列表" 与 "X、Y 是否已连接" 都是 O(1) 索引查询，
// 不必回连 connection_request 表做方向无关的关联。
type UserConnection struct {
	Id       int64  `gorm:"column:id;primaryKey;autoIncrement"`
	UserUuid string `gorm:"column:user_uuid;type:char(32);not null;uniqueIndex:uidx_user_peer;comment:用户uuid"`
	PeerUuid string `gorm:"column:peer_uuid;type:char(32);not null;index;uniqueIndex:uidx_user_peer;comment:对端用户uuid"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (UserConnection) TableName() string { return "user_connection" }
