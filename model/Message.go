package model

import "time"

// Message 私信消息表（仅追加）。
// Id 为雪花 ID：全局唯一且随时间单调，客户端可用它对 "实时推送 +
// 历史拉取" 双路径到达的同一条消息去重。消息创建后不修改、不删除。
type Message struct {
	Id            int64  `gorm:"column:id;primaryKey;comment:雪花ID"`
	SenderUuid    string `gorm:"column:sender_uuid;type:char(32);not null;index:idx_pair_created;comment:发送方uuid"`
	RecipientUuid string `gorm:"column:recipient_uuid;type:char(32);not null;index:idx_pair_created;comment:接收方uuid"`
	Content       string `gorm:"column:content;type:text;not null;comment:消息正文"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime;index:idx_pair_created;comment:创建时间(排序键)"`
}

func (Message) TableName() string { return "message" }
