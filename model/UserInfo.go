package model

import (
	"time"

	"gorm.io/gorm"
)

// UserInfo 用户资料表。
// 账号与凭证归外部认证服务管，本服务只维护展示字段、技能标签，
// 以及连接建立时的物化视图（见 UserConnection）。
type UserInfo struct {
	Id   int64  `gorm:"column:id;primaryKey;autoIncrement"`
	Uuid string `gorm:"column:uuid;type:char(32);not null;uniqueIndex;comment:用户uuid"`

	Username  string `gorm:"column:username;type:varchar(64);not null;uniqueIndex;comment:用户名"`
	Email     string `gorm:"column:email;type:varchar(128);not null;comment:邮箱"`
	AvatarURL string `gorm:"column:avatar_url;type:varchar(512);comment:头像URL(外部对象存储)"`

	// 技能标签，JSON 数组，如 ["go","mysql"]
	Skills Skills `gorm:"column:skills;type:json;serializer:json;comment:技能标签"`
	Level  int    `gorm:"column:level;not null;default:1;comment:等级"`

	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time      `gorm:"column:updated_at;autoUpdateTime"`
	DeletedAt gorm.DeletedAt `gorm:"column:deleted_at;index"`
}

func (UserInfo) TableName() string { return "user_info" }

// Skills 技能标签列表。
type Skills []string

// Contains 判断是否包含某技能（大小写敏感，与存储保持一致）。
func (s Skills) Contains(skill string) bool {
	for _, v := range s {
		if v == skill {
			return true
		}
	}
	return false
}
