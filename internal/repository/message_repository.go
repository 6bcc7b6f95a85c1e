package repository

import (
	"context"

	"DevConnect/model"

	"gorm.io/gorm"
)

// messageRepositoryImpl 消息数据访问层实现
type messageRepositoryImpl struct {
	db *gorm.DB
}

// NewMessageRepository 创建消息仓储实例
func NewMessageRepository(db *gorm.DB) IMessageRepository {
	return &messageRepositoryImpl{db: db}
}

// Create 持久化一条消息。
// 表是仅追加的：这里是唯一的写入口，REST 与实时通道都经由
// service 层的统一落库操作走到这里，保证两条路径的存储形态一致。
func (r *messageRepositoryImpl) Create(ctx context.Context, msg *model.Message) error {
	if err := r.db.WithContext(ctx).Create(msg).Error; err != nil {
		return WrapDBError(err)
	}
	return nil
}

// ListBetween 查询两用户之间的全部消息。
// 排序键 (created_at, id)：created_at 相同的消息按雪花 ID 决出
// 稳定顺序，与提交顺序一致。
func (r *messageRepositoryImpl) ListBetween(ctx context.Context, userUUID, peerUUID string) ([]*model.Message, error) {
	var messages []*model.Message
	err := r.db.WithContext(ctx).
		Where("(sender_uuid = ? AND recipient_uuid = ?) OR (sender_uuid = ? AND recipient_uuid = ?)",
			userUUID, peerUUID, peerUUID, userUUID).
		Order("created_at ASC, id ASC").
		Find(&messages).Error
	if err != nil {
		return nil, WrapDBError(err)
	}
	return messages, nil
}
