package repository

import (
	"context"
	"time"

	"DevConnect/consts/redisKey"
	"DevConnect/model"
	"DevConnect/pkg/async"
	"DevConnect/pkg/logger"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// connectionRepositoryImpl 连接图数据访问层实现
type connectionRepositoryImpl struct {
	db          *gorm.DB
	redisClient *redis.Client
}

// NewConnectionRepository 创建连接图仓储实例
func NewConnectionRepository(db *gorm.DB, redisClient *redis.Client) IConnectionRepository {
	return &connectionRepositoryImpl{db: db, redisClient: redisClient}
}

// CreateRequest 创建 pending 边。
// pair_key 唯一索引是防重的最终权威：两个并发的创建请求中
// 必有一个收到 ErrDuplicateKey，不依赖应用层预检查。
func (r *connectionRepositoryImpl) CreateRequest(ctx context.Context, requesterUUID, recipientUUID string) (*model.ConnectionRequest, error) {
	req := &model.ConnectionRequest{
		RequesterUuid: requesterUUID,
		RecipientUuid: recipientUUID,
		PairKey:       model.NormalizePairKey(requesterUUID, recipientUUID),
		Status:        model.ConnectionStatusPending,
	}
	if err := r.db.WithContext(ctx).Create(req).Error; err != nil {
		return nil, WrapDBError(err)
	}
	return req, nil
}

// GetRequestByID 按 ID 查询边
func (r *connectionRepositoryImpl) GetRequestByID(ctx context.Context, id int64) (*model.ConnectionRequest, error) {
	var req model.ConnectionRequest
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&req).Error; err != nil {
		return nil, WrapDBError(err)
	}
	return &req, nil
}

// GetRequestByPair 查询一对用户之间的边（方向无关，走 pair_key 索引）
func (r *connectionRepositoryImpl) GetRequestByPair(ctx context.Context, a, b string) (*model.ConnectionRequest, error) {
	var req model.ConnectionRequest
	if err := r.db.WithContext(ctx).
		Where("pair_key = ?", model.NormalizePairKey(a, b)).
		First(&req).Error; err != nil {
		return nil, WrapDBError(err)
	}
	return &req, nil
}

// AcceptRequest 接受连接请求。
// 单个事务内完成：
//  1. 条件更新 status（WHERE status = pending），并发重复接受时
//     只有一个事务命中，其余拿到 ErrStaleState；
//  2. Upsert 双向 user_connection 两行，物化连接视图。
//
// 事务提交后异步把对端写进双方的 Redis 连接集合（若缓存已存在）。
func (r *connectionRepositoryImpl) AcceptRequest(ctx context.Context, req *model.ConnectionRequest) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.ConnectionRequest{}).
			Where("id = ? AND status = ?", req.Id, model.ConnectionStatusPending).
			Update("status", model.ConnectionStatusAccepted)
		if res.Error != nil {
			return WrapDBError(res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrStaleState
		}

		now := time.Now()
		rows := []model.UserConnection{
			{UserUuid: req.RequesterUuid, PeerUuid: req.RecipientUuid, CreatedAt: now, UpdatedAt: now},
			{UserUuid: req.RecipientUuid, PeerUuid: req.RequesterUuid, CreatedAt: now, UpdatedAt: now},
		}
		// Upsert：重复接受的残留行不会让整个事务失败
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_uuid"}, {Name: "peer_uuid"}},
			DoUpdates: clause.Assignments(map[string]interface{}{"updated_at": now}),
		}).Create(&rows).Error; err != nil {
			return WrapDBError(err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	req.Status = model.ConnectionStatusAccepted
	r.addConnectionCacheAsync(ctx, req.RequesterUuid, req.RecipientUuid)
	return nil
}

// DeclineRequest 拒绝连接请求（条件更新，终态不再迁移）
func (r *connectionRepositoryImpl) DeclineRequest(ctx context.Context, req *model.ConnectionRequest) error {
	res := r.db.WithContext(ctx).Model(&model.ConnectionRequest{}).
		Where("id = ? AND status = ?", req.Id, model.ConnectionStatusPending).
		Update("status", model.ConnectionStatusDeclined)
	if res.Error != nil {
		return WrapDBError(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrStaleState
	}
	req.Status = model.ConnectionStatusDeclined
	return nil
}

// ListPendingFor 查询发给 recipientUUID 的 pending 边，连表带出发起方展示字段
func (r *connectionRepositoryImpl) ListPendingFor(ctx context.Context, recipientUUID string) ([]*PendingRequest, error) {
	var list []*PendingRequest
	err := r.db.WithContext(ctx).
		Table("connection_request AS cr").
		Select("cr.id AS request_id, cr.requester_uuid, u.username AS requester_username, u.avatar_url AS requester_avatar, UNIX_TIMESTAMP(cr.created_at) AS created_at_unix").
		Joins("JOIN user_info u ON u.uuid = cr.requester_uuid AND u.deleted_at IS NULL").
		Where("cr.recipient_uuid = ? AND cr.status = ?", recipientUUID, model.ConnectionStatusPending).
		Order("cr.created_at DESC, cr.id DESC").
		Scan(&list).Error
	if err != nil {
		return nil, WrapDBError(err)
	}
	return list, nil
}

// IsConnected 判断两用户是否已是连接。
// Cache-Aside：优先查 Redis Set，key 不存在或 Redis 故障时回源
// user_connection 表，并异步重建该用户的缓存集合。
func (r *connectionRepositoryImpl) IsConnected(ctx context.Context, userUUID, peerUUID string) (bool, error) {
	if hit, connected := r.checkConnectionCache(ctx, userUUID, peerUUID); hit {
		return connected, nil
	}

	var count int64
	if err := r.db.WithContext(ctx).Model(&model.UserConnection{}).
		Where("user_uuid = ? AND peer_uuid = ?", userUUID, peerUUID).
		Count(&count).Error; err != nil {
		return false, WrapDBError(err)
	}

	r.rebuildConnectionCacheAsync(ctx, userUUID)
	return count > 0, nil
}

// ListConnections 查询用户的全部连接（对端用户资料），按建立时间倒序
func (r *connectionRepositoryImpl) ListConnections(ctx context.Context, userUUID string) ([]*model.UserInfo, error) {
	var users []*model.UserInfo
	err := r.db.WithContext(ctx).
		Table("user_info AS u").
		Joins("JOIN user_connection c ON c.peer_uuid = u.uuid").
		Where("c.user_uuid = ? AND u.deleted_at IS NULL", userUUID).
		Order("c.created_at DESC, c.id DESC").
		Find(&users).Error
	if err != nil {
		return nil, WrapDBError(err)
	}
	return users, nil
}

// checkConnectionCache 查询连接缓存。
// 返回值: hit(缓存可用且 key 存在), connected(是否包含对方)
func (r *connectionRepositoryImpl) checkConnectionCache(ctx context.Context, userUUID, peerUUID string) (bool, bool) {
	if r.redisClient == nil {
		return false, false
	}

	key := rediskey.ConnectionSetKey(userUUID)
	exists, err := r.redisClient.Exists(ctx, key).Result()
	if err != nil {
		LogRedisError(ctx, WrapRedisError(err))
		return false, false
	}
	if exists == 0 {
		return false, false
	}

	connected, err := r.redisClient.SIsMember(ctx, key, peerUUID).Result()
	if err != nil {
		LogRedisError(ctx, WrapRedisError(err))
		return false, false
	}
	return true, connected
}

// addConnectionCacheAsync 把新连接写入双方已存在的缓存集合。
// key 不存在时不主动创建，等下次回源时整体重建，避免写出只有一个成员的假集合。
func (r *connectionRepositoryImpl) addConnectionCacheAsync(ctx context.Context, userUUID, peerUUID string) {
	if r.redisClient == nil {
		return
	}
	_ = async.RunSafe(ctx, func(taskCtx context.Context) {
		for _, pair := range [][2]string{{userUUID, peerUUID}, {peerUUID, userUUID}} {
			key := rediskey.ConnectionSetKey(pair[0])
			exists, err := r.redisClient.Exists(taskCtx, key).Result()
			if err != nil || exists == 0 {
				continue
			}
			pipe := r.redisClient.Pipeline()
			pipe.SAdd(taskCtx, key, pair[1])
			pipe.Expire(taskCtx, key, rediskey.ConnectionSetTTL)
			if _, err := pipe.Exec(taskCtx); err != nil {
				LogRedisError(taskCtx, WrapRedisError(err))
			}
		}
	}, 5*time.Second)
}

// rebuildConnectionCacheAsync 全量重建用户的连接缓存集合
func (r *connectionRepositoryImpl) rebuildConnectionCacheAsync(ctx context.Context, userUUID string) {
	if r.redisClient == nil {
		return
	}
	_ = async.RunSafe(ctx, func(taskCtx context.Context) {
		var peers []string
		if err := r.db.WithContext(taskCtx).Model(&model.UserConnection{}).
			Where("user_uuid = ?", userUUID).
			Pluck("peer_uuid", &peers).Error; err != nil {
			logger.Warn(taskCtx, "重建连接缓存读库失败",
				logger.String("user_uuid", userUUID),
				logger.ErrorField("error", err),
			)
			return
		}
		if len(peers) == 0 {
			return
		}

		key := rediskey.ConnectionSetKey(userUUID)
		members := make([]interface{}, 0, len(peers))
		for _, p := range peers {
			members = append(members, p)
		}
		pipe := r.redisClient.Pipeline()
		pipe.SAdd(taskCtx, key, members...)
		pipe.Expire(taskCtx, key, rediskey.ConnectionSetTTL)
		if _, err := pipe.Exec(taskCtx); err != nil {
			LogRedisError(taskCtx, WrapRedisError(err))
		}
	}, 5*time.Second)
}
