package repository

import (
	"context"
	"encoding/json"
	"time"

	"DevConnect/consts/redisKey"
	"DevConnect/model"
	"DevConnect/pkg/async"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const userInfoLRUSize = 4096

// userRepositoryImpl 用户资料数据访问层实现。
// 读路径三级：进程内 LRU -> Redis -> MySQL。
// 用户展示字段（用户名/头像）在待处理请求连表与连接列表里被高频读取，
// LRU 挡住同一实例内的重复查询，Redis 让多实例共享缓存。
type userRepositoryImpl struct {
	db          *gorm.DB
	redisClient *redis.Client
	localCache  *lru.Cache[string, *model.UserInfo]
}

// NewUserRepository 创建用户仓储实例
func NewUserRepository(db *gorm.DB, redisClient *redis.Client) IUserRepository {
	cache, _ := lru.New[string, *model.UserInfo](userInfoLRUSize)
	return &userRepositoryImpl{
		db:          db,
		redisClient: redisClient,
		localCache:  cache,
	}
}

// GetByUuid 按 uuid 查询用户资料
func (r *userRepositoryImpl) GetByUuid(ctx context.Context, uuid string) (*model.UserInfo, error) {
	if user, ok := r.localCache.Get(uuid); ok {
		return user, nil
	}
	if user, ok := r.getRedisCache(ctx, uuid); ok {
		r.localCache.Add(uuid, user)
		return user, nil
	}

	var user model.UserInfo
	if err := r.db.WithContext(ctx).
		Where("uuid = ?", uuid).
		First(&user).Error; err != nil {
		return nil, WrapDBError(err)
	}

	r.localCache.Add(uuid, &user)
	r.setRedisCacheAsync(ctx, &user)
	return &user, nil
}

// UpdateSkills 全量替换技能标签并失效缓存
func (r *userRepositoryImpl) UpdateSkills(ctx context.Context, uuid string, skills model.Skills) (*model.UserInfo, error) {
	res := r.db.WithContext(ctx).Model(&model.UserInfo{}).
		Where("uuid = ?", uuid).
		Update("skills", skills)
	if res.Error != nil {
		return nil, WrapDBError(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrRecordNotFound
	}

	r.invalidate(ctx, uuid)

	var user model.UserInfo
	if err := r.db.WithContext(ctx).
		Where("uuid = ?", uuid).
		First(&user).Error; err != nil {
		return nil, WrapDBError(err)
	}
	return &user, nil
}

// SearchBySkill 查询技能标签包含 skill 的用户。
// skills 是 JSON 数组列，用 JSON_CONTAINS 做成员判断；
// 搜索是低频管理路径，不走缓存。
func (r *userRepositoryImpl) SearchBySkill(ctx context.Context, skill string) ([]*model.UserInfo, error) {
	quoted, err := json.Marshal(skill)
	if err != nil {
		return nil, WrapDBError(err)
	}

	var users []*model.UserInfo
	if err := r.db.WithContext(ctx).
		Where("JSON_CONTAINS(skills, ?)", string(quoted)).
		Order("level DESC, id ASC").
		Find(&users).Error; err != nil {
		return nil, WrapDBError(err)
	}
	return users, nil
}

// getRedisCache 读取 Redis 用户信息缓存
func (r *userRepositoryImpl) getRedisCache(ctx context.Context, uuid string) (*model.UserInfo, bool) {
	if r.redisClient == nil {
		return nil, false
	}

	raw, err := r.redisClient.Get(ctx, rediskey.UserInfoKey(uuid)).Result()
	if err != nil {
		if err != redis.Nil {
			LogRedisError(ctx, WrapRedisError(err))
		}
		return nil, false
	}

	var user model.UserInfo
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return nil, false
	}
	return &user, true
}

// setRedisCacheAsync 异步写入 Redis 用户信息缓存
func (r *userRepositoryImpl) setRedisCacheAsync(ctx context.Context, user *model.UserInfo) {
	if r.redisClient == nil {
		return
	}
	_ = async.RunSafe(ctx, func(taskCtx context.Context) {
		raw, err := json.Marshal(user)
		if err != nil {
			return
		}
		if err := r.redisClient.Set(taskCtx, rediskey.UserInfoKey(user.Uuid), raw, rediskey.UserInfoTTL).Err(); err != nil {
			LogRedisError(taskCtx, WrapRedisError(err))
		}
	}, 5*time.Second)
}

// invalidate 失效两级缓存（写路径同步删除，保证本请求内读到新值）
func (r *userRepositoryImpl) invalidate(ctx context.Context, uuid string) {
	r.localCache.Remove(uuid)
	if r.redisClient == nil {
		return
	}
	if err := r.redisClient.Del(ctx, rediskey.UserInfoKey(uuid)).Err(); err != nil {
		LogRedisError(ctx, WrapRedisError(err))
	}
}
