package service

import (
	"context"
	"errors"
	"strings"

	"DevConnect/consts"
	"DevConnect/internal/dto"
	"DevConnect/internal/repository"
	"DevConnect/model"
)

// userServiceImpl 用户资料服务实现
type userServiceImpl struct {
	userRepo repository.IUserRepository
	connRepo repository.IConnectionRepository
}

// NewUserService 创建用户服务实例
func NewUserService(userRepo repository.IUserRepository, connRepo repository.IConnectionRepository) UserService {
	return &userServiceImpl{userRepo: userRepo, connRepo: connRepo}
}

// GetProfile 查询当前用户资料
func (s *userServiceImpl) GetProfile(ctx context.Context) (*dto.UserProfile, error) {
	userUUID, err := UserUUIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByUuid(ctx, userUUID)
	if err != nil {
		if errors.Is(err, repository.ErrRecordNotFound) {
			return nil, consts.NewBizError(consts.CodeUserNotFound)
		}
		return nil, consts.WrapBizError(consts.CodeInternalError, err)
	}
	return toProfile(user, true), nil
}

// UpdateSkills 全量替换技能标签。
// 空白项与重复项在这里清洗，存储里只保留规整的标签列表。
func (s *userServiceImpl) UpdateSkills(ctx context.Context, req *dto.UpdateSkillsRequest) (*dto.UserProfile, error) {
	userUUID, err := UserUUIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	skills := make(model.Skills, 0, len(req.Skills))
	seen := make(map[string]struct{}, len(req.Skills))
	for _, raw := range req.Skills {
		skill := strings.TrimSpace(raw)
		if skill == "" {
			continue
		}
		if _, dup := seen[skill]; dup {
			continue
		}
		seen[skill] = struct{}{}
		skills = append(skills, skill)
	}

	user, err := s.userRepo.UpdateSkills(ctx, userUUID, skills)
	if err != nil {
		if errors.Is(err, repository.ErrRecordNotFound) {
			return nil, consts.NewBizError(consts.CodeUserNotFound)
		}
		return nil, consts.WrapBizError(consts.CodeInternalError, err)
	}
	return toProfile(user, true), nil
}

// SearchBySkill 按技能标签搜索用户
func (s *userServiceImpl) SearchBySkill(ctx context.Context, skill string) (*dto.SearchUsersResponse, error) {
	if _, err := UserUUIDFromContext(ctx); err != nil {
		return nil, err
	}
	skill = strings.TrimSpace(skill)
	if skill == "" {
		return nil, consts.NewBizError(consts.CodeSkillEmpty)
	}

	users, err := s.userRepo.SearchBySkill(ctx, skill)
	if err != nil {
		return nil, consts.WrapBizError(consts.CodeInternalError, err)
	}

	result := make([]*dto.UserProfile, 0, len(users))
	for _, u := range users {
		// 搜索结果不暴露邮箱
		result = append(result, toProfile(u, false))
	}
	return &dto.SearchUsersResponse{Users: result}, nil
}

// ListConnections 查询当前用户的连接列表
func (s *userServiceImpl) ListConnections(ctx context.Context) (*dto.ListConnectionsResponse, error) {
	userUUID, err := UserUUIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	peers, err := s.connRepo.ListConnections(ctx, userUUID)
	if err != nil {
		return nil, consts.WrapBizError(consts.CodeInternalError, err)
	}

	items := make([]*dto.ConnectionItem, 0, len(peers))
	for _, p := range peers {
		items = append(items, &dto.ConnectionItem{
			Id:        p.Uuid,
			Username:  p.Username,
			AvatarURL: p.AvatarURL,
			Skills:    p.Skills,
			Level:     p.Level,
		})
	}
	return &dto.ListConnectionsResponse{Connections: items}, nil
}

func toProfile(u *model.UserInfo, withEmail bool) *dto.UserProfile {
	p := &dto.UserProfile{
		Id:        u.Uuid,
		Username:  u.Username,
		AvatarURL: u.AvatarURL,
		Skills:    u.Skills,
		Level:     u.Level,
	}
	if withEmail {
		p.Email = u.Email
	}
	return p
}
