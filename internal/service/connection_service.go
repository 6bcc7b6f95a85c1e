package service

import (
	"context"
	"errors"

	"DevConnect/consts"
	"DevConnect/internal/dto"
	"DevConnect/internal/repository"
	"DevConnect/model"
	"DevConnect/pkg/logger"
)

// connectionServiceImpl 连接请求工作流实现
type connectionServiceImpl struct {
	connRepo repository.IConnectionRepository
	userRepo repository.IUserRepository
}

// NewConnectionService 创建连接服务实例
func NewConnectionService(
	connRepo repository.IConnectionRepository,
	userRepo repository.IUserRepository,
) ConnectionService {
	return &connectionServiceImpl{
		connRepo: connRepo,
		userRepo: userRepo,
	}
}

// Send 发起连接请求。
// 预检查（自连/对端存在/重复边）只为给客户端准确的错误；
// 并发窗口下的重复创建由 pair_key 唯一索引兜底。
func (s *connectionServiceImpl) Send(ctx context.Context, req *dto.SendConnectionRequest) (*dto.SendConnectionResponse, error) {
	requesterUUID, err := UserUUIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	if req.RecipientId == requesterUUID {
		return nil, consts.NewBizError(consts.CodeSelfConnection)
	}

	if _, err := s.userRepo.GetByUuid(ctx, req.RecipientId); err != nil {
		if errors.Is(err, repository.ErrRecordNotFound) {
			return nil, consts.NewBizError(consts.CodeUserNotFound)
		}
		return nil, consts.WrapBizError(consts.CodeInternalError, err)
	}

	if _, err := s.connRepo.GetRequestByPair(ctx, requesterUUID, req.RecipientId); err == nil {
		return nil, consts.NewBizError(consts.CodeConnectionExists)
	} else if !errors.Is(err, repository.ErrRecordNotFound) {
		return nil, consts.WrapBizError(consts.CodeInternalError, err)
	}

	created, err := s.connRepo.CreateRequest(ctx, requesterUUID, req.RecipientId)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			// 并发发起时输给了另一条请求，对客户端等价于重复边
			return nil, consts.NewBizError(consts.CodeConnectionExists)
		}
		return nil, consts.WrapBizError(consts.CodeInternalError, err)
	}

	logger.Info(ctx, "连接请求已创建",
		logger.Int64("request_id", created.Id),
		logger.String("requester", requesterUUID),
		logger.String("recipient", req.RecipientId),
	)
	return &dto.SendConnectionResponse{RequestId: created.Id}, nil
}

// Accept 接受连接请求
func (s *connectionServiceImpl) Accept(ctx context.Context, req *dto.ActionConnectionRequest) error {
	edge, err := s.loadActionable(ctx, req.RequestId)
	if err != nil {
		return err
	}

	if err := s.connRepo.AcceptRequest(ctx, edge); err != nil {
		if errors.Is(err, repository.ErrStaleState) {
			return consts.NewBizError(consts.CodeRequestActioned)
		}
		return consts.WrapBizError(consts.CodeInternalError, err)
	}

	logger.Info(ctx, "连接请求已接受",
		logger.Int64("request_id", edge.Id),
		logger.String("requester", edge.RequesterUuid),
		logger.String("recipient", edge.RecipientUuid),
	)
	return nil
}

// Decline 拒绝连接请求
func (s *connectionServiceImpl) Decline(ctx context.Context, req *dto.ActionConnectionRequest) error {
	edge, err := s.loadActionable(ctx, req.RequestId)
	if err != nil {
		return err
	}

	if err := s.connRepo.DeclineRequest(ctx, edge); err != nil {
		if errors.Is(err, repository.ErrStaleState) {
			return consts.NewBizError(consts.CodeRequestActioned)
		}
		return consts.WrapBizError(consts.CodeInternalError, err)
	}

	logger.Info(ctx, "连接请求已拒绝",
		logger.Int64("request_id", edge.Id),
		logger.String("recipient", edge.RecipientUuid),
	)
	return nil
}

// loadActionable 加载当前用户可处理的边。
// 边不存在与 "边不是发给我的" 对外同样返回不存在，不泄露他人请求。
func (s *connectionServiceImpl) loadActionable(ctx context.Context, requestId int64) (*model.ConnectionRequest, error) {
	actorUUID, err := UserUUIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	edge, err := s.connRepo.GetRequestByID(ctx, requestId)
	if err != nil {
		if errors.Is(err, repository.ErrRecordNotFound) {
			return nil, consts.NewBizError(consts.CodeRequestNotFound)
		}
		return nil, consts.WrapBizError(consts.CodeInternalError, err)
	}
	if edge.RecipientUuid != actorUUID {
		return nil, consts.NewBizError(consts.CodeRequestNotFound)
	}
	if edge.Status != model.ConnectionStatusPending {
		return nil, consts.NewBizError(consts.CodeRequestActioned)
	}
	return edge, nil
}

// ListPending 查询发给当前用户的待处理请求
func (s *connectionServiceImpl) ListPending(ctx context.Context) (*dto.ListPendingResponse, error) {
	userUUID, err := UserUUIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	list, err := s.connRepo.ListPendingFor(ctx, userUUID)
	if err != nil {
		return nil, consts.WrapBizError(consts.CodeInternalError, err)
	}

	items := make([]*dto.PendingRequestItem, 0, len(list))
	for _, p := range list {
		items = append(items, &dto.PendingRequestItem{
			RequestId:         p.RequestId,
			RequesterId:       p.RequesterUuid,
			RequesterUsername: p.RequesterUsername,
			RequesterAvatar:   p.RequesterAvatar,
			CreatedAt:         p.CreatedAtUnix,
		})
	}
	return &dto.ListPendingResponse{Requests: items}, nil
}
