package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"DevConnect/consts"
	"DevConnect/internal/dto"
	"DevConnect/internal/repository"
	"DevConnect/model"
	"DevConnect/pkg/util"
)

// messageServiceImpl 消息服务实现
type messageServiceImpl struct {
	msgRepo         repository.IMessageRepository
	connRepo        repository.IConnectionRepository
	userRepo        repository.IUserRepository
	maxContentBytes int
}

// NewMessageService 创建消息服务实例。
// maxContentBytes <= 0 时不限制正文长度。
func NewMessageService(
	msgRepo repository.IMessageRepository,
	connRepo repository.IConnectionRepository,
	userRepo repository.IUserRepository,
	maxContentBytes int,
) MessageService {
	return &messageServiceImpl{
		msgRepo:         msgRepo,
		connRepo:        connRepo,
		userRepo:        userRepo,
		maxContentBytes: maxContentBytes,
	}
}

// Record 校验并持久化一条消息。
// REST 入口与实时通道入口都走这里，两条路径的存储形态、
// 校验规则与连接门禁完全一致。落库失败时不产生任何副作用，
// 调用方不得在失败后继续做实时投递。
func (s *messageServiceImpl) Record(ctx context.Context, senderUUID, recipientUUID, content string) (*dto.MessageItem, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, consts.NewBizError(consts.CodeMessageEmpty)
	}
	if s.maxContentBytes > 0 && len(content) > s.maxContentBytes {
		return nil, consts.NewBizError(consts.CodeMessageTooLong)
	}
	if senderUUID == recipientUUID {
		return nil, consts.NewBizError(consts.CodeSelfMessage)
	}

	if _, err := s.userRepo.GetByUuid(ctx, recipientUUID); err != nil {
		if errors.Is(err, repository.ErrRecordNotFound) {
			return nil, consts.NewBizError(consts.CodeUserNotFound)
		}
		return nil, consts.WrapBizError(consts.CodeInternalError, err)
	}

	// 消息门禁：只有已接受的连接才能互发私信
	connected, err := s.connRepo.IsConnected(ctx, senderUUID, recipientUUID)
	if err != nil {
		return nil, consts.WrapBizError(consts.CodeInternalError, err)
	}
	if !connected {
		return nil, consts.NewBizError(consts.CodeNotConnected)
	}

	msg := &model.Message{
		Id:            util.NextID(),
		SenderUuid:    senderUUID,
		RecipientUuid: recipientUUID,
		Content:       content,
		CreatedAt:     time.Now(),
	}
	if err := s.msgRepo.Create(ctx, msg); err != nil {
		return nil, consts.WrapBizError(consts.CodeMessageSendFail, err)
	}

	return toMessageItem(msg), nil
}

// History 查询当前用户与 peer 的会话历史
func (s *messageServiceImpl) History(ctx context.Context, peerUUID string) (*dto.ListMessagesResponse, error) {
	userUUID, err := UserUUIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if peerUUID == "" {
		return nil, consts.NewBizError(consts.CodeParamError)
	}

	messages, err := s.msgRepo.ListBetween(ctx, userUUID, peerUUID)
	if err != nil {
		return nil, consts.WrapBizError(consts.CodeInternalError, err)
	}

	items := make([]*dto.MessageItem, 0, len(messages))
	for _, m := range messages {
		items = append(items, toMessageItem(m))
	}
	return &dto.ListMessagesResponse{Messages: items}, nil
}

func toMessageItem(m *model.Message) *dto.MessageItem {
	return &dto.MessageItem{
		Id:        strconv.FormatInt(m.Id, 10),
		Sender:    m.SenderUuid,
		Recipient: m.RecipientUuid,
		Content:   m.Content,
		CreatedAt: m.CreatedAt.UnixMilli(),
	}
}
