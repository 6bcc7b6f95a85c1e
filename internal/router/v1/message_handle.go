package v1

import (
	"DevConnect/consts"
	"DevConnect/internal/dto"
	"DevConnect/internal/middleware"
	"DevConnect/internal/service"
	"DevConnect/pkg/logger"
	"DevConnect/pkg/result"

	"github.com/gin-gonic/gin"
)

// MessageHandler 消息处理器
type MessageHandler struct {
	messageService service.MessageService
}

// NewMessageHandler 创建消息处理器
func NewMessageHandler(messageService service.MessageService) *MessageHandler {
	return &MessageHandler{
		messageService: messageService,
	}
}

// Send 发送消息接口。
// 与实时通道共用同一条落库路径，存储形态完全一致。
// @Summary 发送消息
// @Description 向已连接的用户发送一条消息
// @Tags 消息接口
// @Accept json
// @Produce json
// @Param request body dto.SendMessageRequest true "发送消息请求"
// @Success 201 {object} dto.MessageItem
// @Router /api/v1/messages [post]
func (h *MessageHandler) Send(c *gin.Context) {
	ctx := middleware.NewContextWithGin(c)

	var req dto.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		result.Fail(c, nil, consts.CodeParamError)
		return
	}

	senderUUID, ok := middleware.GetUserUUID(c)
	if !ok {
		result.Fail(c, nil, consts.CodeUnauthorized)
		return
	}

	msg, err := h.messageService.Record(ctx, senderUUID, req.Recipient, req.Content)
	if err != nil {
		code := consts.ExtractErrorCode(err)
		if consts.IsNonServerError(code) {
			result.Fail(c, nil, code)
			return
		}

		logger.Error(ctx, "发送消息服务内部错误",
			logger.ErrorField("error", err),
		)
		result.Fail(c, nil, consts.CodeInternalError)
		return
	}

	result.Created(c, msg)
}

// History 查询会话历史接口
// @Summary 查询会话历史
// @Description 查询当前用户与指定用户的消息历史，按时间升序
// @Tags 消息接口
// @Produce json
// @Param recipientId path string true "对端用户 UUID"
// @Success 200 {object} dto.ListMessagesResponse
// @Router /api/v1/messages/{recipientId} [get]
func (h *MessageHandler) History(c *gin.Context) {
	ctx := middleware.NewContextWithGin(c)

	peerUUID := c.Param("recipientId")
	if peerUUID == "" {
		result.Fail(c, nil, consts.CodeParamError)
		return
	}

	resp, err := h.messageService.History(ctx, peerUUID)
	if err != nil {
		code := consts.ExtractErrorCode(err)
		if consts.IsNonServerError(code) {
			result.Fail(c, nil, code)
			return
		}

		logger.Error(ctx, "查询会话历史服务内部错误",
			logger.String("peer_uuid", peerUUID),
			logger.ErrorField("error", err),
		)
		result.Fail(c, nil, consts.CodeInternalError)
		return
	}

	result.Success(c, resp)
}
