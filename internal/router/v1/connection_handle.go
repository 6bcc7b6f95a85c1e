package v1

import (
	"context"

	"DevConnect/consts"
	"DevConnect/internal/dto"
	"DevConnect/internal/middleware"
	"DevConnect/internal/service"
	"DevConnect/pkg/logger"
	"DevConnect/pkg/result"

	"github.com/gin-gonic/gin"
)

// ConnectionHandler 连接请求处理器
type ConnectionHandler struct {
	connectionService service.ConnectionService
}

// NewConnectionHandler 创建连接请求处理器
func NewConnectionHandler(connectionService service.ConnectionService) *ConnectionHandler {
	return &ConnectionHandler{
		connectionService: connectionService,
	}
}

// Send 发起连接请求接口
// @Summary 发起连接请求
// @Description 向指定用户发起连接请求，不允许自连与重复请求
// @Tags 连接接口
// @Accept json
// @Produce json
// @Param request body dto.SendConnectionRequest true "发起连接请求"
// @Success 201 {object} dto.SendConnectionResponse
// @Router /api/v1/connections/send [post]
func (h *ConnectionHandler) Send(c *gin.Context) {
	ctx := middleware.NewContextWithGin(c)

	var req dto.SendConnectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		result.Fail(c, nil, consts.CodeParamError)
		return
	}

	resp, err := h.connectionService.Send(ctx, &req)
	if err != nil {
		code := consts.ExtractErrorCode(err)
		if consts.IsNonServerError(code) {
			result.Fail(c, nil, code)
			return
		}

		logger.Error(ctx, "发起连接请求服务内部错误",
			logger.ErrorField("error", err),
		)
		result.Fail(c, nil, consts.CodeInternalError)
		return
	}

	result.Created(c, resp)
}

// Accept 接受连接请求接口
// @Summary 接受连接请求
// @Description 接收方接受一条待处理的连接请求，双方成为连接
// @Tags 连接接口
// @Accept json
// @Produce json
// @Param request body dto.ActionConnectionRequest true "接受连接请求"
// @Success 200 {object} nil
// @Router /api/v1/connections/accept [put]
func (h *ConnectionHandler) Accept(c *gin.Context) {
	h.action(c, h.connectionService.Accept, "接受连接请求服务内部错误")
}

// Reject 拒绝连接请求接口
// @Summary 拒绝连接请求
// @Description 接收方拒绝一条待处理的连接请求，请求进入 declined 终态
// @Tags 连接接口
// @Accept json
// @Produce json
// @Param request body dto.ActionConnectionRequest true "拒绝连接请求"
// @Success 200 {object} nil
// @Router /api/v1/connections/reject [put]
func (h *ConnectionHandler) Reject(c *gin.Context) {
	h.action(c, h.connectionService.Decline, "拒绝连接请求服务内部错误")
}

// ListPending 查询待处理连接请求接口
// @Summary 查询待处理连接请求
// @Description 查询发给当前用户的 pending 连接请求列表
// @Tags 连接接口
// @Produce json
// @Success 200 {object} dto.ListPendingResponse
// @Router /api/v1/connections/requests [get]
func (h *ConnectionHandler) ListPending(c *gin.Context) {
	ctx := middleware.NewContextWithGin(c)

	resp, err := h.connectionService.ListPending(ctx)
	if err != nil {
		code := consts.ExtractErrorCode(err)
		if consts.IsNonServerError(code) {
			result.Fail(c, nil, code)
			return
		}

		logger.Error(ctx, "查询待处理连接请求服务内部错误",
			logger.ErrorField("error", err),
		)
		result.Fail(c, nil, consts.CodeInternalError)
		return
	}

	result.Success(c, resp)
}

// action Accept/Reject 的公共流程：绑定参数、调用服务、映射错误
func (h *ConnectionHandler) action(c *gin.Context, fn func(ctx context.Context, req *dto.ActionConnectionRequest) error, errMsg string) {
	ctx := middleware.NewContextWithGin(c)

	var req dto.ActionConnectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		result.Fail(c, nil, consts.CodeParamError)
		return
	}

	if err := fn(ctx, &req); err != nil {
		code := consts.ExtractErrorCode(err)
		if consts.IsNonServerError(code) {
			result.Fail(c, nil, code)
			return
		}

		logger.Error(ctx, errMsg,
			logger.Int64("request_id", req.RequestId),
			logger.ErrorField("error", err),
		)
		result.Fail(c, nil, consts.CodeInternalError)
		return
	}

	result.Success(c, nil)
}
