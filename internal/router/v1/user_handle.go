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

// UserHandler 用户资料处理器
type UserHandler struct {
	userService service.UserService
}

// NewUserHandler 创建用户资料处理器
func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// GetProfile 查询当前用户资料接口
// @Summary 查询当前用户资料
// @Tags 用户接口
// @Produce json
// @Success 200 {object} dto.UserProfile
// @Router /api/v1/users/profile [get]
func (h *UserHandler) GetProfile(c *gin.Context) {
	ctx := middleware.NewContextWithGin(c)

	resp, err := h.userService.GetProfile(ctx)
	if err != nil {
		code := consts.ExtractErrorCode(err)
		if consts.IsNonServerError(code) {
			result.Fail(c, nil, code)
			return
		}

		logger.Error(ctx, "查询用户资料服务内部错误",
			logger.ErrorField("error", err),
		)
		result.Fail(c, nil, consts.CodeInternalError)
		return
	}

	result.Success(c, resp)
}

// UpdateSkills 更新技能标签接口
// @Summary 更新技能标签
// @Description 全量替换当前用户的技能标签列表
// @Tags 用户接口
// @Accept json
// @Produce json
// @Param request body dto.UpdateSkillsRequest true "更新技能请求"
// @Success 200 {object} dto.UserProfile
// @Router /api/v1/users/skills [put]
func (h *UserHandler) UpdateSkills(c *gin.Context) {
	ctx := middleware.NewContextWithGin(c)

	var req dto.UpdateSkillsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		result.Fail(c, nil, consts.CodeParamError)
		return
	}

	resp, err := h.userService.UpdateSkills(ctx, &req)
	if err != nil {
		code := consts.ExtractErrorCode(err)
		if consts.IsNonServerError(code) {
			result.Fail(c, nil, code)
			return
		}

		logger.Error(ctx, "更新技能标签服务内部错误",
			logger.ErrorField("error", err),
		)
		result.Fail(c, nil, consts.CodeInternalError)
		return
	}

	result.Success(c, resp)
}

// Search 按技能搜索用户接口
// @Summary 按技能搜索用户
// @Description 搜索携带指定技能标签的用户，结果不含邮箱
// @Tags 用户接口
// @Produce json
// @Param skill query string true "技能标签"
// @Success 200 {object} dto.SearchUsersResponse
// @Router /api/v1/users/search [get]
func (h *UserHandler) Search(c *gin.Context) {
	ctx := middleware.NewContextWithGin(c)

	resp, err := h.userService.SearchBySkill(ctx, c.Query("skill"))
	if err != nil {
		code := consts.ExtractErrorCode(err)
		if consts.IsNonServerError(code) {
			result.Fail(c, nil, code)
			return
		}

		logger.Error(ctx, "技能搜索服务内部错误",
			logger.ErrorField("error", err),
		)
		result.Fail(c, nil, consts.CodeInternalError)
		return
	}

	result.Success(c, resp)
}

// ListConnections 查询连接列表接口
// @Summary 查询连接列表
// @Description 查询当前用户的全部连接及其展示字段
// @Tags 用户接口
// @Produce json
// @Success 200 {object} dto.ListConnectionsResponse
// @Router /api/v1/users/connections [get]
func (h *UserHandler) ListConnections(c *gin.Context) {
	ctx := middleware.NewContextWithGin(c)

	resp, err := h.userService.ListConnections(ctx)
	if err != nil {
		code := consts.ExtractErrorCode(err)
		if consts.IsNonServerError(code) {
			result.Fail(c, nil, code)
			return
		}

		logger.Error(ctx, "查询连接列表服务内部错误",
			logger.ErrorField("error", err),
		)
		result.Fail(c, nil, consts.CodeInternalError)
		return
	}

	result.Success(c, resp)
}
