package result

import (
	"net/http"

	"DevConnect/consts"

	"github.com/gin-gonic/gin"
)

// Response 统一响应结构体
type Response struct {
	Code    int32       `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
	TraceId string      `json:"trace_id"`
}

// httpStatus 根据业务错误码推导 HTTP 状态码。
// 响应体始终携带业务码，HTTP 状态码只用于粗分类（客户端可据此区分
// "重试" 与 "请求本身非法"）。
func httpStatus(code int32) int {
	switch code {
	case consts.CodeSuccess:
		return http.StatusOK
	case consts.CodeResourceNotFound, consts.CodeRequestNotFound, consts.CodeUserNotFound:
		return http.StatusNotFound
	case consts.CodeUnauthorized, consts.CodeInvalidToken, consts.CodeTokenExpired:
		return http.StatusUnauthorized
	case consts.CodeTooManyRequests:
		return http.StatusTooManyRequests
	case consts.CodeInternalError:
		return http.StatusInternalServerError
	case consts.CodeServiceUnavailable:
		return http.StatusServiceUnavailable
	}
	return http.StatusBadRequest
}

// Result 返回响应
func Result(c *gin.Context, data interface{}, message string, code int32) {
	traceId := c.GetString("trace_id")
	if message == "" {
		message = consts.GetMessage(code)
	}
	c.JSON(httpStatus(code), Response{
		Code:    code,
		Message: message,
		Data:    data,
		TraceId: traceId,
	})
}

// Success 返回成功响应
func Success(c *gin.Context, data interface{}) {
	Result(c, data, "", consts.CodeSuccess)
}

// Created 返回创建成功响应（201）
func Created(c *gin.Context, data interface{}) {
	traceId := c.GetString("trace_id")
	c.JSON(http.StatusCreated, Response{
		Code:    consts.CodeSuccess,
		Message: consts.GetMessage(consts.CodeSuccess),
		Data:    data,
		TraceId: traceId,
	})
}

// Fail 返回失败响应
func Fail(c *gin.Context, data interface{}, code int32) {
	Result(c, data, "", code)
}

// FailWithMessage 返回失败响应并自定义消息
func FailWithMessage(c *gin.Context, data interface{}, message string, code int32) {
	Result(c, data, message, code)
}
