package consts

import (
	"errors"
	"fmt"
)

// BizError 携带业务错误码的错误。
// 服务层返回 BizError，处理器层通过 ExtractErrorCode 提取错误码并映射响应；
// 非 BizError 一律视为服务器内部错误。
type BizError struct {
	Code int32
	Err  error // 可选的底层错误，仅用于日志
}

func (e *BizError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", GetMessage(e.Code), e.Err)
	}
	return GetMessage(e.Code)
}

func (e *BizError) Unwrap() error {
	return e.Err
}

// NewBizError 创建业务错误。
func NewBizError(code int32) *BizError {
	return &BizError{Code: code}
}

// WrapBizError 创建携带底层错误的业务错误。
func WrapBizError(code int32, err error) *BizError {
	return &BizError{Code: code, Err: err}
}

// ExtractErrorCode 提取业务错误码。
// err 为 nil 返回 CodeSuccess，非 BizError 返回 CodeInternalError。
func ExtractErrorCode(err error) int32 {
	if err == nil {
		return CodeSuccess
	}
	var bizErr *BizError
	if errors.As(err, &bizErr) {
		return bizErr.Code
	}
	return CodeInternalError
}
