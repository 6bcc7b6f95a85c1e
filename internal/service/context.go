package service

import (
	"context"

	"DevConnect/consts"
)

// UserUUIDFromContext 从 ctx 中取出当前登录用户。
// user_uuid 由认证中间件（REST）或实时通道握手（WS）写入；
// 取不到说明调用链路未经认证，按未认证处理。
func UserUUIDFromContext(ctx context.Context) (string, error) {
	if uuid, ok := ctx.Value("user_uuid").(string); ok && uuid != "" {
		return uuid, nil
	}
	return "", consts.NewBizError(consts.CodeUnauthorized)
}
