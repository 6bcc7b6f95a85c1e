package consts

// 通用错误码
const (
	CodeSuccess int32 = 0 // 成功
)

// 客户端错误 (1xxxx)
const (
	CodeParamError       int32 = 10001 // 参数验证失败
	CodeBodyError        int32 = 10002 // 请求体格式错误
	CodeResourceNotFound int32 = 10003 // 资源不存在
	CodeTooManyRequests  int32 = 10005 // 请求过于频繁
)

// 认证错误 (2xxxx)
const (
	CodeUnauthorized int32 = 20001 // 未认证
	CodeInvalidToken int32 = 20002 // Token 无效
	CodeTokenExpired int32 = 20003 // Token 已过期
)

// 用户模块错误 (11xxx)
const (
	CodeUserNotFound int32 = 11001 // 用户不存在
	CodeSkillEmpty   int32 = 11002 // 技能参数为空
)

// 连接模块错误 (12xxx)
const (
	CodeSelfConnection   int32 = 12001 // 不能向自己发起连接
	CodeConnectionExists int32 = 12002 // 连接请求已存在或已是连接
	CodeRequestNotFound  int32 = 12003 // 连接请求不存在
	CodeRequestActioned  int32 = 12004 // 连接请求已被处理
	CodeNotConnected     int32 = 12005 // 双方尚未建立连接
)

// 消息模块错误 (13xxx)
const (
	CodeMessageEmpty    int32 = 13001 // 消息内容为空
	CodeMessageTooLong  int32 = 13002 // 消息内容过长
	CodeMessageSendFail int32 = 13003 // 消息发送失败
	CodeSelfMessage     int32 = 13004 // 不能给自己发消息
)

// 服务端错误 (3xxxx)
const (
	CodeInternalError      int32 = 30001 // 服务器内部错误
	CodeServiceUnavailable int32 = 30002 // 服务暂不可用
)

// 错误消息映射
var CodeMessage = map[int32]string{
	CodeSuccess: "success",

	// 客户端错误
	CodeParamError:       "参数验证失败",
	CodeBodyError:        "请求体格式错误",
	CodeResourceNotFound: "资源不存在",
	CodeTooManyRequests:  "请求过于频繁",

	// 认证错误
	CodeUnauthorized: "未认证",
	CodeInvalidToken: "Token 无效",
	CodeTokenExpired: "Token 已过期",

	// 用户模块
	CodeUserNotFound: "用户不存在",
	CodeSkillEmpty:   "技能参数为空",

	// 连接模块
	CodeSelfConnection:   "不能向自己发起连接",
	CodeConnectionExists: "连接请求已存在或已是连接",
	CodeRequestNotFound:  "连接请求不存在",
	CodeRequestActioned:  "连接请求已被处理",
	CodeNotConnected:     "双方尚未建立连接",

	// 消息模块
	CodeMessageEmpty:    "消息内容为空",
	CodeMessageTooLong:  "消息内容过长",
	CodeMessageSendFail: "消息发送失败",
	CodeSelfMessage:     "不能给自己发消息",

	// 服务端错误
	CodeInternalError:      "服务器内部错误",
	CodeServiceUnavailable: "服务暂不可用",
}

// GetMessage 根据错误码获取错误消息
func GetMessage(code int32) string {
	if msg, ok := CodeMessage[code]; ok {
		return msg
	}
	return "未知错误"
}

// IsNonServerError 判断是否为业务错误（非 3xxxx 服务端错误）。
// 业务错误直接回给客户端，不记录 Error 级别日志。
func IsNonServerError(code int32) bool {
	return code > 0 && code < CodeInternalError
}
