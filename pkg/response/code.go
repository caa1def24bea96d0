package response

// 业务错误码定义
const (
	// 成功
	CodeSuccess = 0

	// 客户端错误 (400xx)
	CodeBadRequest         = 40000 // 请求参数错误
	CodeInvalidParams      = 40001 // 参数验证失败
	CodeMessageTooLong     = 40002 // 消息超过140字
	CodeLoginLimitExceeded = 40003 // 登录失败次数过多

	// 认证错误 (401xx)
	CodeUnauthorized       = 40100 // 未登录
	CodeInvalidCredentials = 40103 // 用户名或密码错误

	// 权限错误 (403xx)
	CodeForbidden     = 40300 // 无权限
	CodeSelfFollow    = 40301 // 不能关注自己
	CodeWrongPassword = 40302 // 修改资料时密码错误

	// 资源错误 (404xx)
	CodeNotFound        = 40400 // 资源不存在
	CodeUserNotFound    = 40401 // 用户不存在
	CodeMessageNotFound = 40402 // 消息不存在

	// 冲突 (409xx)
	CodeConflict   = 40900 // 资源冲突
	CodeUserExists = 40901 // 用户名或邮箱已存在

	// 服务端错误 (500xx)
	CodeInternalServerError = 50000 // 服务器内部错误
	CodeDatabaseError       = 50001 // 数据库错误
	CodeRedisError          = 50003 // Redis错误
)

// CodeMessage 错误码默认提示，面向最终用户，使用英文
var CodeMessage = map[int]string{
	CodeSuccess: "OK",

	CodeBadRequest:         "Bad request.",
	CodeInvalidParams:      "Invalid form data.",
	CodeMessageTooLong:     "Messages are limited to 140 characters.",
	CodeLoginLimitExceeded: "Too many failed logins, please try again later.",

	CodeUnauthorized:       "Access unauthorized.",
	CodeInvalidCredentials: "Invalid credentials.",

	CodeForbidden:     "Access unauthorized.",
	CodeSelfFollow:    "You cannot follow yourself.",
	CodeWrongPassword: "Wrong password, please try again.",

	CodeNotFound:        "Not found.",
	CodeUserNotFound:    "User not found.",
	CodeMessageNotFound: "Message not found.",

	CodeConflict:   "Conflict.",
	CodeUserExists: "Username already taken",

	CodeInternalServerError: "Internal server error.",
	CodeDatabaseError:       "Database error.",
	CodeRedisError:          "Session store error.",
}

// GetMessage 获取错误码对应的消息
func GetMessage(code int) string {
	if msg, ok := CodeMessage[code]; ok {
		return msg
	}
	return "Unknown error."
}
