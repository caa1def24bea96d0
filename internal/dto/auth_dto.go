package dto

// ============================================================================
// 注册 / 登录 DTO
// ============================================================================

// SignupDTO 注册请求
type SignupDTO struct {
	Username string
	Email    string
	Password string // 明文密码，只在 service 层做哈希
	ImageURL string // 可选，为空时使用默认头像
}

// LoginDTO 登录请求
type LoginDTO struct {
	Username string
	Password string
}

// LoginResultDTO 登录结果
type LoginResultDTO struct {
	Token   string
	Profile *UserProfileDTO
}
