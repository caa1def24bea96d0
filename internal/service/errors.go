package service

import "errors"

// ============================================================================
// 业务错误定义（消息直接展示给用户）
// ============================================================================

var (
	ErrInvalidCredentials  = errors.New("Invalid credentials.")
	ErrLoginLimitExceeded  = errors.New("Too many failed logins, please try again later.")
	ErrUserExists          = errors.New("Username already taken")
	ErrUserNotFound        = errors.New("User not found.")
	ErrWrongPassword       = errors.New("Wrong password, please try again.")
	ErrInvalidSession      = errors.New("Session expired or invalid.")
	ErrMessageNotFound     = errors.New("Message not found.")
	ErrForbidden           = errors.New("Access unauthorized.")
	ErrSelfFollow          = errors.New("You cannot follow yourself.")
	ErrPasswordHashFailed  = errors.New("Failed to hash password.")
	ErrSessionCreateFailed = errors.New("Failed to create session.")
)

const (
	// TimelineLimit 首页时间线条数
	TimelineLimit = 100
	// UserMessagesLimit 用户主页消息条数
	UserMessagesLimit = 100
)
