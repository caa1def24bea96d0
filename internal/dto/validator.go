package dto

import (
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"warbler/internal/model"
)

var validate = validator.New()

// ============================================================================
// 验证错误
// ============================================================================

var (
	ErrUsernameEmpty    = errors.New("Username is required.")
	ErrUsernameTooLong  = errors.New("Username must be at most 50 characters.")
	ErrUsernameInvalid  = errors.New("Username must not contain spaces.")
	ErrEmailInvalid     = errors.New("Invalid email address.")
	ErrPasswordEmpty    = errors.New("Password is required.")
	ErrPasswordTooShort = errors.New("Password must be at least 6 characters.")
	ErrPasswordTooLong  = errors.New("Password must be at most 72 bytes.")
	ErrMessageEmpty     = errors.New("Message text is required.")
	ErrMessageTooLong   = errors.New("Messages are limited to 140 characters.")
	ErrUserIDInvalid    = errors.New("Invalid user id.")
)

var validationErrors = []error{
	ErrUsernameEmpty,
	ErrUsernameTooLong,
	ErrUsernameInvalid,
	ErrEmailInvalid,
	ErrPasswordEmpty,
	ErrPasswordTooShort,
	ErrPasswordTooLong,
	ErrMessageEmpty,
	ErrMessageTooLong,
	ErrUserIDInvalid,
}

// IsValidationError 是否为表单校验错误（可以直接展示给用户）
func IsValidationError(err error) bool {
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

const (
	maxUsernameLength = 50
	minPasswordLength = 6
	// bcrypt 只接受 72 字节以内的密码
	maxPasswordBytes = 72
)

func validateUsername(username string) error {
	if username == "" {
		return ErrUsernameEmpty
	}
	if utf8.RuneCountInString(username) > maxUsernameLength {
		return ErrUsernameTooLong
	}
	if strings.ContainsAny(username, " \t\r\n") {
		return ErrUsernameInvalid
	}
	return nil
}

func validateEmail(email string) error {
	if err := validate.Var(email, "required,email,max=254"); err != nil {
		return ErrEmailInvalid
	}
	return nil
}

// ============================================================================
// 各 DTO 的 Validate
// ============================================================================

// Validate 注册：用户名、邮箱必填，密码 6 个字符到 72 字节
func (d *SignupDTO) Validate() error {
	d.Username = strings.TrimSpace(d.Username)
	d.Email = strings.TrimSpace(d.Email)

	if err := validateUsername(d.Username); err != nil {
		return err
	}
	if err := validateEmail(d.Email); err != nil {
		return err
	}
	if d.Password == "" {
		return ErrPasswordEmpty
	}
	if utf8.RuneCountInString(d.Password) < minPasswordLength {
		return ErrPasswordTooShort
	}
	if len(d.Password) > maxPasswordBytes {
		return ErrPasswordTooLong
	}
	return nil
}

// Validate 登录只检查非空，其余错误统一为用户名或密码错误
func (d *LoginDTO) Validate() error {
	if d.Username == "" {
		return ErrUsernameEmpty
	}
	if d.Password == "" {
		return ErrPasswordEmpty
	}
	return nil
}

// Validate 修改资料
func (d *UpdateProfileDTO) Validate() error {
	if d.UserID == 0 {
		return ErrUserIDInvalid
	}
	d.Username = strings.TrimSpace(d.Username)
	d.Email = strings.TrimSpace(d.Email)

	if err := validateUsername(d.Username); err != nil {
		return err
	}
	if err := validateEmail(d.Email); err != nil {
		return err
	}
	if d.Password == "" {
		return ErrPasswordEmpty
	}
	return nil
}

// Validate 发布消息：1-140 个字符（按 Unicode 字符计）
func (d *NewMessageDTO) Validate() error {
	if d.UserID == 0 {
		return ErrUserIDInvalid
	}
	if strings.TrimSpace(d.Text) == "" {
		return ErrMessageEmpty
	}
	if utf8.RuneCountInString(d.Text) > model.MaxMessageLength {
		return ErrMessageTooLong
	}
	return nil
}
