package middleware

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"warbler/internal/dto"
	"warbler/internal/service"
	log "warbler/pkg/logger"
	"warbler/pkg/response"
	"warbler/pkg/websession"
)

const currentUserKey = "current_user"

// UnauthorizedMessage 未登录访问受保护页面时的提示
const UnauthorizedMessage = "Access unauthorized."

// UserResolver 根据 Session token 找到当前用户
type UserResolver interface {
	CurrentUser(ctx context.Context, token string) (*dto.UserProfileDTO, error)
}

// LoadUser 每个请求都执行：把 cookie 中的 token 解析成当前用户放进 context
//
// token 无效（过期、用户已删除）时清掉 cookie 中的 token，请求按未登录处理。
// Redis 等故障时同样按未登录处理，但保留 token。
func LoadUser(store *websession.Store, users UserResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := store.Token(c.Request)
		if token == "" {
			c.Next()
			return
		}

		user, err := users.CurrentUser(c.Request.Context(), token)
		switch {
		case err == nil:
			c.Set(currentUserKey, user)
		case errors.Is(err, service.ErrInvalidSession):
			if clearErr := store.ClearToken(c.Writer, c.Request); clearErr != nil {
				log.Warn("清除失效 token 失败", zap.Error(clearErr))
			}
		default:
			log.Error("解析当前用户失败", zap.Error(err))
		}

		c.Next()
	}
}

// RequireLogin 未登录时提示并跳转首页，不执行后续 handler
func RequireLogin(store *websession.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUser(c) != nil {
			c.Next()
			return
		}

		log.Debug("未登录访问受保护页面", zap.String("path", c.Request.URL.Path))
		if err := store.AddFlash(c.Writer, c.Request, websession.FlashDanger, UnauthorizedMessage); err != nil {
			log.Warn("写入 flash 失败", zap.Error(err))
		}
		response.Redirect(c, "/")
	}
}

// CurrentUser 当前登录用户，未登录返回 nil
func CurrentUser(c *gin.Context) *dto.UserProfileDTO {
	v, ok := c.Get(currentUserKey)
	if !ok {
		return nil
	}
	user, _ := v.(*dto.UserProfileDTO)
	return user
}

// SetCurrentUser 登录、注册成功后在本次请求内切换为已登录状态
func SetCurrentUser(c *gin.Context, user *dto.UserProfileDTO) {
	c.Set(currentUserKey, user)
}
