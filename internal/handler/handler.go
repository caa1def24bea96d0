package handler

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"warbler/internal/dto"
	"warbler/internal/middleware"
	"warbler/internal/service"
	log "warbler/pkg/logger"
	"warbler/pkg/response"
	"warbler/pkg/websession"
)

// requestTimeout 单个请求访问数据库和 Redis 的超时时间
const requestTimeout = 3 * time.Second

// 页面跳转目标
const (
	pathHome   = "/"
	pathLogin  = "/login"
	pathSignup = "/signup"
)

func userPath(id uint64) string {
	return fmt.Sprintf("/users/%d", id)
}

func followingPath(id uint64) string {
	return fmt.Sprintf("/users/%d/following", id)
}

// requestContext 带超时的请求 context
func requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), requestTimeout)
}

// parseID 解析路径中的数字 ID，失败时直接返回 404
func parseID(c *gin.Context, name string, notFoundCode int) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		response.Error(c, notFoundCode, "")
		return 0, false
	}
	return id, true
}

// flash 写入一条提示，失败只记录日志
func flash(c *gin.Context, store *websession.Store, category, message string) {
	if err := store.AddFlash(c.Writer, c.Request, category, message); err != nil {
		log.Warn("写入 flash 失败", zap.Error(err))
	}
}

// flashes 取出待展示的提示
func flashes(c *gin.Context, store *websession.Store) []websession.Flash {
	items, err := store.Flashes(c.Writer, c.Request)
	if err != nil {
		log.Warn("读取 flash 失败", zap.Error(err))
	}
	return items
}

// currentUser 经过 RequireLogin 的路由一定有当前用户
func currentUser(c *gin.Context) *dto.UserProfileDTO {
	return middleware.CurrentUser(c)
}

// writeError 把业务错误映射为响应码
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUserExists):
		response.Error(c, response.CodeUserExists, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		response.Error(c, response.CodeInvalidCredentials, err.Error())
	case errors.Is(err, service.ErrLoginLimitExceeded):
		response.Error(c, response.CodeLoginLimitExceeded, err.Error())
	case errors.Is(err, service.ErrUserNotFound):
		response.Error(c, response.CodeUserNotFound, err.Error())
	case errors.Is(err, service.ErrMessageNotFound):
		response.Error(c, response.CodeMessageNotFound, err.Error())
	case errors.Is(err, service.ErrSelfFollow):
		response.Error(c, response.CodeSelfFollow, err.Error())
	case errors.Is(err, service.ErrWrongPassword):
		response.Error(c, response.CodeWrongPassword, err.Error())
	case errors.Is(err, service.ErrForbidden):
		response.Error(c, response.CodeForbidden, err.Error())
	case errors.Is(err, dto.ErrMessageTooLong):
		response.Error(c, response.CodeMessageTooLong, err.Error())
	case dto.IsValidationError(err):
		response.Error(c, response.CodeInvalidParams, err.Error())
	default:
		log.Error("请求处理失败", zap.Error(err), zap.String("path", c.Request.URL.Path))
		_ = c.Error(err)
		response.Error(c, response.CodeInternalServerError, "")
	}
}

// formField 表单字段说明，替代页面模板中的表单
type formField struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Required bool   `json:"required"`
	Value    string `json:"value,omitempty"`
}

// formDTO 表单页面返回的数据
type formDTO struct {
	Action  string             `json:"action"`
	Fields  []formField        `json:"fields"`
	Flashes []websession.Flash `json:"flashes"`
}
