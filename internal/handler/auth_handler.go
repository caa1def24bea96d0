package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"warbler/internal/dto"
	"warbler/internal/middleware"
	"warbler/internal/service"
	log "warbler/pkg/logger"
	"warbler/pkg/response"
	"warbler/pkg/websession"
)

// ============================================================================
// Handler 结构体
// ============================================================================

// AuthHandler 注册、登录、登出
type AuthHandler struct {
	userService service.UserService
	store       *websession.Store
}

// NewAuthHandler 创建 AuthHandler 实例
func NewAuthHandler(userService service.UserService, store *websession.Store) *AuthHandler {
	return &AuthHandler{userService: userService, store: store}
}

// ============================================================================
// 请求结构体（同时支持表单和 JSON）
// ============================================================================

type SignupRequest struct {
	Username string `form:"username" json:"username" binding:"required"`
	Email    string `form:"email" json:"email" binding:"required"`
	Password string `form:"password" json:"password" binding:"required"`
	ImageURL string `form:"image_url" json:"image_url"`
}

type LoginRequest struct {
	Username string `form:"username" json:"username" binding:"required"`
	Password string `form:"password" json:"password" binding:"required"`
}

var signupFields = []formField{
	{Name: "username", Type: "text", Required: true},
	{Name: "email", Type: "email", Required: true},
	{Name: "password", Type: "password", Required: true},
	{Name: "image_url", Type: "url"},
}

var loginFields = []formField{
	{Name: "username", Type: "text", Required: true},
	{Name: "password", Type: "password", Required: true},
}

// ============================================================================
// Handler 方法
// ============================================================================

// SignupForm 注册页，已登录时跳回首页
func (h *AuthHandler) SignupForm(c *gin.Context) {
	if middleware.CurrentUser(c) != nil {
		response.Redirect(c, pathHome)
		return
	}
	response.Success(c, formDTO{Action: pathSignup, Fields: signupFields, Flashes: flashes(c, h.store)})
}

// Signup 注册成功后直接登录
func (h *AuthHandler) Signup(c *gin.Context) {
	if middleware.CurrentUser(c) != nil {
		response.Redirect(c, pathHome)
		return
	}

	var req SignupRequest
	if err := c.ShouldBind(&req); err != nil {
		log.Debug("注册参数错误", zap.Error(err))
		response.Error(c, response.CodeInvalidParams, "")
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	result, err := h.userService.Signup(ctx, &dto.SignupDTO{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		ImageURL: req.ImageURL,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	h.startSession(c, result)
	flash(c, h.store, websession.FlashSuccess, "Welcome to Warbler, "+result.Profile.Username+"!")
	response.Redirect(c, pathHome)
}

// LoginForm 登录页
func (h *AuthHandler) LoginForm(c *gin.Context) {
	response.Success(c, formDTO{Action: pathLogin, Fields: loginFields, Flashes: flashes(c, h.store)})
}

// Login 登录
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, response.CodeInvalidParams, "")
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	result, err := h.userService.Login(ctx, &dto.LoginDTO{Username: req.Username, Password: req.Password})
	if err != nil {
		writeError(c, err)
		return
	}

	h.startSession(c, result)
	flash(c, h.store, websession.FlashSuccess, "Hello, "+result.Profile.Username+"!")
	response.Redirect(c, pathHome)
}

// Logout 登出，跳转到登录页
func (h *AuthHandler) Logout(c *gin.Context) {
	if token := h.store.Token(c.Request); token != "" {
		ctx, cancel := requestContext(c)
		defer cancel()

		if err := h.userService.Logout(ctx, token); err != nil {
			log.Error("登出失败", zap.Error(err))
		}
	}

	if err := h.store.ClearToken(c.Writer, c.Request); err != nil {
		log.Warn("清除 token 失败", zap.Error(err))
	}
	flash(c, h.store, websession.FlashSuccess, "You have successfully logged out.")
	response.Redirect(c, pathLogin)
}

// startSession 把 token 写入 cookie
func (h *AuthHandler) startSession(c *gin.Context, result *dto.LoginResultDTO) {
	if err := h.store.SetToken(c.Writer, c.Request, result.Token); err != nil {
		log.Error("写入 cookie 失败", zap.Error(err), zap.Uint64("user_id", result.Profile.ID))
	}
	middleware.SetCurrentUser(c, result.Profile)
}
