package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"warbler/internal/dto"
	"warbler/internal/middleware"
	"warbler/internal/service"
	log "warbler/pkg/logger"
	"warbler/pkg/response"
	"warbler/pkg/websession"
)

// UserHandler 用户目录、主页、关注关系、资料修改和注销
type UserHandler struct {
	userService   service.UserService
	followService service.FollowService
	store         *websession.Store
}

// NewUserHandler 创建 UserHandler 实例
func NewUserHandler(userService service.UserService, followService service.FollowService, store *websession.Store) *UserHandler {
	return &UserHandler{userService: userService, followService: followService, store: store}
}

type UpdateProfileRequest struct {
	Username       string `form:"username" json:"username" binding:"required"`
	Email          string `form:"email" json:"email" binding:"required"`
	ImageURL       string `form:"image_url" json:"image_url"`
	HeaderImageURL string `form:"header_image_url" json:"header_image_url"`
	Bio            string `form:"bio" json:"bio"`
	Location       string `form:"location" json:"location"`
	Password       string `form:"password" json:"password" binding:"required"`
}

type userListPage struct {
	Query   string                `json:"q"`
	Users   []*dto.UserProfileDTO `json:"users"`
	Flashes []websession.Flash    `json:"flashes"`
}

type userDetailPage struct {
	*dto.UserDetailDTO
	Flashes []websession.Flash `json:"flashes"`
}

type followListPage struct {
	*dto.FollowListDTO
	Flashes []websession.Flash `json:"flashes"`
}

// ============================================================================
// 公开页面
// ============================================================================

// List 用户目录，?q= 按用户名模糊搜索
func (h *UserHandler) List(c *gin.Context) {
	query := c.Query("q")

	ctx, cancel := requestContext(c)
	defer cancel()

	users, err := h.userService.Search(ctx, query)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, userListPage{Query: query, Users: users, Flashes: flashes(c, h.store)})
}

// Show 用户主页
func (h *UserHandler) Show(c *gin.Context) {
	userID, ok := parseID(c, "id", response.CodeUserNotFound)
	if !ok {
		return
	}

	var viewerID uint64
	if viewer := middleware.CurrentUser(c); viewer != nil {
		viewerID = viewer.ID
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	detail, err := h.userService.GetUserDetail(ctx, userID, viewerID)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, userDetailPage{UserDetailDTO: detail, Flashes: flashes(c, h.store)})
}

// ============================================================================
// 需要登录
// ============================================================================

// Following 该用户关注的人
func (h *UserHandler) Following(c *gin.Context) {
	userID, ok := parseID(c, "id", response.CodeUserNotFound)
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	list, err := h.followService.Following(ctx, userID)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, followListPage{FollowListDTO: list, Flashes: flashes(c, h.store)})
}

// Followers 关注该用户的人
func (h *UserHandler) Followers(c *gin.Context) {
	userID, ok := parseID(c, "id", response.CodeUserNotFound)
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	list, err := h.followService.Followers(ctx, userID)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, followListPage{FollowListDTO: list, Flashes: flashes(c, h.store)})
}

// Follow 关注，完成后跳到自己的关注列表
func (h *UserHandler) Follow(c *gin.Context) {
	followedID, ok := parseID(c, "id", response.CodeUserNotFound)
	if !ok {
		return
	}
	me := currentUser(c)

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.followService.Follow(ctx, me.ID, followedID); err != nil {
		if errors.Is(err, service.ErrSelfFollow) {
			flash(c, h.store, websession.FlashDanger, err.Error())
			response.Redirect(c, followingPath(me.ID))
			return
		}
		writeError(c, err)
		return
	}
	response.Redirect(c, followingPath(me.ID))
}

// StopFollowing 取消关注
func (h *UserHandler) StopFollowing(c *gin.Context) {
	followedID, ok := parseID(c, "id", response.CodeUserNotFound)
	if !ok {
		return
	}
	me := currentUser(c)

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.followService.Unfollow(ctx, me.ID, followedID); err != nil {
		writeError(c, err)
		return
	}
	response.Redirect(c, followingPath(me.ID))
}

// ProfileForm 当前用户的可编辑资料
func (h *UserHandler) ProfileForm(c *gin.Context) {
	me := currentUser(c)

	ctx, cancel := requestContext(c)
	defer cancel()

	user, err := h.userService.GetUser(ctx, me.ID)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, gin.H{
		"user": user,
		"form": formDTO{
			Action: "/users/profile",
			Fields: []formField{
				{Name: "username", Type: "text", Required: true, Value: user.Username},
				{Name: "email", Type: "email", Required: true, Value: user.Email},
				{Name: "image_url", Type: "url", Value: user.ImageURL},
				{Name: "header_image_url", Type: "url", Value: user.HeaderImageURL},
				{Name: "bio", Type: "textarea", Value: user.Bio},
				{Name: "location", Type: "text", Value: user.Location},
				{Name: "password", Type: "password", Required: true},
			},
			Flashes: flashes(c, h.store),
		},
	})
}

// UpdateProfile 修改资料，需要输入当前密码
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	me := currentUser(c)

	var req UpdateProfileRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, response.CodeInvalidParams, "")
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	_, err := h.userService.UpdateProfile(ctx, &dto.UpdateProfileDTO{
		UserID:         me.ID,
		Username:       req.Username,
		Email:          req.Email,
		ImageURL:       req.ImageURL,
		HeaderImageURL: req.HeaderImageURL,
		Bio:            req.Bio,
		Location:       req.Location,
		Password:       req.Password,
	})
	if err != nil {
		if errors.Is(err, service.ErrWrongPassword) {
			flash(c, h.store, websession.FlashDanger, err.Error())
			response.Redirect(c, pathHome)
			return
		}
		writeError(c, err)
		return
	}

	response.Redirect(c, userPath(me.ID))
}

// Delete 注销账号：登出并删除用户及其全部数据
func (h *UserHandler) Delete(c *gin.Context) {
	me := currentUser(c)
	token := h.store.Token(c.Request)

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.userService.DeleteUser(ctx, me.ID, token); err != nil {
		writeError(c, err)
		return
	}

	if err := h.store.ClearToken(c.Writer, c.Request); err != nil {
		log.Warn("清除 token 失败", zap.Error(err))
	}
	response.Redirect(c, pathSignup)
}
