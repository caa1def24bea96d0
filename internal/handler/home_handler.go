package handler

import (
	"github.com/gin-gonic/gin"

	"warbler/internal/dto"
	"warbler/internal/middleware"
	"warbler/internal/service"
	"warbler/pkg/response"
	"warbler/pkg/websession"
)

// HomeHandler 首页
type HomeHandler struct {
	userService service.UserService
	store       *websession.Store
}

// NewHomeHandler 创建 HomeHandler 实例
func NewHomeHandler(userService service.UserService, store *websession.Store) *HomeHandler {
	return &HomeHandler{userService: userService, store: store}
}

// homePage 未登录时 HomeDTO 为 nil，只输出 flashes
type homePage struct {
	*dto.HomeDTO
	Flashes []websession.Flash `json:"flashes"`
}

// Index 未登录只返回提示；登录后返回个人概况和时间线
func (h *HomeHandler) Index(c *gin.Context) {
	items := flashes(c, h.store)

	user := middleware.CurrentUser(c)
	if user == nil {
		response.Success(c, homePage{Flashes: items})
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	home, err := h.userService.Home(ctx, user.ID)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, homePage{HomeDTO: home, Flashes: items})
}
