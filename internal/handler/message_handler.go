package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"warbler/internal/dto"
	"warbler/internal/middleware"
	"warbler/internal/service"
	"warbler/pkg/response"
	"warbler/pkg/websession"
)

// MessageHandler 消息的发布、查看和删除
type MessageHandler struct {
	messageService service.MessageService
	store          *websession.Store
}

// NewMessageHandler 创建 MessageHandler 实例
func NewMessageHandler(messageService service.MessageService, store *websession.Store) *MessageHandler {
	return &MessageHandler{messageService: messageService, store: store}
}

// 文本长度交给 dto 校验，这里不加 binding 规则
type NewMessageRequest struct {
	Text string `form:"text" json:"text"`
}

type messagePage struct {
	Message *dto.MessageDTO    `json:"message"`
	Flashes []websession.Flash `json:"flashes"`
}

// NewForm 发布消息表单
func (h *MessageHandler) NewForm(c *gin.Context) {
	response.Success(c, formDTO{
		Action:  "/messages/new",
		Fields:  []formField{{Name: "text", Type: "textarea", Required: true}},
		Flashes: flashes(c, h.store),
	})
}

// Create 发布后跳到自己的主页
func (h *MessageHandler) Create(c *gin.Context) {
	me := currentUser(c)

	var req NewMessageRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, response.CodeInvalidParams, "")
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if _, err := h.messageService.Create(ctx, &dto.NewMessageDTO{UserID: me.ID, Text: req.Text}); err != nil {
		writeError(c, err)
		return
	}
	response.Redirect(c, userPath(me.ID))
}

// Show 单条消息
func (h *MessageHandler) Show(c *gin.Context) {
	messageID, ok := parseID(c, "id", response.CodeMessageNotFound)
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	message, err := h.messageService.Get(ctx, messageID)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, messagePage{Message: message, Flashes: flashes(c, h.store)})
}

// Delete 只有作者可以删除，否则提示无权限并跳回首页
func (h *MessageHandler) Delete(c *gin.Context) {
	messageID, ok := parseID(c, "id", response.CodeMessageNotFound)
	if !ok {
		return
	}
	me := currentUser(c)

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.messageService.Delete(ctx, me.ID, messageID); err != nil {
		if errors.Is(err, service.ErrForbidden) {
			flash(c, h.store, websession.FlashDanger, middleware.UnauthorizedMessage)
			response.Redirect(c, pathHome)
			return
		}
		writeError(c, err)
		return
	}
	response.Redirect(c, userPath(me.ID))
}
