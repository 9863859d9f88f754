package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/breathfree/quit_go_server/internal/api/middleware"
	"github.com/breathfree/quit_go_server/internal/model"
	"github.com/breathfree/quit_go_server/internal/model/dto"
	"github.com/breathfree/quit_go_server/internal/pkg/response"
	"github.com/breathfree/quit_go_server/internal/service"
)

type CoachHandler struct {
	coachService *service.CoachService
}

func NewCoachHandler(coachService *service.CoachService) *CoachHandler {
	return &CoachHandler{coachService: coachService}
}

// Chats 会员返回自己的会话（首次访问分配教练），教练返回负责的全部会话
// GET /api/v1/coach
func (h *CoachHandler) Chats(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	switch middleware.GetRole(c) {
	case model.RoleCoach:
		chats, err := h.coachService.CoachChats(userID)
		if err != nil {
			writeError(c, err)
			return
		}
		response.Success(c, chats)
	case model.RoleMember:
		chat, err := h.coachService.MemberChat(c.Request.Context(), userID)
		if err != nil {
			writeError(c, err)
			return
		}
		response.Success(c, chat)
	default:
		response.PermissionError(c, "")
	}
}

// Messages 会话消息
// GET /api/v1/coach/:id
func (h *CoachHandler) Messages(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	chatID, ok := pathID(c, "id")
	if !ok {
		return
	}

	detail, err := h.coachService.Messages(userID, chatID)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, detail)
}

// Send 发送消息，对方在线时经 websocket 推送
// POST /api/v1/coach/:id
func (h *CoachHandler) Send(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	chatID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dto.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	msg, err := h.coachService.Send(c.Request.Context(), userID, chatID, req.Message)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, msg)
}
