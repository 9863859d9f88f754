package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/breathfree/quit_go_server/internal/model/dto"
	"github.com/breathfree/quit_go_server/internal/pkg/response"
	"github.com/breathfree/quit_go_server/internal/service"
)

type SubscriptionHandler struct {
	subService        *service.SubscriptionService
	membershipService *service.MembershipService
}

func NewSubscriptionHandler(subService *service.SubscriptionService, membershipService *service.MembershipService) *SubscriptionHandler {
	return &SubscriptionHandler{
		subService:        subService,
		membershipService: membershipService,
	}
}

// Status 当前订阅快照
// GET /api/v1/subscription/status
func (h *SubscriptionHandler) Status(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	status, err := h.subService.GetStatus(userID)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, status)
}

// History 订阅历史
// GET /api/v1/subscription/history
func (h *SubscriptionHandler) History(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	items, err := h.subService.History(userID)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, items)
}

// Cancel 取消当前订阅
// PUT /api/v1/subscription/cancel
func (h *SubscriptionHandler) Cancel(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	sub, err := h.subService.Cancel(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}

	response.SuccessWithMessage(c, "Đã hủy gói thành viên", sub)
}

// Memberships 公开的套餐列表
// GET /api/v1/memberships
func (h *SubscriptionHandler) Memberships(c *gin.Context) {
	items, err := h.membershipService.List(true)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, items)
}

// AdminMemberships 全部套餐（含下架）
// GET /api/v1/admin/memberships
func (h *SubscriptionHandler) AdminMemberships(c *gin.Context) {
	items, err := h.membershipService.List(false)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, items)
}

// CreateMembership 新建套餐
// POST /api/v1/admin/memberships
func (h *SubscriptionHandler) CreateMembership(c *gin.Context) {
	var req dto.MembershipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	m, err := h.membershipService.Create(&req)
	if err != nil {
		writeError(c, err)
		return
	}

	response.SuccessWithMessage(c, "Đã tạo gói thành viên", m)
}

// UpdateMembership 修改套餐
// PUT /api/v1/admin/memberships/:id
func (h *SubscriptionHandler) UpdateMembership(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dto.MembershipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	m, err := h.membershipService.Update(id, &req)
	if err != nil {
		writeError(c, err)
		return
	}

	response.SuccessWithMessage(c, "Đã cập nhật gói thành viên", m)
}

// DeleteMembership 删除套餐
// DELETE /api/v1/admin/memberships/:id
func (h *SubscriptionHandler) DeleteMembership(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.membershipService.Delete(id); err != nil {
		writeError(c, err)
		return
	}

	response.SuccessWithMessage(c, "Đã xóa gói thành viên", nil)
}
