package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/breathfree/quit_go_server/internal/model/dto"
	"github.com/breathfree/quit_go_server/internal/pkg/response"
	"github.com/breathfree/quit_go_server/internal/service"
)

type QuitPlanHandler struct {
	planService *service.QuitPlanService
}

func NewQuitPlanHandler(planService *service.QuitPlanService) *QuitPlanHandler {
	return &QuitPlanHandler{planService: planService}
}

// Suggest 根据吸烟状况和剩余订阅天数给出建议阶段
// GET /api/v1/quit-plans/suggestions
func (h *QuitPlanHandler) Suggest(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	suggestion, err := h.planService.Suggest(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, suggestion)
}

// Create 创建计划
// POST /api/v1/quit-plans
func (h *QuitPlanHandler) Create(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req dto.CreatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	plan, err := h.planService.Create(c.Request.Context(), userID, &req)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, plan)
}

// Current 当前进行中的计划
// GET /api/v1/quit-plans/current
func (h *QuitPlanHandler) Current(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	plan, err := h.planService.Current(userID)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, plan)
}

// Update 修改原因或阶段
// PUT /api/v1/quit-plans/:id
func (h *QuitPlanHandler) Update(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	planID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	plan, err := h.planService.Update(c.Request.Context(), userID, planID, &req)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, plan)
}

// Cancel 取消计划
// PUT /api/v1/quit-plans/:id/cancel
func (h *QuitPlanHandler) Cancel(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	planID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.planService.Cancel(userID, planID); err != nil {
		writeError(c, err)
		return
	}

	response.SuccessWithMessage(c, "Đã hủy kế hoạch", nil)
}

// History 历史计划
// GET /api/v1/quit-plans/history
func (h *QuitPlanHandler) History(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	plans, err := h.planService.History(userID)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, plans)
}
