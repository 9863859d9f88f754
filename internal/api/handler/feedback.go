package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/breathfree/quit_go_server/internal/model/dto"
	"github.com/breathfree/quit_go_server/internal/pkg/response"
	"github.com/breathfree/quit_go_server/internal/service"
)

type FeedbackHandler struct {
	feedbackService *service.FeedbackService
}

func NewFeedbackHandler(feedbackService *service.FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{feedbackService: feedbackService}
}

// Submit 提交反馈
// POST /api/v1/feedback
func (h *FeedbackHandler) Submit(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req dto.FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	info, err := h.feedbackService.Submit(userID, &req)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, info)
}

// Rate 提交评分
// POST /api/v1/ratings
func (h *FeedbackHandler) Rate(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req dto.RatingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	info, err := h.feedbackService.Rate(userID, &req)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, info)
}

// List 管理员反馈列表
// GET /api/v1/admin/feedback?status=&page=&pageSize=
func (h *FeedbackHandler) List(c *gin.Context) {
	var req dto.FeedbackListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	items, total, err := h.feedbackService.ListFeedback(req.Status, req.Page, req.PageSize)
	if err != nil {
		writeError(c, err)
		return
	}

	response.SuccessPage(c, total, req.Page, req.PageSize, items)
}

// UpdateStatus 更新反馈状态
// PUT /api/v1/admin/feedback/:id
func (h *FeedbackHandler) UpdateStatus(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateFeedbackStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	if err := h.feedbackService.UpdateFeedbackStatus(id, req.Status); err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, nil)
}

// Delete 删除反馈
// DELETE /api/v1/admin/feedback/:id
func (h *FeedbackHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.feedbackService.DeleteFeedback(id); err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, nil)
}

// Ratings 管理员评分列表
// GET /api/v1/admin/ratings
func (h *FeedbackHandler) Ratings(c *gin.Context) {
	var req dto.PageRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	items, total, err := h.feedbackService.ListRatings(req.Page, req.PageSize)
	if err != nil {
		writeError(c, err)
		return
	}

	response.SuccessPage(c, total, req.Page, req.PageSize, items)
}

// DeleteRating 删除评分
// DELETE /api/v1/admin/ratings/:id
func (h *FeedbackHandler) DeleteRating(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.feedbackService.DeleteRating(id); err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, nil)
}
