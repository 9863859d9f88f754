package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/breathfree/quit_go_server/internal/model/dto"
	"github.com/breathfree/quit_go_server/internal/pkg/response"
	"github.com/breathfree/quit_go_server/internal/service"
)

type ProgressHandler struct {
	progressService *service.ProgressService
}

func NewProgressHandler(progressService *service.ProgressService) *ProgressHandler {
	return &ProgressHandler{progressService: progressService}
}

// LogToday 记录或覆盖今日进度
// POST /api/v1/progress-logs
func (h *ProgressHandler) LogToday(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req dto.ProgressLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	info, err := h.progressService.LogToday(userID, &req)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, info)
}

// Today 今日记录，未记录时返回 1003
// GET /api/v1/progress-logs/today
func (h *ProgressHandler) Today(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	info, err := h.progressService.Today(userID)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, info)
}

// List 分页历史记录
// GET /api/v1/progress-logs?page=&pageSize=
func (h *ProgressHandler) List(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req dto.PageRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	items, total, err := h.progressService.List(userID, req.Page, req.PageSize)
	if err != nil {
		writeError(c, err)
		return
	}

	response.SuccessPage(c, total, req.Page, req.PageSize, items)
}

// Statistics 汇总统计
// GET /api/v1/progress-logs/statistics
func (h *ProgressHandler) Statistics(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	stats, err := h.progressService.Statistics(userID)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, stats)
}

// Chart 最近 N 天曲线
// GET /api/v1/progress-logs/chart?days=7
func (h *ProgressHandler) Chart(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req dto.ChartRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	points, err := h.progressService.Chart(userID, req.Days)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, points)
}

// Report PDF 报告下载
// GET /api/v1/progress-logs/report
func (h *ProgressHandler) Report(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	pdf, err := h.progressService.Report(userID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="progress-%d.pdf"`, userID))
	c.Data(http.StatusOK, "application/pdf", pdf)
}
