package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/breathfree/quit_go_server/internal/model/dto"
	"github.com/breathfree/quit_go_server/internal/pkg/response"
	"github.com/breathfree/quit_go_server/internal/service"
)

type SmokingStatusHandler struct {
	smokingService *service.SmokingStatusService
}

func NewSmokingStatusHandler(smokingService *service.SmokingStatusService) *SmokingStatusHandler {
	return &SmokingStatusHandler{smokingService: smokingService}
}

// Get 获取吸烟状况，未填写时返回 declared=false
// GET /api/v1/smoking-status
func (h *SmokingStatusHandler) Get(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	info, err := h.smokingService.Get(userID)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, info)
}

// Upsert 填写或更新吸烟状况
// POST /api/v1/smoking-status
func (h *SmokingStatusHandler) Upsert(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req dto.SmokingStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	info, err := h.smokingService.Upsert(userID, &req)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, info)
}

// Delete 删除吸烟状况
// DELETE /api/v1/smoking-status
func (h *SmokingStatusHandler) Delete(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	if err := h.smokingService.Delete(userID); err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, nil)
}
