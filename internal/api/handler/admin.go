package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/breathfree/quit_go_server/internal/model/dto"
	"github.com/breathfree/quit_go_server/internal/pkg/export"
	"github.com/breathfree/quit_go_server/internal/pkg/response"
	"github.com/breathfree/quit_go_server/internal/service"
)

type AdminHandler struct {
	adminService *service.AdminService
}

func NewAdminHandler(adminService *service.AdminService) *AdminHandler {
	return &AdminHandler{adminService: adminService}
}

// ListUsers 用户列表
// GET /api/v1/admin/users?keyword=&role=&status=&page=&pageSize=
func (h *AdminHandler) ListUsers(c *gin.Context) {
	var req dto.AdminUserListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	users, total, err := h.adminService.ListUsers(&req)
	if err != nil {
		writeError(c, err)
		return
	}

	response.SuccessPage(c, total, req.Page, req.PageSize, users)
}

// UpdateUser 修改角色或封禁状态
// PUT /api/v1/admin/users/:id
func (h *AdminHandler) UpdateUser(c *gin.Context) {
	adminID, ok := currentUser(c)
	if !ok {
		return
	}
	userID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dto.AdminUpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	user, err := h.adminService.UpdateUser(adminID, userID, &req)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, user)
}

// DeleteUser 删除用户
// DELETE /api/v1/admin/users/:id
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	adminID, ok := currentUser(c)
	if !ok {
		return
	}
	userID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.adminService.DeleteUser(adminID, userID); err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, nil)
}

// ExportUsers 导出用户 CSV/XLSX
// GET /api/v1/admin/users/export?format=csv|xlsx
func (h *AdminHandler) ExportUsers(c *gin.Context) {
	var req dto.AdminExportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	contentType, err := export.ContentType(req.Format)
	if err != nil {
		response.ParamError(c, err.Error())
		return
	}

	table, err := h.adminService.ExportUsers(&req)
	if err != nil {
		writeError(c, err)
		return
	}

	// 先写入缓冲区，编码失败时仍可返回统一错误
	var buf bytes.Buffer
	if err := export.Write(&buf, req.Format, table); err != nil {
		writeError(c, err)
		return
	}

	filename := fmt.Sprintf("users-%s.%s", time.Now().Format("20060102"), req.Format)
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, contentType, buf.Bytes())
}

// Statistics 后台统计
// GET /api/v1/admin/membership/statistics
func (h *AdminHandler) Statistics(c *gin.Context) {
	stats, err := h.adminService.Statistics(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, stats)
}
