package handler

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/breathfree/quit_go_server/internal/model"
	"github.com/breathfree/quit_go_server/internal/model/dto"
	"github.com/breathfree/quit_go_server/internal/pkg/response"
	"github.com/breathfree/quit_go_server/internal/service"
)

type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// Register 会员注册
// POST /api/v1/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	resp, err := h.authService.Register(c.Request.Context(), &req)
	if err != nil {
		writeError(c, err)
		return
	}

	response.SuccessWithMessage(c, "Đăng ký thành công", resp)
}

// Login 登录
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	resp, err := h.authService.Login(&req)
	if err != nil {
		writeError(c, err)
		return
	}

	response.SuccessWithMessage(c, "Đăng nhập thành công", resp)
}

// GoogleAuth 跳转到 Google 授权页
// GET /api/v1/auth/google?role=member
func (h *AuthHandler) GoogleAuth(c *gin.Context) {
	role := c.Query("role")
	switch role {
	case "", model.RoleMember, model.RoleCoach, model.RoleAdmin:
	default:
		response.ParamError(c, "Vai trò không hợp lệ")
		return
	}

	authURL, err := h.authService.GetGoogleAuthURL(c.Request.Context(), role)
	if err != nil {
		writeError(c, err)
		return
	}

	c.Redirect(http.StatusTemporaryRedirect, authURL)
}

// GoogleCallback Google 回调，带 token 或错误信息跳回前端
// GET /api/v1/auth/google/callback?code=&state=
func (h *AuthHandler) GoogleCallback(c *gin.Context) {
	code := c.Query("code")
	state := c.Query("state")
	if code == "" || state == "" {
		response.ParamError(c, "Thiếu mã xác thực")
		return
	}

	resp, redirectURI, err := h.authService.GoogleCallback(c.Request.Context(), code, state)
	if redirectURI == "" {
		// state 无效，没有可跳转的地址
		if err != nil {
			writeError(c, err)
			return
		}
		response.Success(c, resp)
		return
	}

	q := url.Values{}
	if err != nil {
		log.Warn().Err(err).Msg("google login failed")
		q.Set("error", err.Error())
	} else {
		q.Set("token", resp.Token)
	}
	c.Redirect(http.StatusFound, appendQuery(redirectURI, q))
}

// appendQuery 在已有地址后追加查询参数
func appendQuery(raw string, q url.Values) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	merged := u.Query()
	for k, v := range q {
		merged[k] = v
	}
	u.RawQuery = merged.Encode()
	return u.String()
}
