package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/breathfree/quit_go_server/internal/pkg/jwt"
	"github.com/breathfree/quit_go_server/internal/pkg/response"
)

const (
	UserIDKey = "userID"
	RoleKey   = "role"
)

var (
	errMissingToken = errors.New("Vui lòng đăng nhập")
	errTokenFormat  = errors.New("Định dạng xác thực không hợp lệ")
)

// Auth 校验 Bearer token，把用户 ID 和登录角色放入上下文
func Auth(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := bearerClaims(c.GetHeader("Authorization"), jwtSecret)
		if err != nil {
			response.AuthError(c, authMessage(err))
			c.Abort()
			return
		}

		c.Set(UserIDKey, claims.UserID)
		c.Set(RoleKey, claims.Role)
		c.Next()
	}
}

func bearerClaims(header, secret string) (*jwt.Claims, error) {
	if header == "" {
		return nil, errMissingToken
	}
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found || strings.TrimSpace(token) == "" {
		return nil, errTokenFormat
	}
	return jwt.ParseToken(strings.TrimSpace(token), secret)
}

func authMessage(err error) string {
	switch {
	case errors.Is(err, errMissingToken), errors.Is(err, errTokenFormat):
		return err.Error()
	case errors.Is(err, jwt.ErrExpiredToken):
		return "Phiên đăng nhập đã hết hạn, vui lòng đăng nhập lại"
	default:
		return "Phiên đăng nhập không hợp lệ"
	}
}

// RequireRole 仅允许指定角色，需在 Auth 之后使用
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := GetRole(c)
		for _, r := range roles {
			if role == r {
				c.Next()
				return
			}
		}
		response.PermissionError(c, "")
		c.Abort()
	}
}

// GetUserID 从上下文获取用户 ID
func GetUserID(c *gin.Context) (int64, bool) {
	v, exists := c.Get(UserIDKey)
	if !exists {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}

// GetRole 从上下文获取登录角色，未登录为空
func GetRole(c *gin.Context) string {
	return c.GetString(RoleKey)
}
