package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/breathfree/quit_go_server/internal/model"
	"github.com/breathfree/quit_go_server/internal/pkg/response"
)

// AccessChecker 判断用户当前是否有有效订阅
type AccessChecker interface {
	CheckAccess(ctx context.Context, userID int64) (bool, error)
}

// SubscriptionRequired 订阅检查中间件；教练和管理员不受限制
func SubscriptionRequired(checker AccessChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := GetUserID(c)
		if !ok {
			response.AuthError(c, "")
			c.Abort()
			return
		}

		if role := GetRole(c); role == model.RoleCoach || role == model.RoleAdmin {
			c.Next()
			return
		}

		active, err := checker.CheckAccess(c.Request.Context(), userID)
		if err != nil {
			log.Error().Err(err).Int64("user_id", userID).Msg("subscription check failed")
			response.ServerError(c, "")
			c.Abort()
			return
		}

		if !active {
			response.SubscriptionError(c, "")
			c.Abort()
			return
		}

		c.Next()
	}
}
