package middleware

import (
	"context"
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/breathfree/quit_go_server/internal/pkg/inflight"
	"github.com/breathfree/quit_go_server/internal/pkg/response"
)

// InFlight 同一用户的同一操作同时只处理一个请求，其余返回 1005
func InFlight(guard *inflight.Guard, op string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := GetUserID(c)
		if !ok || guard == nil {
			c.Next()
			return
		}

		token, err := guard.Acquire(c.Request.Context(), userID, op)
		if errors.Is(err, inflight.ErrInFlight) {
			response.DuplicateError(c, "")
			c.Abort()
			return
		}
		if err != nil {
			// redis 不可用时放行
			log.Warn().Err(err).Str("op", op).Int64("user_id", userID).Msg("in-flight guard unavailable")
			c.Next()
			return
		}

		defer func() {
			// 请求可能已被取消，释放使用独立的 context
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			if err := guard.Release(ctx, token); err != nil {
				log.Warn().Err(err).Str("op", op).Int64("user_id", userID).Msg("failed to release in-flight token")
			}
		}()
		c.Next()
	}
}
