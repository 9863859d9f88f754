package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/breathfree/quit_go_server/internal/api/middleware"
	"github.com/breathfree/quit_go_server/internal/domain/payment"
	"github.com/breathfree/quit_go_server/internal/domain/quitplan"
	"github.com/breathfree/quit_go_server/internal/pkg/inflight"
	"github.com/breathfree/quit_go_server/internal/pkg/oauth"
	"github.com/breathfree/quit_go_server/internal/pkg/response"
	"github.com/breathfree/quit_go_server/internal/service"
)

var (
	notFoundErrors = []error{
		service.ErrPlanNotFound,
		service.ErrUserNotFound,
		service.ErrMembershipNotFound,
		service.ErrSubscriptionNotFound,
		service.ErrOrderNotFound,
		service.ErrProgressLogNotFound,
		service.ErrSmokingStatusNotFound,
		service.ErrChatNotFound,
		service.ErrFeedbackNotFound,
		service.ErrRatingNotFound,
		gorm.ErrRecordNotFound,
	}

	validationErrors = []error{
		quitplan.ErrIneligible,
		quitplan.ErrReasonRequired,
		quitplan.ErrNoStages,
		quitplan.ErrStageTitleRequired,
		quitplan.ErrStageDaysOutOfRange,
		quitplan.ErrPlanTooShort,
		quitplan.ErrPlanExceedsSubscription,
		quitplan.ErrUnknownStage,
		quitplan.ErrDuplicateStage,
		quitplan.ErrLockedStageModified,
		quitplan.ErrLockedStageRemoved,
		quitplan.ErrLockedStageReordered,
		quitplan.ErrPlanNotActive,
		service.ErrTemplateStages,
		service.ErrMembershipInvalid,
		service.ErrInvalidMood,
		service.ErrEmptyMessage,
		service.ErrEmptyFeedback,
		service.ErrInvalidAvatar,
	}

	paymentErrors = []error{
		payment.ErrInvalidSignature,
		payment.ErrMissingTxnRef,
		payment.ErrUnknownIntent,
		payment.ErrRenewSubscriptionID,
		service.ErrSubscriptionNotRenewable,
		service.ErrOrderNotPending,
		service.ErrIntentMismatch,
		service.ErrAmountMismatch,
		service.ErrIntentExpired,
	}
)

func isAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// writeError 将业务错误映射到统一响应码；未知错误记录日志后返回 5000
func writeError(c *gin.Context, err error) {
	var verr *quitplan.ValidationError
	switch {
	case errors.As(err, &verr):
		response.ValidationError(c, verr.Error())
	case errors.Is(err, service.ErrNoActiveSubscription):
		response.SubscriptionError(c, err.Error())
	case isAny(err, validationErrors):
		response.ValidationError(c, err.Error())
	case isAny(err, notFoundErrors):
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFoundError(c, "")
			return
		}
		response.NotFoundError(c, err.Error())
	case errors.Is(err, service.ErrPlanAlreadyActive),
		errors.Is(err, service.ErrAlreadySubscribed),
		errors.Is(err, inflight.ErrInFlight):
		response.DuplicateError(c, err.Error())
	case isAny(err, paymentErrors):
		response.PaymentError(c, err.Error())
	case errors.Is(err, service.ErrRoleMismatch),
		errors.Is(err, service.ErrNotChatMember),
		errors.Is(err, service.ErrCannotModifySelf),
		errors.Is(err, service.ErrUserBanned):
		response.PermissionError(c, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrOAuthFailed),
		errors.Is(err, oauth.ErrInvalidState):
		response.AuthError(c, err.Error())
	case errors.Is(err, service.ErrEmailExists),
		errors.Is(err, service.ErrUsernameExists):
		response.ParamError(c, err.Error())
	case errors.Is(err, service.ErrNoCoachAvailable),
		errors.Is(err, service.ErrStorageUnavailable):
		response.ServerError(c, err.Error())
	default:
		event := log.Error().Err(err).Str("path", c.FullPath())
		if userID, ok := middleware.GetUserID(c); ok {
			event = event.Int64("user_id", userID)
		}
		event.Msg("request failed")
		response.ServerError(c, "")
	}
}

// currentUser 从上下文取用户 ID，缺失时写入 1001
func currentUser(c *gin.Context) (int64, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
	}
	return userID, ok
}

// pathID 解析路径中的正整数 ID，非法时写入 1000
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		response.ParamError(c, "ID không hợp lệ")
		return 0, false
	}
	return id, true
}
