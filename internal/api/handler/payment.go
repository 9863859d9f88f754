package handler

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/breathfree/quit_go_server/config"
	"github.com/breathfree/quit_go_server/internal/domain/payment"
	"github.com/breathfree/quit_go_server/internal/model/dto"
	"github.com/breathfree/quit_go_server/internal/pkg/response"
	"github.com/breathfree/quit_go_server/internal/service"
)

type PaymentHandler struct {
	paymentService *service.PaymentService
	cfg            config.PaymentConfig
}

func NewPaymentHandler(paymentService *service.PaymentService, cfg config.PaymentConfig) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
		cfg:            cfg,
	}
}

// Create 创建订单并返回网关支付链接
// POST /api/v1/payMembership
func (h *PaymentHandler) Create(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req dto.CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	resp, err := h.paymentService.Create(c.Request.Context(), userID, &req, c.ClientIP())
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, resp)
}

// QRCode 支付链接二维码
// GET /api/v1/payMembership/:txnRef/qr
func (h *PaymentHandler) QRCode(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	png, err := h.paymentService.QRCode(userID, c.Param("txnRef"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.Data(http.StatusOK, "image/png", png)
}

// Return 网关回跳地址，处理后跳转到前端结果页
// GET /api/v1/payMembership/return?vnp_*
func (h *PaymentHandler) Return(c *gin.Context) {
	result, err := h.paymentService.HandleReturn(c.Request.Context(), c.Request.URL.Query())
	if err != nil {
		log.Warn().Err(err).Str("txn_ref", c.Query("vnp_TxnRef")).Msg("payment return rejected")
		h.redirect(c, h.cfg.FailureURL, url.Values{
			"message": {err.Error()},
		})
		return
	}

	q := url.Values{
		"txnRef":  {result.TxnRef},
		"code":    {result.ResponseCode},
		"message": {result.Message},
	}
	if !result.Success {
		h.redirect(c, h.cfg.FailureURL, q)
		return
	}
	h.redirect(c, h.cfg.SuccessURL, q)
}

// Confirm 前端回传网关参数，确认开通
// POST /api/v1/payMembership/confirm-payment
func (h *PaymentHandler) Confirm(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	params, ok := bindGatewayParams(c)
	if !ok {
		return
	}

	result, err := h.paymentService.Confirm(c.Request.Context(), userID, params)
	writeResult(c, result, err)
}

// Extend 前端回传网关参数，确认续费。续费的订阅以订单意图为准
// PUT /api/v1/subscription/extend/:id
func (h *PaymentHandler) Extend(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	subID, ok := pathID(c, "id")
	if !ok {
		return
	}

	params, ok := bindGatewayParams(c)
	if !ok {
		return
	}

	result, err := h.paymentService.Extend(c.Request.Context(), userID, params)
	if err == nil && result.Subscription != nil && result.Subscription.ID != subID {
		log.Warn().Int64("path_id", subID).Int64("subscription_id", result.Subscription.ID).
			Str("txn_ref", result.TxnRef).Msg("extend path id differs from order subscription")
	}
	writeResult(c, result, err)
}

func bindGatewayParams(c *gin.Context) (url.Values, bool) {
	var req dto.ConfirmPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return nil, false
	}

	params := url.Values{}
	for k, v := range req.Params {
		params.Set(k, v)
	}
	return params, true
}

// writeResult 网关返回非成功码时使用 1007 和对应提示
func writeResult(c *gin.Context, result *dto.PaymentResult, err error) {
	if err != nil {
		writeError(c, err)
		return
	}
	if !result.Success {
		msg := result.Message
		if msg == "" {
			msg = payment.DefaultFailureMessage
		}
		response.PaymentError(c, msg)
		return
	}
	response.SuccessWithMessage(c, result.Message, result)
}

func (h *PaymentHandler) redirect(c *gin.Context, target string, q url.Values) {
	if target == "" {
		// 未配置前端地址时直接返回结果
		response.Success(c, q)
		return
	}
	c.Redirect(http.StatusFound, appendQuery(target, q))
}
