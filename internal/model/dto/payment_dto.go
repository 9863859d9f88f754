package dto

import "time"

// CreatePaymentRequest 发起支付
type CreatePaymentRequest struct {
	MembershipID   int64  `json:"membershipId" binding:"required"`
	Intent         string `json:"intent" binding:"required,oneof=register renew"`
	SubscriptionID *int64 `json:"subscriptionId"`
}

// CreatePaymentResponse 支付链接
type CreatePaymentResponse struct {
	TxnRef     string    `json:"txnRef"`
	PaymentURL string    `json:"paymentUrl"`
	Amount     int64     `json:"amount"`
	ExpiresAt  time.Time `json:"expiresAt"`
}

// ConfirmPaymentRequest 前端回传网关参数
type ConfirmPaymentRequest struct {
	Params map[string]string `json:"params" binding:"required"`
}

// PaymentResult 支付结果
type PaymentResult struct {
	TxnRef       string            `json:"txnRef"`
	Success      bool              `json:"success"`
	ResponseCode string            `json:"responseCode"`
	Message      string            `json:"message"`
	Subscription *SubscriptionInfo `json:"subscription,omitempty"`
}
