package model

import (
	"time"
)

const (
	OrderPending = "pending"
	OrderPaid    = "paid"
	OrderFailed  = "failed"
)

// PaymentOrder 支付订单，TxnRef 为网关交易号
type PaymentOrder struct {
	ID             int64      `gorm:"primaryKey" json:"id"`
	TxnRef         string     `gorm:"size:64;uniqueIndex;not null" json:"txn_ref"`
	UserID         int64      `gorm:"not null;index" json:"user_id"`
	MembershipID   int64      `gorm:"not null" json:"membership_id"`
	SubscriptionID *int64     `json:"subscription_id,omitempty"`
	Intent         string     `gorm:"size:20;not null" json:"intent"` // register, renew
	Amount         int64      `gorm:"not null" json:"amount"`
	Status         string     `gorm:"size:20;default:pending;index" json:"status"`
	ResponseCode   string     `gorm:"size:10" json:"response_code,omitempty"`
	BankCode       string     `gorm:"size:20" json:"bank_code,omitempty"`
	TransactionNo  string     `gorm:"size:50" json:"transaction_no,omitempty"`
	PaymentURL     string     `gorm:"type:text" json:"-"`
	PaidAt         *time.Time `json:"paid_at,omitempty"`
	CreatedAt      time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func (PaymentOrder) TableName() string {
	return "payment_orders"
}
