package model

import (
	"time"
)

const (
	SubscriptionActive    = "active"
	SubscriptionExpired   = "expired"
	SubscriptionCancelled = "cancelled"
)

type Subscription struct {
	ID           int64       `gorm:"primaryKey" json:"id"`
	UserID       int64       `gorm:"not null;index" json:"user_id"`
	MembershipID int64       `gorm:"not null;index" json:"membership_id"`
	StartDate    time.Time   `gorm:"not null" json:"start_date"`
	EndDate      time.Time   `gorm:"not null;index" json:"end_date"`
	Status       string      `gorm:"size:20;default:active;index" json:"status"` // active, expired, cancelled
	CancelledAt  *time.Time  `json:"cancelled_at,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
	Membership   *Membership `gorm:"foreignKey:MembershipID" json:"membership,omitempty"`
}

func (Subscription) TableName() string {
	return "subscriptions"
}
