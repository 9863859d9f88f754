package dto

import "time"

// SubscriptionStatus 订阅快照
type SubscriptionStatus struct {
	HasActiveSubscription bool              `json:"hasActiveSubscription"`
	DaysRemaining         int               `json:"daysRemaining"`
	IsExpiringSoon        bool              `json:"isExpiringSoon"`
	Subscription          *SubscriptionInfo `json:"subscription,omitempty"`
}

// SubscriptionInfo 订阅记录
type SubscriptionInfo struct {
	ID             int64      `json:"id"`
	MembershipID   int64      `json:"membershipId"`
	MembershipName string     `json:"membershipName"`
	Price          int64      `json:"price"`
	DurationDays   int        `json:"durationDays"`
	StartDate      time.Time  `json:"startDate"`
	EndDate        time.Time  `json:"endDate"`
	Status         string     `json:"status"`
	CancelledAt    *time.Time `json:"cancelledAt,omitempty"`
}

// MembershipInfo 套餐
type MembershipInfo struct {
	ID           int64    `json:"id"`
	Name         string   `json:"name"`
	Price        int64    `json:"price"`
	DurationDays int      `json:"durationDays"`
	Description  string   `json:"description"`
	Features     []string `json:"features"`
	IsActive     bool     `json:"isActive"`
}

// MembershipRequest 管理员创建/更新套餐
type MembershipRequest struct {
	Name         string   `json:"name" binding:"required,max=100"`
	Price        int64    `json:"price" binding:"required,gt=0"`
	DurationDays int      `json:"durationDays" binding:"required,min=1,max=3650"`
	Description  string   `json:"description" binding:"max=2000"`
	Features     []string `json:"features"`
	IsActive     *bool    `json:"isActive"`
}
