package model

import (
	"time"
)

const (
	PlanActive    = "active"
	PlanCompleted = "completed"
	PlanCancelled = "cancelled"
)

type QuitPlan struct {
	ID               int64      `gorm:"primaryKey" json:"id"`
	UserID           int64      `gorm:"not null;index" json:"user_id"`
	Reason           string     `gorm:"type:text;not null" json:"reason"`
	StartDate        time.Time  `gorm:"not null" json:"start_date"`
	ExpectedQuitDate time.Time  `gorm:"not null" json:"expected_quit_date"`
	Status           string     `gorm:"size:20;default:active;index" json:"status"` // active, completed, cancelled
	CancelledAt      *time.Time `json:"cancelled_at,omitempty"`
	CompletedAt      *time.Time `json:"completed_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`

	// 关联
	Stages []QuitStage `gorm:"foreignKey:PlanID" json:"stages,omitempty"`
}

func (QuitPlan) TableName() string {
	return "quit_plans"
}

type QuitStage struct {
	ID             int64     `gorm:"primaryKey" json:"id"`
	PlanID         int64     `gorm:"not null;index" json:"plan_id"`
	OrderNumber    int       `gorm:"not null" json:"order_number"`
	Title          string    `gorm:"size:200;not null" json:"title"`
	Description    string    `gorm:"type:text" json:"description"`
	DaysToComplete int       `gorm:"not null" json:"days_to_complete"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (QuitStage) TableName() string {
	return "quit_stages"
}
