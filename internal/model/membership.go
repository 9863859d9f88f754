package model

import (
	"time"
)

// Membership 会员套餐
type Membership struct {
	ID           int64       `gorm:"primaryKey" json:"id"`
	Name         string      `gorm:"size:100;not null" json:"name"`
	Price        int64       `gorm:"not null" json:"price"` // VND
	DurationDays int         `gorm:"not null" json:"duration_days"`
	Description  string      `gorm:"type:text" json:"description"`
	Features     StringSlice `gorm:"type:text" json:"features"`
	IsActive     bool        `gorm:"default:true;index" json:"is_active"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

func (Membership) TableName() string {
	return "memberships"
}
