package model

import (
	"time"
)

// ProgressLog 每日记录，(user_id, date) 唯一；Date 为业务时区下的 YYYY-MM-DD
type ProgressLog struct {
	ID               int64     `gorm:"primaryKey" json:"id"`
	UserID           int64     `gorm:"not null;uniqueIndex:idx_progress_user_date" json:"user_id"`
	Date             string    `gorm:"size:10;not null;uniqueIndex:idx_progress_user_date" json:"date"`
	CigarettesPerDay int       `gorm:"not null;default:0" json:"cigarettes_per_day"`
	Mood             string    `gorm:"size:20" json:"mood"`
	HealthNote       string    `gorm:"type:text" json:"health_note"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func (ProgressLog) TableName() string {
	return "progress_logs"
}
