package model

import (
	"time"
)

// SmokingStatus 吸烟基线，每个用户一条
type SmokingStatus struct {
	ID                int64     `gorm:"primaryKey" json:"id"`
	UserID            int64     `gorm:"not null;uniqueIndex" json:"user_id"`
	CigarettesPerDay  float64   `gorm:"not null" json:"cigarettes_per_day"`
	PricePerCigarette float64   `gorm:"not null" json:"price_per_cigarette"`
	SmokingYears      *int      `json:"smoking_years,omitempty"`
	Notes             string    `gorm:"type:text" json:"notes"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func (SmokingStatus) TableName() string {
	return "smoking_statuses"
}
