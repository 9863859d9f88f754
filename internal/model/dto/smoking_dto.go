package dto

import "time"

// SmokingStatusRequest 吸烟状况
type SmokingStatusRequest struct {
	CigarettesPerDay  float64 `json:"cigarettesPerDay" binding:"required,gt=0,lte=200"`
	PricePerCigarette float64 `json:"pricePerCigarette" binding:"required,gt=0"`
	SmokingYears      *int    `json:"smokingYears" binding:"omitempty,min=0,max=100"`
	Notes             string  `json:"notes" binding:"max=2000"`
}

// SmokingStatusInfo 吸烟状况及派生费用
type SmokingStatusInfo struct {
	ID                int64     `json:"id"`
	CigarettesPerDay  float64   `json:"cigarettesPerDay"`
	PricePerCigarette float64   `json:"pricePerCigarette"`
	SmokingYears      *int      `json:"smokingYears,omitempty"`
	Notes             string    `json:"notes"`
	Declared          bool      `json:"declared"`
	DailyCost         float64   `json:"dailyCost"`
	MonthlyCost       float64   `json:"monthlyCost"`
	YearlyCost        float64   `json:"yearlyCost"`
	UpdatedAt         time.Time `json:"updatedAt"`
}
