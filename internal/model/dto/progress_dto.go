package dto

import "time"

// ProgressLogRequest 今日记录
type ProgressLogRequest struct {
	CigarettesPerDay *int   `json:"cigarettesPerDay" binding:"required,min=0,max=200"`
	Mood             string `json:"mood" binding:"omitempty,oneof=excellent good normal stressed difficult"`
	HealthNote       string `json:"healthNote" binding:"max=2000"`
}

// ProgressLogInfo 单日记录
type ProgressLogInfo struct {
	ID                int64     `json:"id"`
	Date              string    `json:"date"`
	CigarettesPerDay  int       `json:"cigarettesPerDay"`
	Mood              string    `json:"mood"`
	HealthNote        string    `json:"healthNote"`
	CigarettesAvoided float64   `json:"cigarettesAvoided"`
	MoneySaved        float64   `json:"moneySaved"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// PageRequest 分页参数
type PageRequest struct {
	Page     int `form:"page,default=1" binding:"min=1"`
	PageSize int `form:"pageSize,default=20" binding:"min=1,max=100"`
}

// ChartRequest 图表天数
type ChartRequest struct {
	Days int `form:"days,default=7" binding:"min=1,max=365"`
}
