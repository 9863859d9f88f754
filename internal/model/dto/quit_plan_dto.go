package dto

import (
	"time"

	"github.com/breathfree/quit_go_server/internal/domain/quitplan"
)

// StageInput 提交的阶段，ID 为空表示新增
type StageInput struct {
	ID             *int64 `json:"id,omitempty"`
	Title          string `json:"title" binding:"max=200"`
	Description    string `json:"description" binding:"max=2000"`
	DaysToComplete int    `json:"daysToComplete"`
}

// CreatePlanRequest 创建计划，UseTemplate 时使用建议阶段
type CreatePlanRequest struct {
	Reason      string       `json:"reason" binding:"max=2000"`
	UseTemplate bool         `json:"useTemplate"`
	Stages      []StageInput `json:"stages" binding:"max=20,dive"`
}

// UpdatePlanRequest 更新计划
type UpdatePlanRequest struct {
	Reason string       `json:"reason" binding:"max=2000"`
	Stages []StageInput `json:"stages" binding:"max=20,dive"`
}

// PlanInfo 计划及派生阶段状态
type PlanInfo struct {
	ID               int64                    `json:"id"`
	Reason           string                   `json:"reason"`
	StartDate        time.Time                `json:"startDate"`
	ExpectedQuitDate time.Time                `json:"expectedQuitDate"`
	Status           string                   `json:"status"`
	CancelledAt      *time.Time               `json:"cancelledAt,omitempty"`
	CompletedAt      *time.Time               `json:"completedAt,omitempty"`
	Stages           []quitplan.StageProgress `json:"stages"`
	CurrentStage     *quitplan.StageProgress  `json:"currentStage"`
	ElapsedDays      int                      `json:"elapsedDays"`
	TotalDays        int                      `json:"totalDays"`
	PercentComplete  int                      `json:"percentComplete"`
}
