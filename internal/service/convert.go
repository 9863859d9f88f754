package service

import (
	"time"

	"github.com/breathfree/quit_go_server/internal/domain/quitplan"
	"github.com/breathfree/quit_go_server/internal/model"
	"github.com/breathfree/quit_go_server/internal/model/dto"
)

func toUserInfo(user *model.User) *dto.UserInfo {
	info := &dto.UserInfo{
		ID:        user.ID,
		Username:  user.Username,
		FullName:  user.FullName,
		Phone:     user.Phone,
		AvatarURL: user.AvatarURL,
		Role:      user.Role,
		Status:    user.Status,
		CreatedAt: user.CreatedAt,
	}
	if user.Email != nil {
		info.Email = *user.Email
	}
	return info
}

func toMembershipInfo(m *model.Membership) *dto.MembershipInfo {
	features := []string(m.Features)
	if features == nil {
		features = []string{}
	}
	return &dto.MembershipInfo{
		ID:           m.ID,
		Name:         m.Name,
		Price:        m.Price,
		DurationDays: m.DurationDays,
		Description:  m.Description,
		Features:     features,
		IsActive:     m.IsActive,
	}
}

func toSubscriptionInfo(sub *model.Subscription) *dto.SubscriptionInfo {
	info := &dto.SubscriptionInfo{
		ID:           sub.ID,
		MembershipID: sub.MembershipID,
		StartDate:    sub.StartDate,
		EndDate:      sub.EndDate,
		Status:       sub.Status,
		CancelledAt:  sub.CancelledAt,
	}
	if sub.Membership != nil {
		info.MembershipName = sub.Membership.Name
		info.Price = sub.Membership.Price
		info.DurationDays = sub.Membership.DurationDays
	}
	return info
}

// toDomainPlan 转换为领域模型，日期统一到业务时区
func toDomainPlan(plan *model.QuitPlan, loc *time.Location) quitplan.Plan {
	stages := make([]quitplan.Stage, len(plan.Stages))
	for i, s := range plan.Stages {
		stages[i] = quitplan.Stage{
			ID:          s.ID,
			OrderNumber: s.OrderNumber,
			StageFields: quitplan.StageFields{
				Title:          s.Title,
				Description:    s.Description,
				DaysToComplete: s.DaysToComplete,
			},
		}
	}
	return quitplan.Plan{
		ID:        plan.ID,
		Reason:    plan.Reason,
		StartDate: plan.StartDate.In(loc),
		Status:    quitplan.Status(plan.Status),
		Stages:    stages,
	}
}

func toPlanInfo(plan *model.QuitPlan, loc *time.Location, now time.Time) *dto.PlanInfo {
	progress := quitplan.ComputeCurrentStage(toDomainPlan(plan, loc), now)

	info := &dto.PlanInfo{
		ID:               plan.ID,
		Reason:           plan.Reason,
		StartDate:        plan.StartDate.In(loc),
		ExpectedQuitDate: plan.ExpectedQuitDate.In(loc),
		Status:           plan.Status,
		CancelledAt:      plan.CancelledAt,
		CompletedAt:      plan.CompletedAt,
		Stages:           progress.Stages,
		ElapsedDays:      progress.ElapsedDays,
		TotalDays:        progress.TotalDays,
		PercentComplete:  progress.PercentComplete,
	}
	if cur := progress.Current(); cur != nil {
		c := *cur
		info.CurrentStage = &c
	}
	if info.Stages == nil {
		info.Stages = []quitplan.StageProgress{}
	}
	return info
}

func toStageModels(fields []quitplan.StageFields) []model.QuitStage {
	stages := make([]model.QuitStage, len(fields))
	for i, f := range fields {
		f = f.Normalize()
		stages[i] = model.QuitStage{
			OrderNumber:    i + 1,
			Title:          f.Title,
			Description:    f.Description,
			DaysToComplete: f.DaysToComplete,
		}
	}
	return stages
}

func toMessageInfo(m *model.ChatMessage) *dto.MessageInfo {
	return &dto.MessageInfo{
		ID:        m.ID,
		ChatID:    m.ChatID,
		SenderID:  m.SenderID,
		Content:   m.Content,
		CreatedAt: m.CreatedAt,
	}
}

func dateKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("2006-01-02")
}
