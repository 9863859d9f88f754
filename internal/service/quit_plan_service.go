package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/breathfree/quit_go_server/config"
	"github.com/breathfree/quit_go_server/internal/domain/quitplan"
	"github.com/breathfree/quit_go_server/internal/model"
	"github.com/breathfree/quit_go_server/internal/model/dto"
	"github.com/breathfree/quit_go_server/internal/pkg/metrics"
	"github.com/breathfree/quit_go_server/internal/repository"
)

var (
	ErrPlanNotFound      = errors.New("Không tìm thấy kế hoạch cai thuốc")
	ErrPlanAlreadyActive = errors.New("Bạn đang có một kế hoạch cai thuốc đang hoạt động")
	ErrTemplateStages    = errors.New("Không thể tạo kế hoạch từ mẫu gợi ý")
)

const (
	suggestionKeyPrefix = "quitplan:suggestion:"
	suggestionTTL       = time.Hour
)

type QuitPlanService struct {
	planRepo    *repository.QuitPlanRepository
	smokingRepo *repository.SmokingStatusRepository
	subService  *SubscriptionService
	rdb         *redis.Client
	rules       quitplan.Rules
	loc         *time.Location
	now         func() time.Time
}

func NewQuitPlanService(
	planRepo *repository.QuitPlanRepository,
	smokingRepo *repository.SmokingStatusRepository,
	subService *SubscriptionService,
	rdb *redis.Client,
	cfg *config.Config,
) *QuitPlanService {
	return &QuitPlanService{
		planRepo:    planRepo,
		smokingRepo: smokingRepo,
		subService:  subService,
		rdb:         rdb,
		rules: quitplan.Rules{
			MinTotalDays: cfg.Plan.MinTotalDays,
			MaxStageDays: cfg.Plan.MaxStageDays,
		},
		loc: cfg.Server.Location(),
		now: time.Now,
	}
}

// Suggest 按吸烟基线与剩余订阅天数生成建议计划，并缓存供模板创建使用
func (s *QuitPlanService) Suggest(ctx context.Context, userID int64) (*quitplan.Suggestion, error) {
	snap, _, err := s.subService.Snapshot(userID)
	if err != nil {
		return nil, err
	}
	baseline, err := loadBaseline(s.smokingRepo, userID)
	if err != nil {
		return nil, err
	}

	suggestion, err := quitplan.Suggest(baseline, snap.DaysRemaining)
	if err != nil {
		return nil, err
	}
	s.cacheSuggestion(ctx, userID, suggestion)
	return suggestion, nil
}

// Create 创建计划；每个用户最多一个 active 计划
func (s *QuitPlanService) Create(ctx context.Context, userID int64, req *dto.CreatePlanRequest) (*dto.PlanInfo, error) {
	active, err := s.planRepo.HasActive(userID)
	if err != nil {
		return nil, err
	}
	if active {
		return nil, ErrPlanAlreadyActive
	}

	// 剩余天数每次从数据库重新计算
	snap, _, err := s.subService.Snapshot(userID)
	if err != nil {
		return nil, err
	}
	if !snap.Allows() {
		return nil, ErrNoActiveSubscription
	}

	reason := strings.TrimSpace(req.Reason)
	var stages []quitplan.StageFields
	if req.UseTemplate {
		suggestion, err := s.templateFor(ctx, userID, snap.DaysRemaining)
		if err != nil {
			return nil, err
		}
		stages = suggestion.SuggestedStages
		if err := quitplan.ValidateStages(stages, snap.DaysRemaining, s.rules); err != nil {
			metrics.QuitPlansTotal.WithLabelValues(metrics.PlanRejected).Inc()
			return nil, err
		}
	} else {
		stages = stageFields(req.Stages)
		if err := quitplan.ValidateCreate(reason, stages, snap.DaysRemaining, s.rules); err != nil {
			metrics.QuitPlansTotal.WithLabelValues(metrics.PlanRejected).Inc()
			return nil, err
		}
	}

	start := quitplan.StartOfDay(s.now().In(s.loc))
	plan := &model.QuitPlan{
		UserID:           userID,
		Reason:           reason,
		StartDate:        start,
		ExpectedQuitDate: quitplan.ExpectedCompletionDate(stages, start),
		Status:           model.PlanActive,
		Stages:           toStageModels(stages),
	}
	if err := s.planRepo.Create(plan); err != nil {
		return nil, err
	}
	metrics.QuitPlansTotal.WithLabelValues(metrics.PlanCreated).Inc()

	log.Info().Int64("user_id", userID).Int64("plan_id", plan.ID).
		Int("total_days", quitplan.TotalDays(stages)).Bool("template", req.UseTemplate).
		Msg("quit plan created")

	return toPlanInfo(plan, s.loc, s.now()), nil
}

// Current 当前计划；已走完的计划在读取时标记为完成并按不存在处理
func (s *QuitPlanService) Current(userID int64) (*dto.PlanInfo, error) {
	plan, err := s.planRepo.GetActiveByUser(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}

	now := s.now()
	if quitplan.ComputeCurrentStage(toDomainPlan(plan, s.loc), now).Finished {
		if _, err := s.complete(plan, now); err != nil {
			return nil, err
		}
		// 已完成的计划只出现在历史中
		return nil, ErrPlanNotFound
	}
	return toPlanInfo(plan, s.loc, now), nil
}

// Update 原地更新计划。未变化时不写库；已完成与进行中的阶段不可修改
func (s *QuitPlanService) Update(ctx context.Context, userID, planID int64, req *dto.UpdatePlanRequest) (*dto.PlanInfo, error) {
	plan, err := s.ownedPlan(userID, planID)
	if err != nil {
		return nil, err
	}
	if plan.Status != model.PlanActive {
		return nil, quitplan.ErrPlanNotActive
	}

	now := s.now()
	domainPlan := toDomainPlan(plan, s.loc)
	reason := strings.TrimSpace(req.Reason)
	drafts := toDrafts(req.Stages)

	if !quitplan.HasChanges(domainPlan, reason, drafts) {
		return toPlanInfo(plan, s.loc, now), nil
	}

	snap, _, err := s.subService.Snapshot(userID)
	if err != nil {
		return nil, err
	}
	if !snap.Allows() {
		return nil, ErrNoActiveSubscription
	}

	// 与创建相同：全部阶段天数之和不得超过剩余订阅天数
	if err := quitplan.ValidateUpdate(domainPlan, reason, drafts, snap.DaysRemaining, now, s.rules); err != nil {
		metrics.QuitPlansTotal.WithLabelValues(metrics.PlanRejected).Inc()
		return nil, err
	}

	fields := quitplan.DraftFields(drafts)
	if err := s.planRepo.ReplaceStages(plan.ID, reason, quitplan.PreviewUpdate(domainPlan, fields), buildStageChange(plan, drafts)); err != nil {
		return nil, err
	}
	metrics.QuitPlansTotal.WithLabelValues(metrics.PlanUpdated).Inc()

	updated, err := s.planRepo.GetByID(plan.ID)
	if err != nil {
		return nil, err
	}
	return toPlanInfo(updated, s.loc, now), nil
}

// Cancel 取消计划；已结束的计划视为不存在
func (s *QuitPlanService) Cancel(userID, planID int64) error {
	plan, err := s.ownedPlan(userID, planID)
	if err != nil {
		return err
	}

	ok, err := s.planRepo.Transition(plan.ID, model.PlanCancelled, s.now())
	if err != nil {
		return err
	}
	if !ok {
		return ErrPlanNotFound
	}
	metrics.QuitPlansTotal.WithLabelValues(metrics.PlanCancelled).Inc()
	return nil
}

// History 已结束的计划
func (s *QuitPlanService) History(userID int64) ([]*dto.PlanInfo, error) {
	plans, err := s.planRepo.ListHistory(userID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	items := make([]*dto.PlanInfo, 0, len(plans))
	for _, p := range plans {
		items = append(items, toPlanInfo(p, s.loc, now))
	}
	return items, nil
}

// CompleteFinished 将所有已走完的 active 计划标记为完成，dryRun 时只统计
func (s *QuitPlanService) CompleteFinished(dryRun bool) (int, error) {
	plans, err := s.planRepo.ListActive()
	if err != nil {
		return 0, err
	}

	now := s.now()
	count := 0
	for _, p := range plans {
		if !quitplan.ComputeCurrentStage(toDomainPlan(p, s.loc), now).Finished {
			continue
		}
		if dryRun {
			count++
			continue
		}
		ok, err := s.complete(p, now)
		if err != nil {
			return count, err
		}
		if ok {
			count++
		}
	}
	return count, nil
}

func (s *QuitPlanService) complete(plan *model.QuitPlan, now time.Time) (bool, error) {
	ok, err := s.planRepo.Transition(plan.ID, model.PlanCompleted, now)
	if err != nil {
		return false, err
	}
	if ok {
		metrics.QuitPlansTotal.WithLabelValues(metrics.PlanCompleted).Inc()
		log.Info().Int64("plan_id", plan.ID).Int64("user_id", plan.UserID).Msg("quit plan completed")
	}
	plan.Status = model.PlanCompleted
	plan.CompletedAt = &now
	return ok, nil
}

func (s *QuitPlanService) ownedPlan(userID, planID int64) (*model.QuitPlan, error) {
	plan, err := s.planRepo.GetByID(planID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	if plan.UserID != userID {
		return nil, ErrPlanNotFound
	}
	return plan, nil
}

// templateFor 优先使用缓存的建议；缓存的时长超出当前剩余天数时重新计算
func (s *QuitPlanService) templateFor(ctx context.Context, userID int64, daysRemaining int) (*quitplan.Suggestion, error) {
	if cached := s.cachedSuggestion(ctx, userID); cached != nil && cached.SuggestedDuration <= daysRemaining {
		return cached, nil
	}

	baseline, err := loadBaseline(s.smokingRepo, userID)
	if err != nil {
		return nil, err
	}
	suggestion, err := quitplan.Suggest(baseline, daysRemaining)
	if err != nil {
		return nil, err
	}
	if len(suggestion.SuggestedStages) == 0 {
		return nil, ErrTemplateStages
	}
	s.cacheSuggestion(ctx, userID, suggestion)
	return suggestion, nil
}

func suggestionKey(userID int64) string {
	return fmt.Sprintf("%s%d", suggestionKeyPrefix, userID)
}

func (s *QuitPlanService) cachedSuggestion(ctx context.Context, userID int64) *quitplan.Suggestion {
	if s.rdb == nil {
		return nil
	}
	data, err := s.rdb.Get(ctx, suggestionKey(userID)).Bytes()
	if err != nil {
		return nil
	}
	var suggestion quitplan.Suggestion
	if err := json.Unmarshal(data, &suggestion); err != nil {
		return nil
	}
	return &suggestion
}

func (s *QuitPlanService) cacheSuggestion(ctx context.Context, userID int64, suggestion *quitplan.Suggestion) {
	if s.rdb == nil {
		return
	}
	data, err := json.Marshal(suggestion)
	if err != nil {
		return
	}
	if err := s.rdb.Set(ctx, suggestionKey(userID), data, suggestionTTL).Err(); err != nil {
		log.Warn().Err(err).Int64("user_id", userID).Msg("failed to cache plan suggestion")
	}
}

func stageFields(inputs []dto.StageInput) []quitplan.StageFields {
	fields := make([]quitplan.StageFields, len(inputs))
	for i, in := range inputs {
		fields[i] = quitplan.StageFields{
			Title:          in.Title,
			Description:    in.Description,
			DaysToComplete: in.DaysToComplete,
		}
	}
	return fields
}

func toDrafts(inputs []dto.StageInput) []quitplan.Draft {
	fields := stageFields(inputs)
	drafts := make([]quitplan.Draft, len(inputs))
	for i, in := range inputs {
		if in.ID != nil {
			drafts[i] = quitplan.Persisted{ID: *in.ID, StageFields: fields[i]}
		} else {
			drafts[i] = quitplan.New{StageFields: fields[i]}
		}
	}
	return drafts
}

// buildStageChange 按提交顺序重新编号；未出现的已有阶段删除
func buildStageChange(plan *model.QuitPlan, drafts []quitplan.Draft) repository.StageChange {
	var change repository.StageChange
	seen := make(map[int64]bool, len(drafts))

	for i, d := range drafts {
		f := d.Fields().Normalize()
		stage := model.QuitStage{
			PlanID:         plan.ID,
			OrderNumber:    i + 1,
			Title:          f.Title,
			Description:    f.Description,
			DaysToComplete: f.DaysToComplete,
		}
		if p, ok := d.(quitplan.Persisted); ok {
			stage.ID = p.ID
			seen[p.ID] = true
			change.Keep = append(change.Keep, stage)
			continue
		}
		change.Create = append(change.Create, stage)
	}

	for _, s := range plan.Stages {
		if !seen[s.ID] {
			change.Delete = append(change.Delete, s.ID)
		}
	}
	return change
}
