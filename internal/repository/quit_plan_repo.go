package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/breathfree/quit_go_server/internal/model"
)

type QuitPlanRepository struct {
	db *gorm.DB
}

func NewQuitPlanRepository(db *gorm.DB) *QuitPlanRepository {
	return &QuitPlanRepository{db: db}
}

func orderedStages(db *gorm.DB) *gorm.DB {
	return db.Order("order_number ASC")
}

// Create 创建计划及其阶段
func (r *QuitPlanRepository) Create(plan *model.QuitPlan) error {
	return r.db.Create(plan).Error
}

func (r *QuitPlanRepository) GetByID(id int64) (*model.QuitPlan, error) {
	var plan model.QuitPlan
	err := r.db.Preload("Stages", orderedStages).Where("id = ?", id).First(&plan).Error
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

// GetActiveByUser 获取用户当前 active 计划
func (r *QuitPlanRepository) GetActiveByUser(userID int64) (*model.QuitPlan, error) {
	var plan model.QuitPlan
	err := r.db.Preload("Stages", orderedStages).
		Where("user_id = ? AND status = ?", userID, model.PlanActive).
		Order("id DESC").
		First(&plan).Error
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

// HasActive 是否已有 active 计划
func (r *QuitPlanRepository) HasActive(userID int64) (bool, error) {
	var count int64
	err := r.db.Model(&model.QuitPlan{}).Where("user_id = ? AND status = ?", userID, model.PlanActive).Count(&count).Error
	return count > 0, err
}

// ListHistory 已结束的计划
func (r *QuitPlanRepository) ListHistory(userID int64) ([]*model.QuitPlan, error) {
	var plans []*model.QuitPlan
	err := r.db.Preload("Stages", orderedStages).
		Where("user_id = ? AND status <> ?", userID, model.PlanActive).
		Order("id DESC").Find(&plans).Error
	return plans, err
}

// ListActive 所有 active 计划（定时任务用）
func (r *QuitPlanRepository) ListActive() ([]*model.QuitPlan, error) {
	var plans []*model.QuitPlan
	err := r.db.Preload("Stages", orderedStages).Where("status = ?", model.PlanActive).Find(&plans).Error
	return plans, err
}

// Transition active → status，返回是否由本次调用完成
func (r *QuitPlanRepository) Transition(id int64, status string, at time.Time) (bool, error) {
	fields := map[string]interface{}{"status": status}
	switch status {
	case model.PlanCancelled:
		fields["cancelled_at"] = at
	case model.PlanCompleted:
		fields["completed_at"] = at
	}

	result := r.db.Model(&model.QuitPlan{}).
		Where("id = ? AND status = ?", id, model.PlanActive).
		Updates(fields)
	return result.RowsAffected > 0, result.Error
}

// StageChange 一次更新中的阶段变化
type StageChange struct {
	Keep   []model.QuitStage // 已存在的阶段（按新顺序，可能被修改）
	Create []model.QuitStage
	Delete []int64
}

// ReplaceStages 在事务中更新理由、预计完成日期及阶段
func (r *QuitPlanRepository) ReplaceStages(planID int64, reason string, expected time.Time, change StageChange) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&model.QuitPlan{}).Where("id = ?", planID).Updates(map[string]interface{}{
			"reason":             reason,
			"expected_quit_date": expected,
		}).Error
		if err != nil {
			return err
		}

		if len(change.Delete) > 0 {
			if err := tx.Where("plan_id = ? AND id IN ?", planID, change.Delete).Delete(&model.QuitStage{}).Error; err != nil {
				return err
			}
		}

		for _, s := range change.Keep {
			err := tx.Model(&model.QuitStage{}).Where("id = ? AND plan_id = ?", s.ID, planID).Updates(map[string]interface{}{
				"order_number":     s.OrderNumber,
				"title":            s.Title,
				"description":      s.Description,
				"days_to_complete": s.DaysToComplete,
			}).Error
			if err != nil {
				return err
			}
		}

		for i := range change.Create {
			change.Create[i].PlanID = planID
		}
		if len(change.Create) > 0 {
			if err := tx.Create(&change.Create).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// CountByStatus 按状态统计计划数
func (r *QuitPlanRepository) CountByStatus(status string) (int64, error) {
	var count int64
	err := r.db.Model(&model.QuitPlan{}).Where("status = ?", status).Count(&count).Error
	return count, err
}
