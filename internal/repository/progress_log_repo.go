package repository

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/breathfree/quit_go_server/internal/model"
)

type ProgressLogRepository struct {
	db *gorm.DB
}

func NewProgressLogRepository(db *gorm.DB) *ProgressLogRepository {
	return &ProgressLogRepository{db: db}
}

// Upsert 按 (user_id, date) 覆盖当天记录
func (r *ProgressLogRepository) Upsert(log *model.ProgressLog) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{"cigarettes_per_day", "mood", "health_note", "updated_at"}),
	}).Create(log).Error
}

func (r *ProgressLogRepository) GetByDate(userID int64, date string) (*model.ProgressLog, error) {
	var log model.ProgressLog
	err := r.db.Where("user_id = ? AND date = ?", userID, date).First(&log).Error
	if err != nil {
		return nil, err
	}
	return &log, nil
}

// ListByUser 分页历史，最新在前
func (r *ProgressLogRepository) ListByUser(userID int64, page, pageSize int) ([]*model.ProgressLog, int64, error) {
	var logs []*model.ProgressLog
	var total int64

	query := r.db.Model(&model.ProgressLog{}).Where("user_id = ?", userID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	if err := query.Order("date DESC").Offset(offset).Limit(pageSize).Find(&logs).Error; err != nil {
		return nil, 0, err
	}
	return logs, total, nil
}

// ListSince date >= from（YYYY-MM-DD 可直接按字符串比较）
func (r *ProgressLogRepository) ListSince(userID int64, from string) ([]*model.ProgressLog, error) {
	var logs []*model.ProgressLog
	query := r.db.Where("user_id = ?", userID)
	if from != "" {
		query = query.Where("date >= ?", from)
	}
	err := query.Order("date ASC").Find(&logs).Error
	return logs, err
}

// Count 全部打卡数
func (r *ProgressLogRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&model.ProgressLog{}).Count(&count).Error
	return count, err
}
