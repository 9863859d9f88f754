package repository

import (
	"gorm.io/gorm"

	"github.com/breathfree/quit_go_server/internal/model"
)

type FeedbackRepository struct {
	db *gorm.DB
}

func NewFeedbackRepository(db *gorm.DB) *FeedbackRepository {
	return &FeedbackRepository{db: db}
}

// CreateFeedback 创建反馈
func (r *FeedbackRepository) CreateFeedback(f *model.Feedback) error {
	return r.db.Create(f).Error
}

// ListFeedback 后台反馈列表
func (r *FeedbackRepository) ListFeedback(status string, page, pageSize int) ([]*model.Feedback, int64, error) {
	var list []*model.Feedback
	var total int64

	query := r.db.Model(&model.Feedback{}).Preload("User")
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	if err := query.Order("created_at DESC").Offset(offset).Limit(pageSize).Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// UpdateFeedbackStatus 更新状态，返回是否存在
func (r *FeedbackRepository) UpdateFeedbackStatus(id int64, status string) (bool, error) {
	result := r.db.Model(&model.Feedback{}).Where("id = ?", id).Update("status", status)
	return result.RowsAffected > 0, result.Error
}

// DeleteFeedback 删除反馈
func (r *FeedbackRepository) DeleteFeedback(id int64) (bool, error) {
	result := r.db.Delete(&model.Feedback{}, id)
	return result.RowsAffected > 0, result.Error
}

// CreateRating 创建评分
func (r *FeedbackRepository) CreateRating(rating *model.Rating) error {
	return r.db.Create(rating).Error
}

// ListRatings 后台评分列表
func (r *FeedbackRepository) ListRatings(page, pageSize int) ([]*model.Rating, int64, error) {
	var list []*model.Rating
	var total int64

	query := r.db.Model(&model.Rating{}).Preload("User")
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	if err := query.Order("created_at DESC").Offset(offset).Limit(pageSize).Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// DeleteRating 删除评分
func (r *FeedbackRepository) DeleteRating(id int64) (bool, error) {
	result := r.db.Delete(&model.Rating{}, id)
	return result.RowsAffected > 0, result.Error
}

// AverageRating 平均分
func (r *FeedbackRepository) AverageRating() (float64, error) {
	var avg float64
	err := r.db.Model(&model.Rating{}).Select("COALESCE(AVG(score), 0)").Scan(&avg).Error
	return avg, err
}
