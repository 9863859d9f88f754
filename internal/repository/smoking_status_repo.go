package repository

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/breathfree/quit_go_server/internal/model"
)

type SmokingStatusRepository struct {
	db *gorm.DB
}

func NewSmokingStatusRepository(db *gorm.DB) *SmokingStatusRepository {
	return &SmokingStatusRepository{db: db}
}

func (r *SmokingStatusRepository) GetByUser(userID int64) (*model.SmokingStatus, error) {
	var status model.SmokingStatus
	err := r.db.Where("user_id = ?", userID).First(&status).Error
	if err != nil {
		return nil, err
	}
	return &status, nil
}

// Upsert 每个用户一条，按 user_id 覆盖
func (r *SmokingStatusRepository) Upsert(status *model.SmokingStatus) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"cigarettes_per_day", "price_per_cigarette", "smoking_years", "notes", "updated_at"}),
	}).Create(status).Error
}

// DeleteByUser 删除基线，返回是否存在
func (r *SmokingStatusRepository) DeleteByUser(userID int64) (bool, error) {
	result := r.db.Where("user_id = ?", userID).Delete(&model.SmokingStatus{})
	return result.RowsAffected > 0, result.Error
}
