package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/breathfree/quit_go_server/internal/model"
)

type SubscriptionRepository struct {
	db *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

// WithTx 返回绑定事务的仓库
func (r *SubscriptionRepository) WithTx(tx *gorm.DB) *SubscriptionRepository {
	return &SubscriptionRepository{db: tx}
}

func (r *SubscriptionRepository) Create(sub *model.Subscription) error {
	return r.db.Create(sub).Error
}

func (r *SubscriptionRepository) GetByID(id int64) (*model.Subscription, error) {
	var sub model.Subscription
	err := r.db.Preload("Membership").Where("id = ?", id).First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// GetActiveByUser 获取当前有效订阅（状态 active 且未到期），取到期最晚的一条
func (r *SubscriptionRepository) GetActiveByUser(userID int64, now time.Time) (*model.Subscription, error) {
	var sub model.Subscription
	err := r.db.Preload("Membership").
		Where("user_id = ? AND status = ? AND end_date > ?", userID, model.SubscriptionActive, now).
		Order("end_date DESC").
		First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// ListByUser 订阅历史
func (r *SubscriptionRepository) ListByUser(userID int64) ([]*model.Subscription, error) {
	var subs []*model.Subscription
	err := r.db.Preload("Membership").Where("user_id = ?", userID).
		Order("created_at DESC").Find(&subs).Error
	return subs, err
}

// UpdateEndDate 延长到期时间
func (r *SubscriptionRepository) UpdateEndDate(id int64, end time.Time) error {
	return r.db.Model(&model.Subscription{}).Where("id = ?", id).Updates(map[string]interface{}{
		"end_date": end,
		"status":   model.SubscriptionActive,
	}).Error
}

// Cancel 取消订阅，仅 active → cancelled
func (r *SubscriptionRepository) Cancel(id int64, at time.Time) (bool, error) {
	result := r.db.Model(&model.Subscription{}).
		Where("id = ? AND status = ?", id, model.SubscriptionActive).
		Updates(map[string]interface{}{
			"status":       model.SubscriptionCancelled,
			"cancelled_at": at,
		})
	return result.RowsAffected > 0, result.Error
}

// ExpireBefore 将已过期的 active 订阅标记为 expired
func (r *SubscriptionRepository) ExpireBefore(now time.Time) (int64, error) {
	result := r.db.Model(&model.Subscription{}).
		Where("status = ? AND end_date <= ?", model.SubscriptionActive, now).
		Update("status", model.SubscriptionExpired)
	return result.RowsAffected, result.Error
}

// CountExpiredBefore 与 ExpireBefore 条件相同，只统计不修改
func (r *SubscriptionRepository) CountExpiredBefore(now time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&model.Subscription{}).
		Where("status = ? AND end_date <= ?", model.SubscriptionActive, now).
		Count(&count).Error
	return count, err
}

// ListEndingBetween 到期时间落在 (from, to] 的 active 订阅
func (r *SubscriptionRepository) ListEndingBetween(from, to time.Time) ([]*model.Subscription, error) {
	var subs []*model.Subscription
	err := r.db.Preload("Membership").
		Where("status = ? AND end_date > ? AND end_date <= ?", model.SubscriptionActive, from, to).
		Find(&subs).Error
	return subs, err
}

// CountActive 当前有效订阅数
func (r *SubscriptionRepository) CountActive(now time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&model.Subscription{}).
		Where("status = ? AND end_date > ?", model.SubscriptionActive, now).
		Count(&count).Error
	return count, err
}

// MembershipCount 按套餐统计订阅数
type MembershipCount struct {
	MembershipID int64
	Name         string
	Count        int64
}

// CountByMembership 按套餐分组统计
func (r *SubscriptionRepository) CountByMembership() ([]MembershipCount, error) {
	var rows []MembershipCount
	err := r.db.Model(&model.Subscription{}).
		Select("subscriptions.membership_id AS membership_id, memberships.name AS name, COUNT(*) AS count").
		Joins("LEFT JOIN memberships ON memberships.id = subscriptions.membership_id").
		Group("subscriptions.membership_id, memberships.name").
		Order("count DESC").
		Scan(&rows).Error
	return rows, err
}
