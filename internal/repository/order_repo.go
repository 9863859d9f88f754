package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/breathfree/quit_go_server/internal/model"
)

type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// WithTx 返回绑定事务的仓库
func (r *OrderRepository) WithTx(tx *gorm.DB) *OrderRepository {
	return &OrderRepository{db: tx}
}

func (r *OrderRepository) Create(order *model.PaymentOrder) error {
	return r.db.Create(order).Error
}

func (r *OrderRepository) GetByTxnRef(txnRef string) (*model.PaymentOrder, error) {
	var order model.PaymentOrder
	err := r.db.Where("txn_ref = ?", txnRef).First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// MarkPaid pending → paid，返回是否由本次调用完成转换
func (r *OrderRepository) MarkPaid(txnRef string, fields map[string]interface{}) (bool, error) {
	fields["status"] = model.OrderPaid
	result := r.db.Model(&model.PaymentOrder{}).
		Where("txn_ref = ? AND status = ?", txnRef, model.OrderPending).
		Updates(fields)
	return result.RowsAffected > 0, result.Error
}

// MarkFailed pending → failed
func (r *OrderRepository) MarkFailed(txnRef, responseCode string) (bool, error) {
	result := r.db.Model(&model.PaymentOrder{}).
		Where("txn_ref = ? AND status = ?", txnRef, model.OrderPending).
		Updates(map[string]interface{}{
			"status":        model.OrderFailed,
			"response_code": responseCode,
		})
	return result.RowsAffected > 0, result.Error
}

// SetSubscription 记录订单对应的订阅
func (r *OrderRepository) SetSubscription(txnRef string, subscriptionID int64) error {
	return r.db.Model(&model.PaymentOrder{}).Where("txn_ref = ?", txnRef).
		Update("subscription_id", subscriptionID).Error
}

// FailStale 将超时未支付的订单标记为失败
func (r *OrderRepository) FailStale(before time.Time) (int64, error) {
	result := r.db.Model(&model.PaymentOrder{}).
		Where("status = ? AND created_at < ?", model.OrderPending, before).
		Updates(map[string]interface{}{
			"status":        model.OrderFailed,
			"response_code": "11",
		})
	return result.RowsAffected, result.Error
}

// CountStale 与 FailStale 条件相同，只统计不修改
func (r *OrderRepository) CountStale(before time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&model.PaymentOrder{}).
		Where("status = ? AND created_at < ?", model.OrderPending, before).
		Count(&count).Error
	return count, err
}

// TotalRevenue 已支付订单总额
func (r *OrderRepository) TotalRevenue() (int64, error) {
	var total int64
	err := r.db.Model(&model.PaymentOrder{}).
		Where("status = ?", model.OrderPaid).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	return total, err
}

// ListPaidSince 获取 since 之后支付的订单
func (r *OrderRepository) ListPaidSince(since time.Time) ([]*model.PaymentOrder, error) {
	var orders []*model.PaymentOrder
	err := r.db.Where("status = ? AND paid_at >= ?", model.OrderPaid, since).
		Order("paid_at ASC").Find(&orders).Error
	return orders, err
}
