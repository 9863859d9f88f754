package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// 通知类型
const (
	KindExpiryReminder = "expiry_reminder"
	KindPaymentReceipt = "payment_receipt"
	KindWelcome        = "welcome"
)

type Queue struct {
	client    *redis.Client
	queueName string
}

// Notification 通知任务
type Notification struct {
	Kind           string    `json:"kind"`
	UserID         int64     `json:"user_id"`
	SubscriptionID int64     `json:"subscription_id,omitempty"`
	MembershipName string    `json:"membership_name,omitempty"`
	Amount         int64     `json:"amount,omitempty"`
	EndDate        time.Time `json:"end_date,omitempty"`
	DaysRemaining  int       `json:"days_remaining,omitempty"`
	EnqueuedAt     time.Time `json:"enqueued_at"`
}

func NewQueue(client *redis.Client, queueName string) *Queue {
	return &Queue{
		client:    client,
		queueName: queueName,
	}
}

// Push 将任务加入队列
func (q *Queue) Push(ctx context.Context, msg *Notification) error {
	if msg.EnqueuedAt.IsZero() {
		msg.EnqueuedAt = time.Now()
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	return q.client.LPush(ctx, q.queueName, data).Err()
}

// Pop 从队列获取任务（阻塞）
func (q *Queue) Pop(ctx context.Context, timeout time.Duration) (*Notification, error) {
	result, err := q.client.BRPop(ctx, timeout, q.queueName).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // 超时，无任务
		}
		return nil, fmt.Errorf("failed to pop from queue: %w", err)
	}

	if len(result) < 2 {
		return nil, nil
	}

	var msg Notification
	if err := json.Unmarshal([]byte(result[1]), &msg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal message: %w", err)
	}

	return &msg, nil
}

// Length 获取队列长度
func (q *Queue) Length(ctx context.Context) (int64, error) {
	return q.client.LLen(ctx, q.queueName).Result()
}
