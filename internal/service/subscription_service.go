package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/breathfree/quit_go_server/config"
	"github.com/breathfree/quit_go_server/internal/domain/quitplan"
	"github.com/breathfree/quit_go_server/internal/domain/subscription"
	"github.com/breathfree/quit_go_server/internal/model"
	"github.com/breathfree/quit_go_server/internal/model/dto"
	"github.com/breathfree/quit_go_server/internal/repository"
)

var (
	ErrNoActiveSubscription = quitplan.ErrNoActiveSubscription
	ErrSubscriptionNotFound = errors.New("Không tìm thấy gói thành viên")
)

const (
	snapshotKeyPrefix = "subscription:snapshot:"
	snapshotTTL       = time.Minute
)

type SubscriptionService struct {
	subRepo *repository.SubscriptionRepository
	rdb     *redis.Client
	cfg     *config.Config
	now     func() time.Time
}

// NewSubscriptionService rdb 可为 nil，此时不缓存快照
func NewSubscriptionService(subRepo *repository.SubscriptionRepository, rdb *redis.Client, cfg *config.Config) *SubscriptionService {
	return &SubscriptionService{
		subRepo: subRepo,
		rdb:     rdb,
		cfg:     cfg,
		now:     time.Now,
	}
}

// Snapshot 从数据库重新计算订阅快照（不使用缓存）
func (s *SubscriptionService) Snapshot(userID int64) (subscription.Snapshot, *model.Subscription, error) {
	now := s.now()
	sub, err := s.subRepo.GetActiveByUser(userID, now)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return subscription.Snapshot{}, nil, nil
		}
		return subscription.Snapshot{}, nil, err
	}

	snap := subscription.Compute(&subscription.Period{
		StartDate: sub.StartDate,
		EndDate:   sub.EndDate,
		Cancelled: sub.Status == model.SubscriptionCancelled,
	}, now, s.cfg.Plan.ExpiringSoonDays)
	if !snap.HasActiveSubscription {
		return snap, nil, nil
	}
	return snap, sub, nil
}

// GetStatus 当前订阅状态
func (s *SubscriptionService) GetStatus(userID int64) (*dto.SubscriptionStatus, error) {
	snap, sub, err := s.Snapshot(userID)
	if err != nil {
		return nil, err
	}

	status := &dto.SubscriptionStatus{
		HasActiveSubscription: snap.HasActiveSubscription,
		DaysRemaining:         snap.DaysRemaining,
		IsExpiringSoon:        snap.IsExpiringSoon,
	}
	if sub != nil {
		status.Subscription = toSubscriptionInfo(sub)
	}
	return status, nil
}

// CheckAccess 功能门禁，命中缓存时不查库
func (s *SubscriptionService) CheckAccess(ctx context.Context, userID int64) (bool, error) {
	if cached, ok := s.cachedSnapshot(ctx, userID); ok {
		return cached.Allows(), nil
	}

	snap, _, err := s.Snapshot(userID)
	if err != nil {
		return false, err
	}
	s.cacheSnapshot(ctx, userID, snap)
	return snap.Allows(), nil
}

// Invalidate 订阅变化后清除缓存
func (s *SubscriptionService) Invalidate(ctx context.Context, userID int64) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, snapshotKey(userID)).Err(); err != nil {
		log.Warn().Err(err).Int64("user_id", userID).Msg("failed to invalidate subscription snapshot")
	}
}

// History 订阅历史
func (s *SubscriptionService) History(userID int64) ([]*dto.SubscriptionInfo, error) {
	subs, err := s.subRepo.ListByUser(userID)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.SubscriptionInfo, 0, len(subs))
	for _, sub := range subs {
		items = append(items, toSubscriptionInfo(sub))
	}
	return items, nil
}

// Cancel 取消当前订阅，进行中的计划保留到下次获取时处理
func (s *SubscriptionService) Cancel(ctx context.Context, userID int64) (*dto.SubscriptionInfo, error) {
	_, sub, err := s.Snapshot(userID)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, ErrNoActiveSubscription
	}

	now := s.now()
	ok, err := s.subRepo.Cancel(sub.ID, now)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNoActiveSubscription
	}
	s.Invalidate(ctx, userID)

	sub.Status = model.SubscriptionCancelled
	sub.CancelledAt = &now
	return toSubscriptionInfo(sub), nil
}

func snapshotKey(userID int64) string {
	return fmt.Sprintf("%s%d", snapshotKeyPrefix, userID)
}

func (s *SubscriptionService) cachedSnapshot(ctx context.Context, userID int64) (subscription.Snapshot, bool) {
	var snap subscription.Snapshot
	if s.rdb == nil {
		return snap, false
	}
	data, err := s.rdb.Get(ctx, snapshotKey(userID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Warn().Err(err).Int64("user_id", userID).Msg("failed to read subscription snapshot")
		}
		return snap, false
	}
	if err := json.Unmarshal(data, &snap); err != nil {
		return snap, false
	}
	return snap, true
}

func (s *SubscriptionService) cacheSnapshot(ctx context.Context, userID int64, snap subscription.Snapshot) {
	if s.rdb == nil {
		return
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return
	}
	if err := s.rdb.Set(ctx, snapshotKey(userID), data, snapshotTTL).Err(); err != nil {
		log.Warn().Err(err).Int64("user_id", userID).Msg("failed to cache subscription snapshot")
	}
}
