package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog/log"

	"github.com/breathfree/quit_go_server/config"
	"github.com/breathfree/quit_go_server/internal/domain/subscription"
	"github.com/breathfree/quit_go_server/internal/pkg/queue"
	"github.com/breathfree/quit_go_server/internal/repository"
)

const reminderKeyPrefix = "reminder:sent:"

// SweepReport 一次清理的结果；DryRun 时为待处理数量
type SweepReport struct {
	DryRun               bool
	ExpiredSubscriptions int64
	CompletedPlans       int
	FailedOrders         int64
	RemindersQueued      int
}

func (r SweepReport) String() string {
	return fmt.Sprintf("expired=%d completed=%d failed_orders=%d reminders=%d dry_run=%t",
		r.ExpiredSubscriptions, r.CompletedPlans, r.FailedOrders, r.RemindersQueued, r.DryRun)
}

// SweepService 定时维护任务
type SweepService struct {
	subRepo       *repository.SubscriptionRepository
	orderRepo     *repository.OrderRepository
	planService   *QuitPlanService
	notifications NotificationQueue
	rdb           *redis.Client
	orderTTL      time.Duration
	expiringDays  int
	loc           *time.Location
	now           func() time.Time
}

func NewSweepService(
	subRepo *repository.SubscriptionRepository,
	orderRepo *repository.OrderRepository,
	planService *QuitPlanService,
	notifications NotificationQueue,
	rdb *redis.Client,
	cfg *config.Config,
) *SweepService {
	days := cfg.Plan.ExpiringSoonDays
	if days <= 0 {
		days = subscription.DefaultExpiringSoonDays
	}
	return &SweepService{
		subRepo:       subRepo,
		orderRepo:     orderRepo,
		planService:   planService,
		notifications: notifications,
		rdb:           rdb,
		orderTTL:      cfg.Payment.OrderTTLDuration(),
		expiringDays:  days,
		loc:           cfg.Server.Location(),
		now:           time.Now,
	}
}

// Run 过期订阅、完成已走完的计划、关闭超时订单
func (s *SweepService) Run(ctx context.Context, dryRun bool) (*SweepReport, error) {
	now := s.now()
	report := &SweepReport{DryRun: dryRun}
	staleBefore := now.Add(-s.orderTTL)

	var err error
	if dryRun {
		if report.ExpiredSubscriptions, err = s.subRepo.CountExpiredBefore(now); err != nil {
			return nil, err
		}
		if report.FailedOrders, err = s.orderRepo.CountStale(staleBefore); err != nil {
			return nil, err
		}
	} else {
		if report.ExpiredSubscriptions, err = s.subRepo.ExpireBefore(now); err != nil {
			return nil, err
		}
		if report.FailedOrders, err = s.orderRepo.FailStale(staleBefore); err != nil {
			return nil, err
		}
	}

	if report.CompletedPlans, err = s.planService.CompleteFinished(dryRun); err != nil {
		return nil, err
	}

	log.Info().Str("report", report.String()).Msg("sweep finished")
	return report, nil
}

// QueueReminders 为即将到期的订阅发送提醒，每个订阅每天最多一次
func (s *SweepService) QueueReminders(ctx context.Context, dryRun bool) (int, error) {
	now := s.now()
	subs, err := s.subRepo.ListEndingBetween(now, now.AddDate(0, 0, s.expiringDays))
	if err != nil {
		return 0, err
	}
	if dryRun || s.notifications == nil {
		return len(subs), nil
	}

	today := dateKey(now, s.loc)
	queued := 0
	for _, sub := range subs {
		if !s.markReminder(ctx, sub.ID, today) {
			continue
		}

		msg := &queue.Notification{
			Kind:           queue.KindExpiryReminder,
			UserID:         sub.UserID,
			SubscriptionID: sub.ID,
			EndDate:        sub.EndDate,
			DaysRemaining:  subscription.DaysRemaining(sub.EndDate, now),
		}
		if sub.Membership != nil {
			msg.MembershipName = sub.Membership.Name
		}
		if err := s.notifications.Push(ctx, msg); err != nil {
			log.Warn().Err(err).Int64("subscription_id", sub.ID).Msg("failed to enqueue expiry reminder")
			continue
		}
		queued++
	}

	log.Info().Int("candidates", len(subs)).Int("queued", queued).Msg("expiry reminders queued")
	return queued, nil
}

// markReminder 没有 redis 时不去重
func (s *SweepService) markReminder(ctx context.Context, subID int64, day string) bool {
	if s.rdb == nil {
		return true
	}
	key := fmt.Sprintf("%s%d:%s", reminderKeyPrefix, subID, day)
	ok, err := s.rdb.SetNX(ctx, key, 1, 36*time.Hour).Result()
	if err != nil {
		log.Warn().Err(err).Int64("subscription_id", subID).Msg("failed to mark reminder")
		return true
	}
	return ok
}
