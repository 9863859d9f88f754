package cron

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/breathfree/quit_go_server/internal/service"
)

// 每日提醒的本地时间（小时）
const reminderHour = 8

// Sweeper 定时维护任务
type Sweeper interface {
	Run(ctx context.Context, dryRun bool) (*service.SweepReport, error)
	QueueReminders(ctx context.Context, dryRun bool) (int, error)
}

type Service struct {
	sweeper  Sweeper
	interval time.Duration
	loc      *time.Location
	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

func NewService(sweeper Sweeper, interval time.Duration, loc *time.Location) *Service {
	if interval <= 0 {
		interval = time.Hour
	}
	if loc == nil {
		loc = time.Local
	}
	return &Service{
		sweeper:  sweeper,
		interval: interval,
		loc:      loc,
		stopChan: make(chan struct{}),
	}
}

// Start 启动定时任务
func (s *Service) Start() {
	s.wg.Add(2)
	go s.runSweep()
	go s.runDailyReminders()
	log.Info().Dur("interval", s.interval).Msg("cron service started (sweep + reminders)")
}

// Stop 停止定时任务并等待正在执行的任务结束
func (s *Service) Stop() {
	s.stopOnce.Do(func() { close(s.stopChan) })
	s.wg.Wait()
	log.Info().Msg("cron service stopped")
}

// runSweep 定期过期订阅、完成计划、关闭超时订单
func (s *Service) runSweep() {
	defer s.wg.Done()
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

// runDailyReminders 每天 reminderHour 点发送即将到期提醒
func (s *Service) runDailyReminders() {
	defer s.wg.Done()
	timer := time.NewTimer(time.Until(nextRun(time.Now(), s.loc, reminderHour)))
	defer timer.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-timer.C:
			s.remind()
			timer.Reset(time.Until(nextRun(time.Now(), s.loc, reminderHour)))
		}
	}
}

func (s *Service) sweep() {
	report, err := s.sweeper.Run(context.Background(), false)
	if err != nil {
		log.Error().Err(err).Msg("sweep failed")
		return
	}
	log.Info().Stringer("report", report).Msg("sweep completed")
}

func (s *Service) remind() {
	n, err := s.sweeper.QueueReminders(context.Background(), false)
	if err != nil {
		log.Error().Err(err).Msg("queue reminders failed")
		return
	}
	log.Info().Int("queued", n).Msg("expiry reminders queued")
}

// nextRun 返回 now 之后第一个 loc 时区的 hour 点
func nextRun(now time.Time, loc *time.Location, hour int) time.Time {
	local := now.In(loc)
	next := time.Date(local.Year(), local.Month(), local.Day(), hour, 0, 0, 0, loc)
	if !next.After(local) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// RunNow 立即执行一次清理和提醒（用于测试或手动触发）
func (s *Service) RunNow(ctx context.Context) (*service.SweepReport, error) {
	log.Info().Msg("manual sweep triggered")
	report, err := s.sweeper.Run(ctx, false)
	if err != nil {
		return nil, err
	}
	n, err := s.sweeper.QueueReminders(ctx, false)
	if err != nil {
		return report, err
	}
	report.RemindersQueued = n
	return report, nil
}
