package service

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/breathfree/quit_go_server/config"
	"github.com/breathfree/quit_go_server/internal/domain/progress"
	"github.com/breathfree/quit_go_server/internal/domain/quitplan"
	"github.com/breathfree/quit_go_server/internal/model"
	"github.com/breathfree/quit_go_server/internal/model/dto"
	"github.com/breathfree/quit_go_server/internal/pkg/metrics"
	"github.com/breathfree/quit_go_server/internal/pkg/report"
	"github.com/breathfree/quit_go_server/internal/repository"
)

var (
	ErrProgressLogNotFound = errors.New("Hôm nay bạn chưa ghi nhận tiến trình")
	ErrInvalidMood         = errors.New("Tâm trạng không hợp lệ")
)

// 报告中图表覆盖的天数
const reportChartDays = 14

type ProgressService struct {
	logRepo     *repository.ProgressLogRepository
	smokingRepo *repository.SmokingStatusRepository
	planRepo    *repository.QuitPlanRepository
	userRepo    *repository.UserRepository
	loc         *time.Location
	now         func() time.Time
}

func NewProgressService(
	logRepo *repository.ProgressLogRepository,
	smokingRepo *repository.SmokingStatusRepository,
	planRepo *repository.QuitPlanRepository,
	userRepo *repository.UserRepository,
	cfg *config.Config,
) *ProgressService {
	return &ProgressService{
		logRepo:     logRepo,
		smokingRepo: smokingRepo,
		planRepo:    planRepo,
		userRepo:    userRepo,
		loc:         cfg.Server.Location(),
		now:         time.Now,
	}
}

// LogToday 记录今天（业务时区）的情况，同一天重复提交会覆盖
func (s *ProgressService) LogToday(userID int64, req *dto.ProgressLogRequest) (*dto.ProgressLogInfo, error) {
	if !progress.ValidMood(req.Mood) {
		return nil, ErrInvalidMood
	}

	date := dateKey(s.now(), s.loc)
	entry := &model.ProgressLog{
		UserID:           userID,
		Date:             date,
		CigarettesPerDay: *req.CigarettesPerDay,
		Mood:             req.Mood,
		HealthNote:       req.HealthNote,
	}
	if err := s.logRepo.Upsert(entry); err != nil {
		return nil, err
	}
	metrics.ProgressLogsTotal.Inc()

	saved, err := s.logRepo.GetByDate(userID, date)
	if err != nil {
		return nil, err
	}
	baseline, err := loadBaseline(s.smokingRepo, userID)
	if err != nil {
		return nil, err
	}
	return toProgressLogInfo(saved, baseline), nil
}

func (s *ProgressService) Today(userID int64) (*dto.ProgressLogInfo, error) {
	entry, err := s.logRepo.GetByDate(userID, dateKey(s.now(), s.loc))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProgressLogNotFound
		}
		return nil, err
	}
	baseline, err := loadBaseline(s.smokingRepo, userID)
	if err != nil {
		return nil, err
	}
	return toProgressLogInfo(entry, baseline), nil
}

func (s *ProgressService) List(userID int64, page, pageSize int) ([]*dto.ProgressLogInfo, int64, error) {
	logs, total, err := s.logRepo.ListByUser(userID, page, pageSize)
	if err != nil {
		return nil, 0, err
	}
	baseline, err := loadBaseline(s.smokingRepo, userID)
	if err != nil {
		return nil, 0, err
	}

	items := make([]*dto.ProgressLogInfo, 0, len(logs))
	for _, l := range logs {
		items = append(items, toProgressLogInfo(l, baseline))
	}
	return items, total, nil
}

func (s *ProgressService) Statistics(userID int64) (*progress.Statistics, error) {
	entries, err := s.entriesSince(userID, "")
	if err != nil {
		return nil, err
	}
	baseline, err := loadBaseline(s.smokingRepo, userID)
	if err != nil {
		return nil, err
	}

	stats := progress.Summarize(entries, toProgressBaseline(baseline), s.now().In(s.loc))
	return &stats, nil
}

// Chart 最近 days 天的逐日数据，未记录的日期为空
func (s *ProgressService) Chart(userID int64, days int) ([]progress.ChartPoint, error) {
	now := s.now().In(s.loc)
	from := dateKey(now.AddDate(0, 0, -(days-1)), s.loc)
	entries, err := s.entriesSince(userID, from)
	if err != nil {
		return nil, err
	}
	return progress.Series(entries, days, now), nil
}

// Report 生成 PDF 进度报告
func (s *ProgressService) Report(userID int64) ([]byte, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	baseline, err := loadBaseline(s.smokingRepo, userID)
	if err != nil {
		return nil, err
	}
	stats, err := s.Statistics(userID)
	if err != nil {
		return nil, err
	}
	chart, err := s.Chart(userID, reportChartDays)
	if err != nil {
		return nil, err
	}

	now := s.now().In(s.loc)
	data := &report.Data{
		MemberName:        displayName(user),
		GeneratedAt:       now,
		CigarettesPerDay:  baseline.CigarettesPerDay,
		PricePerCigarette: baseline.PricePerCigarette,
		Stats:             *stats,
		Chart:             chart,
	}

	plan, err := s.planRepo.GetActiveByUser(userID)
	switch {
	case err == nil:
		domainPlan := toDomainPlan(plan, s.loc)
		start := domainPlan.StartDate
		expected := plan.ExpectedQuitDate.In(s.loc)
		data.PlanReason = plan.Reason
		data.PlanStart = &start
		data.ExpectedQuitDate = &expected
		for _, sp := range quitplan.ComputeCurrentStage(domainPlan, now).Stages {
			data.Stages = append(data.Stages, report.Stage{
				Title:    sp.Title,
				Days:     sp.DaysToComplete,
				Status:   string(sp.Status),
				Progress: sp.ProgressPercentage,
			})
		}
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, err
	}

	return report.Generate(data)
}

func (s *ProgressService) entriesSince(userID int64, from string) ([]progress.Entry, error) {
	logs, err := s.logRepo.ListSince(userID, from)
	if err != nil {
		return nil, err
	}

	entries := make([]progress.Entry, 0, len(logs))
	for _, l := range logs {
		date, err := time.ParseInLocation("2006-01-02", l.Date, s.loc)
		if err != nil {
			continue
		}
		entries = append(entries, progress.Entry{
			Date:             date,
			CigarettesPerDay: l.CigarettesPerDay,
			Mood:             l.Mood,
		})
	}
	return entries, nil
}

func toProgressBaseline(b quitplan.Baseline) progress.Baseline {
	return progress.Baseline{
		CigarettesPerDay:  b.CigarettesPerDay,
		PricePerCigarette: b.PricePerCigarette,
	}
}

func toProgressLogInfo(l *model.ProgressLog, baseline quitplan.Baseline) *dto.ProgressLogInfo {
	info := &dto.ProgressLogInfo{
		ID:               l.ID,
		Date:             l.Date,
		CigarettesPerDay: l.CigarettesPerDay,
		Mood:             l.Mood,
		HealthNote:       l.HealthNote,
		UpdatedAt:        l.UpdatedAt,
	}
	if avoided := baseline.CigarettesPerDay - float64(l.CigarettesPerDay); avoided > 0 {
		info.CigarettesAvoided = avoided
		info.MoneySaved = avoided * baseline.PricePerCigarette
	}
	return info
}

func displayName(u *model.User) string {
	if u.FullName != "" {
		return u.FullName
	}
	return u.Username
}
