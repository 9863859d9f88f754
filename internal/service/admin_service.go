package service

import (
	"context"
	"errors"
	"math"
	"time"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/breathfree/quit_go_server/config"
	"github.com/breathfree/quit_go_server/internal/model"
	"github.com/breathfree/quit_go_server/internal/model/dto"
	"github.com/breathfree/quit_go_server/internal/pkg/export"
	"github.com/breathfree/quit_go_server/internal/repository"
)

var ErrCannotModifySelf = errors.New("Không thể thay đổi vai trò hoặc trạng thái của chính mình")

// 统计中按月收入覆盖的月数
const revenueMonths = 12

type AdminService struct {
	userRepo     *repository.UserRepository
	subRepo      *repository.SubscriptionRepository
	orderRepo    *repository.OrderRepository
	planRepo     *repository.QuitPlanRepository
	feedbackRepo *repository.FeedbackRepository
	logRepo      *repository.ProgressLogRepository
	loc          *time.Location
	now          func() time.Time
}

func NewAdminService(
	userRepo *repository.UserRepository,
	subRepo *repository.SubscriptionRepository,
	orderRepo *repository.OrderRepository,
	planRepo *repository.QuitPlanRepository,
	feedbackRepo *repository.FeedbackRepository,
	logRepo *repository.ProgressLogRepository,
	cfg *config.Config,
) *AdminService {
	return &AdminService{
		userRepo:     userRepo,
		subRepo:      subRepo,
		orderRepo:    orderRepo,
		planRepo:     planRepo,
		feedbackRepo: feedbackRepo,
		logRepo:      logRepo,
		loc:          cfg.Server.Location(),
		now:          time.Now,
	}
}

func (s *AdminService) ListUsers(req *dto.AdminUserListRequest) ([]*dto.UserInfo, int64, error) {
	users, total, err := s.userRepo.List(repository.UserFilter{
		Keyword: req.Keyword,
		Role:    req.Role,
		Status:  req.Status,
	}, req.Page, req.PageSize)
	if err != nil {
		return nil, 0, err
	}

	items := make([]*dto.UserInfo, 0, len(users))
	for _, u := range users {
		items = append(items, toUserInfo(u))
	}
	return items, total, nil
}

// UpdateUser 修改角色或状态，管理员不能修改自己
func (s *AdminService) UpdateUser(adminID, userID int64, req *dto.AdminUpdateUserRequest) (*dto.UserInfo, error) {
	if adminID == userID {
		return nil, ErrCannotModifySelf
	}

	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	fields := map[string]interface{}{}
	if req.Role != nil {
		fields["role"] = *req.Role
		user.Role = *req.Role
	}
	if req.Status != nil {
		fields["status"] = *req.Status
		user.Status = *req.Status
	}
	if len(fields) > 0 {
		if err := s.userRepo.UpdateFields(userID, fields); err != nil {
			return nil, err
		}
	}
	return toUserInfo(user), nil
}

func (s *AdminService) DeleteUser(adminID, userID int64) error {
	if adminID == userID {
		return ErrCannotModifySelf
	}
	if _, err := s.userRepo.GetByID(userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	return s.userRepo.Delete(userID)
}

// ExportUsers 导出用户表
func (s *AdminService) ExportUsers(req *dto.AdminExportRequest) (*export.Table, error) {
	users, err := s.userRepo.ListAll(repository.UserFilter{
		Keyword: req.Keyword,
		Role:    req.Role,
		Status:  req.Status,
	})
	if err != nil {
		return nil, err
	}

	table := &export.Table{
		Sheet:   "Users",
		Headers: []string{"ID", "Tên đăng nhập", "Email", "Họ tên", "Số điện thoại", "Vai trò", "Trạng thái", "Ngày tạo"},
		Rows:    make([][]interface{}, 0, len(users)),
	}
	for _, u := range users {
		email := ""
		if u.Email != nil {
			email = *u.Email
		}
		table.Rows = append(table.Rows, []interface{}{
			u.ID, u.Username, email, u.FullName, u.Phone, u.Role, u.Status,
			u.CreatedAt.In(s.loc).Format("2006-01-02 15:04"),
		})
	}
	return table, nil
}

// Statistics 后台概览，各项查询并发执行
func (s *AdminService) Statistics(ctx context.Context) (*dto.MembershipStatistics, error) {
	now := s.now()
	stats := &dto.MembershipStatistics{PlansByStatus: map[string]int64{}}
	planCounts := make([]int64, 3)
	planStatuses := []string{model.PlanActive, model.PlanCompleted, model.PlanCancelled}

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		stats.TotalMembers, err = s.userRepo.CountByRole(model.RoleMember)
		return err
	})
	g.Go(func() (err error) {
		stats.TotalCoaches, err = s.userRepo.CountByRole(model.RoleCoach)
		return err
	})
	g.Go(func() (err error) {
		var admins int64
		admins, err = s.userRepo.CountByRole(model.RoleAdmin)
		stats.TotalUsers = admins
		return err
	})
	g.Go(func() (err error) {
		stats.ActiveSubscriptions, err = s.subRepo.CountActive(now)
		return err
	})
	g.Go(func() (err error) {
		stats.TotalRevenue, err = s.orderRepo.TotalRevenue()
		return err
	})
	g.Go(func() (err error) {
		var avg float64
		avg, err = s.feedbackRepo.AverageRating()
		stats.AverageRating = math.Round(avg*100) / 100
		return err
	})
	g.Go(func() (err error) {
		stats.ProgressLogs, err = s.logRepo.Count()
		return err
	})
	for i, status := range planStatuses {
		i, status := i, status
		g.Go(func() (err error) {
			planCounts[i], err = s.planRepo.CountByStatus(status)
			return err
		})
	}
	g.Go(func() error {
		rows, err := s.subRepo.CountByMembership()
		if err != nil {
			return err
		}
		stats.SubscriptionsByPlan = make([]dto.PlanCount, 0, len(rows))
		for _, r := range rows {
			stats.SubscriptionsByPlan = append(stats.SubscriptionsByPlan, dto.PlanCount{
				MembershipID: r.MembershipID,
				Name:         r.Name,
				Count:        r.Count,
			})
		}
		return nil
	})
	g.Go(func() error {
		months, err := s.revenueByMonth(now)
		stats.RevenueByMonth = months
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats.TotalUsers += stats.TotalMembers + stats.TotalCoaches
	for i, status := range planStatuses {
		stats.PlansByStatus[status] = planCounts[i]
	}
	return stats, nil
}

// revenueByMonth 最近几个月（含本月）的收入，没有订单的月份为 0
func (s *AdminService) revenueByMonth(now time.Time) ([]dto.MonthRevenue, error) {
	local := now.In(s.loc)
	first := time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, s.loc).AddDate(0, -(revenueMonths - 1), 0)

	orders, err := s.orderRepo.ListPaidSince(first)
	if err != nil {
		return nil, err
	}

	months := make([]dto.MonthRevenue, revenueMonths)
	index := make(map[string]int, revenueMonths)
	for i := range months {
		key := first.AddDate(0, i, 0).Format("2006-01")
		months[i].Month = key
		index[key] = i
	}
	for _, o := range orders {
		if o.PaidAt == nil {
			continue
		}
		if i, ok := index[o.PaidAt.In(s.loc).Format("2006-01")]; ok {
			months[i].Revenue += o.Amount
			months[i].Orders++
		}
	}
	return months, nil
}
