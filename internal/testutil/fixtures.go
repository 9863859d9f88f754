package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/breathfree/quit_go_server/internal/model"
)

var seq int64

func next() int64 {
	return atomic.AddInt64(&seq, 1)
}

// TestUser 创建测试用户
func TestUser(t *testing.T, db *gorm.DB, opts ...func(*model.User)) *model.User {
	t.Helper()

	n := next()
	email := fmt.Sprintf("test_%d_%d@example.com", time.Now().UnixNano(), n)
	passwordHash := "$2a$10$abcdefghijklmnopqrstuvwxyz123456" // bcrypt hash placeholder
	user := &model.User{
		Username:     fmt.Sprintf("testuser_%d", n),
		Email:        &email,
		PasswordHash: &passwordHash,
		Role:         model.RoleMember,
		Status:       model.UserStatusActive,
	}

	for _, opt := range opts {
		opt(user)
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	return user
}

// WithUsername 设置用户名
func WithUsername(username string) func(*model.User) {
	return func(u *model.User) {
		u.Username = username
	}
}

// WithEmail 设置邮箱
func WithEmail(email string) func(*model.User) {
	return func(u *model.User) {
		u.Email = &email
	}
}

// WithPasswordHash 设置密码哈希
func WithPasswordHash(hash string) func(*model.User) {
	return func(u *model.User) {
		u.PasswordHash = &hash
	}
}

// WithRole 设置角色
func WithRole(role string) func(*model.User) {
	return func(u *model.User) {
		u.Role = role
	}
}

// WithUserStatus 设置账号状态
func WithUserStatus(status string) func(*model.User) {
	return func(u *model.User) {
		u.Status = status
	}
}

// TestMembership 创建测试套餐
func TestMembership(t *testing.T, db *gorm.DB, opts ...func(*model.Membership)) *model.Membership {
	t.Helper()

	m := &model.Membership{
		Name:         fmt.Sprintf("Gói %d", next()),
		Price:        99000,
		DurationDays: 30,
		Description:  "Gói thành viên cơ bản",
		Features:     model.StringSlice{"Kế hoạch cai thuốc", "Trò chuyện với huấn luyện viên"},
		IsActive:     true,
	}

	for _, opt := range opts {
		opt(m)
	}

	if err := db.Create(m).Error; err != nil {
		t.Fatalf("Failed to create test membership: %v", err)
	}

	return m
}

// WithDuration 设置套餐天数
func WithDuration(days int) func(*model.Membership) {
	return func(m *model.Membership) {
		m.DurationDays = days
	}
}

// WithPrice 设置价格
func WithPrice(price int64) func(*model.Membership) {
	return func(m *model.Membership) {
		m.Price = price
	}
}

// TestSubscription 创建测试订阅，默认从现在起 daysLeft 天后到期
func TestSubscription(t *testing.T, db *gorm.DB, userID, membershipID int64, daysLeft int, opts ...func(*model.Subscription)) *model.Subscription {
	t.Helper()

	now := time.Now()
	sub := &model.Subscription{
		UserID:       userID,
		MembershipID: membershipID,
		StartDate:    now.AddDate(0, 0, -1),
		EndDate:      now.AddDate(0, 0, daysLeft),
		Status:       model.SubscriptionActive,
	}

	for _, opt := range opts {
		opt(sub)
	}

	if err := db.Create(sub).Error; err != nil {
		t.Fatalf("Failed to create test subscription: %v", err)
	}

	return sub
}

// WithSubscriptionStatus 设置订阅状态
func WithSubscriptionStatus(status string) func(*model.Subscription) {
	return func(s *model.Subscription) {
		s.Status = status
	}
}

// WithEndDate 设置到期时间
func WithEndDate(end time.Time) func(*model.Subscription) {
	return func(s *model.Subscription) {
		s.EndDate = end
	}
}

// TestSmokingStatus 创建吸烟基线
func TestSmokingStatus(t *testing.T, db *gorm.DB, userID int64, cigarettes, price float64) *model.SmokingStatus {
	t.Helper()

	status := &model.SmokingStatus{
		UserID:            userID,
		CigarettesPerDay:  cigarettes,
		PricePerCigarette: price,
	}

	if err := db.Create(status).Error; err != nil {
		t.Fatalf("Failed to create test smoking status: %v", err)
	}

	return status
}

// TestQuitPlan 创建测试计划，每个 days 对应一个阶段
func TestQuitPlan(t *testing.T, db *gorm.DB, userID int64, start time.Time, days ...int) *model.QuitPlan {
	t.Helper()

	total := 0
	stages := make([]model.QuitStage, len(days))
	for i, d := range days {
		stages[i] = model.QuitStage{
			OrderNumber:    i + 1,
			Title:          fmt.Sprintf("Giai đoạn %d", i+1),
			DaysToComplete: d,
		}
		total += d
	}

	plan := &model.QuitPlan{
		UserID:           userID,
		Reason:           "Vì sức khỏe",
		StartDate:        start,
		ExpectedQuitDate: start.AddDate(0, 0, total),
		Status:           model.PlanActive,
		Stages:           stages,
	}

	if err := db.Create(plan).Error; err != nil {
		t.Fatalf("Failed to create test quit plan: %v", err)
	}

	return plan
}

// TestProgressLog 创建测试打卡
func TestProgressLog(t *testing.T, db *gorm.DB, userID int64, date string, cigarettes int, mood string) *model.ProgressLog {
	t.Helper()

	log := &model.ProgressLog{
		UserID:           userID,
		Date:             date,
		CigarettesPerDay: cigarettes,
		Mood:             mood,
	}

	if err := db.Create(log).Error; err != nil {
		t.Fatalf("Failed to create test progress log: %v", err)
	}

	return log
}

// TestOrder 创建测试支付订单
func TestOrder(t *testing.T, db *gorm.DB, userID, membershipID int64, txnRef, intent string) *model.PaymentOrder {
	t.Helper()

	order := &model.PaymentOrder{
		TxnRef:       txnRef,
		UserID:       userID,
		MembershipID: membershipID,
		Intent:       intent,
		Amount:       99000,
		Status:       model.OrderPending,
	}

	if err := db.Create(order).Error; err != nil {
		t.Fatalf("Failed to create test order: %v", err)
	}

	return order
}

// TestCoachChat 创建会员与教练的会话
func TestCoachChat(t *testing.T, db *gorm.DB, memberID, coachID int64) *model.CoachChat {
	t.Helper()

	chat := &model.CoachChat{
		MemberID: memberID,
		CoachID:  coachID,
	}

	if err := db.Create(chat).Error; err != nil {
		t.Fatalf("Failed to create test coach chat: %v", err)
	}

	return chat
}
