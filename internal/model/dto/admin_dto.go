package dto

// AdminUserListRequest 用户列表筛选
type AdminUserListRequest struct {
	PageRequest
	Keyword string `form:"keyword"`
	Role    string `form:"role" binding:"omitempty,oneof=member coach admin"`
	Status  string `form:"status" binding:"omitempty,oneof=active banned"`
}

// AdminExportRequest 导出
type AdminExportRequest struct {
	Format  string `form:"format,default=csv" binding:"oneof=csv xlsx"`
	Keyword string `form:"keyword"`
	Role    string `form:"role" binding:"omitempty,oneof=member coach admin"`
	Status  string `form:"status" binding:"omitempty,oneof=active banned"`
}

// AdminUpdateUserRequest 修改用户角色/状态
type AdminUpdateUserRequest struct {
	Role   *string `json:"role" binding:"omitempty,oneof=member coach admin"`
	Status *string `json:"status" binding:"omitempty,oneof=active banned"`
}

// MonthRevenue 月度收入
type MonthRevenue struct {
	Month   string `json:"month"` // 2006-01
	Revenue int64  `json:"revenue"`
	Orders  int    `json:"orders"`
}

// PlanCount 各套餐订阅数
type PlanCount struct {
	MembershipID int64  `json:"membershipId"`
	Name         string `json:"name"`
	Count        int64  `json:"count"`
}

// MembershipStatistics 后台统计
type MembershipStatistics struct {
	TotalUsers          int64            `json:"totalUsers"`
	TotalMembers        int64            `json:"totalMembers"`
	TotalCoaches        int64            `json:"totalCoaches"`
	ActiveSubscriptions int64            `json:"activeSubscriptions"`
	TotalRevenue        int64            `json:"totalRevenue"`
	AverageRating       float64          `json:"averageRating"`
	ProgressLogs        int64            `json:"progressLogs"`
	PlansByStatus       map[string]int64 `json:"plansByStatus"`
	RevenueByMonth      []MonthRevenue   `json:"revenueByMonth"`
	SubscriptionsByPlan []PlanCount      `json:"subscriptionsByPlan"`
}
