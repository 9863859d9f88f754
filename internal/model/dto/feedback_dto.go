package dto

import "time"

// FeedbackRequest 提交反馈
type FeedbackRequest struct {
	Content string `json:"content" binding:"required,max=2000"`
}

// RatingRequest 提交评分
type RatingRequest struct {
	Score   int    `json:"score" binding:"required,min=1,max=5"`
	Comment string `json:"comment" binding:"max=2000"`
}

// FeedbackListRequest 管理员反馈列表
type FeedbackListRequest struct {
	PageRequest
	Status string `form:"status" binding:"omitempty,oneof=pending reviewed resolved"`
}

// UpdateFeedbackStatusRequest 更新反馈状态
type UpdateFeedbackStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=pending reviewed resolved"`
}

// FeedbackInfo 反馈
type FeedbackInfo struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"userId"`
	Username  string    `json:"username"`
	Content   string    `json:"content"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

// RatingInfo 评分
type RatingInfo struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"userId"`
	Username  string    `json:"username"`
	Score     int       `json:"score"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
}
