package model

import (
	"time"
)

// CoachChat 会员与教练的会话
type CoachChat struct {
	ID            int64      `gorm:"primaryKey" json:"id"`
	MemberID      int64      `gorm:"not null;uniqueIndex" json:"member_id"`
	CoachID       int64      `gorm:"not null;index" json:"coach_id"`
	LastMessageAt *time.Time `json:"last_message_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`

	// 关联
	Member *User `gorm:"foreignKey:MemberID" json:"member,omitempty"`
	Coach  *User `gorm:"foreignKey:CoachID" json:"coach,omitempty"`
}

func (CoachChat) TableName() string {
	return "coach_chats"
}

type ChatMessage struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	ChatID    int64     `gorm:"not null;index" json:"chat_id"`
	SenderID  int64     `gorm:"not null" json:"sender_id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

func (ChatMessage) TableName() string {
	return "chat_messages"
}
