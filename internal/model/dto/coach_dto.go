package dto

import "time"

// Participant 会话参与者
type Participant struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	FullName  string `json:"fullName"`
	AvatarURL string `json:"avatarUrl"`
	Online    bool   `json:"online"`
}

// ChatInfo 会话
type ChatInfo struct {
	ID            int64        `json:"id"`
	Member        *Participant `json:"member"`
	Coach         *Participant `json:"coach"`
	LastMessageAt *time.Time   `json:"lastMessageAt,omitempty"`
}

// MessageInfo 消息
type MessageInfo struct {
	ID        int64     `json:"id"`
	ChatID    int64     `json:"chatId"`
	SenderID  int64     `json:"senderId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// ChatDetail 会话及最近消息
type ChatDetail struct {
	Chat     *ChatInfo      `json:"chat"`
	Messages []*MessageInfo `json:"messages"`
}

// SendMessageRequest 发送消息
type SendMessageRequest struct {
	Message string `json:"message" binding:"required,max=2000"`
}
