package model

import (
	"time"
)

const (
	RoleMember = "member"
	RoleCoach  = "coach"
	RoleAdmin  = "admin"

	UserStatusActive = "active"
	UserStatusBanned = "banned"
)

type User struct {
	ID           int64     `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"size:50;uniqueIndex;not null" json:"username"`
	Email        *string   `gorm:"size:100;uniqueIndex" json:"email,omitempty"`
	PasswordHash *string   `gorm:"size:255" json:"-"`
	GoogleID     *string   `gorm:"column:google_id;size:100;uniqueIndex" json:"-"`
	AvatarURL    string    `gorm:"size:500" json:"avatar_url"`
	FullName     string    `gorm:"size:100" json:"full_name"`
	Phone        string    `gorm:"size:20" json:"phone"`
	Role         string    `gorm:"size:20;default:member;index" json:"role"`   // member, coach, admin
	Status       string    `gorm:"size:20;default:active;index" json:"status"` // active, banned
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}
