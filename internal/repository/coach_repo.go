package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/breathfree/quit_go_server/internal/model"
)

type CoachRepository struct {
	db *gorm.DB
}

func NewCoachRepository(db *gorm.DB) *CoachRepository {
	return &CoachRepository{db: db}
}

func (r *CoachRepository) CreateChat(chat *model.CoachChat) error {
	return r.db.Create(chat).Error
}

func (r *CoachRepository) GetChatByID(id int64) (*model.CoachChat, error) {
	var chat model.CoachChat
	err := r.db.Preload("Member").Preload("Coach").Where("id = ?", id).First(&chat).Error
	if err != nil {
		return nil, err
	}
	return &chat, nil
}

func (r *CoachRepository) GetChatByMember(memberID int64) (*model.CoachChat, error) {
	var chat model.CoachChat
	err := r.db.Preload("Member").Preload("Coach").Where("member_id = ?", memberID).First(&chat).Error
	if err != nil {
		return nil, err
	}
	return &chat, nil
}

// ListChatsByCoach 教练负责的会话，最近有消息的在前
func (r *CoachRepository) ListChatsByCoach(coachID int64) ([]*model.CoachChat, error) {
	var chats []*model.CoachChat
	err := r.db.Preload("Member").Preload("Coach").Where("coach_id = ?", coachID).
		Order("last_message_at DESC").Order("id DESC").Find(&chats).Error
	return chats, err
}

// ChatLoad 每个教练的会话数
func (r *CoachRepository) ChatLoad(coachIDs []int64) (map[int64]int64, error) {
	type loadRow struct {
		CoachID int64
		Count   int64
	}
	var rows []loadRow
	err := r.db.Model(&model.CoachChat{}).
		Select("coach_id, COUNT(*) AS count").
		Where("coach_id IN ?", coachIDs).
		Group("coach_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	load := make(map[int64]int64, len(coachIDs))
	for _, row := range rows {
		load[row.CoachID] = row.Count
	}
	return load, nil
}

// CreateMessage 保存消息并更新会话最后消息时间
func (r *CoachRepository) CreateMessage(msg *model.ChatMessage) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(msg).Error; err != nil {
			return err
		}
		return tx.Model(&model.CoachChat{}).Where("id = ?", msg.ChatID).
			Update("last_message_at", time.Now()).Error
	})
}

// ListMessages 会话消息，按时间正序
func (r *CoachRepository) ListMessages(chatID int64, limit int) ([]*model.ChatMessage, error) {
	var msgs []*model.ChatMessage
	err := r.db.Where("chat_id = ?", chatID).Order("id DESC").Limit(limit).Find(&msgs).Error
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}
