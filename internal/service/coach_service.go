package service

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/breathfree/quit_go_server/internal/model"
	"github.com/breathfree/quit_go_server/internal/model/dto"
	"github.com/breathfree/quit_go_server/internal/pkg/pubsub"
	"github.com/breathfree/quit_go_server/internal/repository"
)

var (
	ErrChatNotFound     = errors.New("Không tìm thấy cuộc trò chuyện")
	ErrNotChatMember    = errors.New("Bạn không thuộc cuộc trò chuyện này")
	ErrNoCoachAvailable = errors.New("Hiện chưa có huấn luyện viên, vui lòng thử lại sau")
	ErrEmptyMessage     = errors.New("Nội dung tin nhắn không được để trống")
)

// 会话详情返回的最近消息条数
const chatHistoryLimit = 100

// ChatPublisher 发布会话事件
type ChatPublisher interface {
	PublishChat(ctx context.Context, event *pubsub.ChatEvent) error
}

// Presence 在线状态
type Presence interface {
	IsOnline(userID int64) bool
}

type CoachService struct {
	coachRepo *repository.CoachRepository
	userRepo  *repository.UserRepository
	publisher ChatPublisher
	presence  Presence
}

// NewCoachService publisher、presence 可为 nil
func NewCoachService(coachRepo *repository.CoachRepository, userRepo *repository.UserRepository, publisher ChatPublisher, presence Presence) *CoachService {
	return &CoachService{
		coachRepo: coachRepo,
		userRepo:  userRepo,
		publisher: publisher,
		presence:  presence,
	}
}

// MemberChat 会员的会话；首次访问时分配会话数最少的教练
func (s *CoachService) MemberChat(ctx context.Context, memberID int64) (*dto.ChatInfo, error) {
	chat, err := s.coachRepo.GetChatByMember(memberID)
	if err == nil {
		return s.toChatInfo(chat), nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	coachID, err := s.leastLoadedCoach()
	if err != nil {
		return nil, err
	}

	if err := s.coachRepo.CreateChat(&model.CoachChat{MemberID: memberID, CoachID: coachID}); err != nil {
		// member_id 唯一，并发创建时读取已存在的会话
		if existing, getErr := s.coachRepo.GetChatByMember(memberID); getErr == nil {
			return s.toChatInfo(existing), nil
		}
		return nil, err
	}

	chat, err = s.coachRepo.GetChatByMember(memberID)
	if err != nil {
		return nil, err
	}

	log.Info().Int64("member_id", memberID).Int64("coach_id", coachID).Int64("chat_id", chat.ID).Msg("coach assigned")
	s.publish(ctx, &pubsub.ChatEvent{
		Type:        pubsub.EventChatAssigned,
		RecipientID: coachID,
		ChatID:      chat.ID,
		SenderID:    memberID,
	})
	return s.toChatInfo(chat), nil
}

// CoachChats 教练负责的会话
func (s *CoachService) CoachChats(coachID int64) ([]*dto.ChatInfo, error) {
	chats, err := s.coachRepo.ListChatsByCoach(coachID)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.ChatInfo, 0, len(chats))
	for _, c := range chats {
		items = append(items, s.toChatInfo(c))
	}
	return items, nil
}

// Messages 会话及最近消息，仅参与者可见
func (s *CoachService) Messages(userID, chatID int64) (*dto.ChatDetail, error) {
	chat, err := s.participantChat(userID, chatID)
	if err != nil {
		return nil, err
	}

	msgs, err := s.coachRepo.ListMessages(chat.ID, chatHistoryLimit)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.MessageInfo, 0, len(msgs))
	for _, m := range msgs {
		items = append(items, toMessageInfo(m))
	}
	return &dto.ChatDetail{
		Chat:     s.toChatInfo(chat),
		Messages: items,
	}, nil
}

// Send 保存消息并推送给对方
func (s *CoachService) Send(ctx context.Context, userID, chatID int64, content string) (*dto.MessageInfo, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyMessage
	}

	chat, err := s.participantChat(userID, chatID)
	if err != nil {
		return nil, err
	}

	msg := &model.ChatMessage{
		ChatID:   chat.ID,
		SenderID: userID,
		Content:  content,
	}
	if err := s.coachRepo.CreateMessage(msg); err != nil {
		return nil, err
	}

	recipient := chat.CoachID
	if userID == chat.CoachID {
		recipient = chat.MemberID
	}
	s.publish(ctx, &pubsub.ChatEvent{
		Type:        pubsub.EventChatMessage,
		RecipientID: recipient,
		ChatID:      chat.ID,
		MessageID:   msg.ID,
		SenderID:    userID,
		Content:     msg.Content,
		CreatedAt:   msg.CreatedAt,
	})
	return toMessageInfo(msg), nil
}

func (s *CoachService) participantChat(userID, chatID int64) (*model.CoachChat, error) {
	chat, err := s.coachRepo.GetChatByID(chatID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrChatNotFound
		}
		return nil, err
	}
	if chat.MemberID != userID && chat.CoachID != userID {
		return nil, ErrNotChatMember
	}
	return chat, nil
}

// leastLoadedCoach 会话数最少的教练，相同时取 ID 最小者
func (s *CoachService) leastLoadedCoach() (int64, error) {
	coaches, err := s.userRepo.ListActiveCoaches()
	if err != nil {
		return 0, err
	}
	if len(coaches) == 0 {
		return 0, ErrNoCoachAvailable
	}

	ids := make([]int64, len(coaches))
	for i, c := range coaches {
		ids[i] = c.ID
	}
	load, err := s.coachRepo.ChatLoad(ids)
	if err != nil {
		return 0, err
	}

	best := ids[0]
	for _, id := range ids[1:] {
		if load[id] < load[best] || (load[id] == load[best] && id < best) {
			best = id
		}
	}
	return best, nil
}

func (s *CoachService) publish(ctx context.Context, event *pubsub.ChatEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishChat(ctx, event); err != nil {
		log.Warn().Err(err).Int64("chat_id", event.ChatID).Str("type", event.Type).Msg("failed to publish chat event")
	}
}

func (s *CoachService) toChatInfo(chat *model.CoachChat) *dto.ChatInfo {
	return &dto.ChatInfo{
		ID:            chat.ID,
		Member:        s.participant(chat.Member, chat.MemberID),
		Coach:         s.participant(chat.Coach, chat.CoachID),
		LastMessageAt: chat.LastMessageAt,
	}
}

func (s *CoachService) participant(u *model.User, id int64) *dto.Participant {
	p := &dto.Participant{ID: id}
	if u != nil {
		p.Username = u.Username
		p.FullName = u.FullName
		p.AvatarURL = u.AvatarURL
	}
	if s.presence != nil {
		p.Online = s.presence.IsOnline(id)
	}
	return p
}
