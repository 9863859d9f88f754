package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	ChannelCoachChat = "coach_chat"
)

// 事件类型
const (
	EventChatMessage  = "chat_message"
	EventChatAssigned = "chat_assigned"
)

// ChatEvent 会话事件，由任意实例发布，各实例推送给本地连接的接收者
type ChatEvent struct {
	Type        string    `json:"type"`
	RecipientID int64     `json:"recipientId"`
	ChatID      int64     `json:"chatId"`
	MessageID   int64     `json:"messageId,omitempty"`
	SenderID    int64     `json:"senderId,omitempty"`
	Content     string    `json:"content,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Publisher Redis 发布者
type Publisher struct {
	client *redis.Client
}

// NewPublisher 创建发布者
func NewPublisher(client *redis.Client) *Publisher {
	return &Publisher{client: client}
}

// PublishChat 发布会话事件
func (p *Publisher) PublishChat(ctx context.Context, event *ChatEvent) error {
	if event.Type == "" {
		event.Type = EventChatMessage
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal chat event: %w", err)
	}

	return p.client.Publish(ctx, ChannelCoachChat, data).Err()
}

// Subscriber Redis 订阅者
type Subscriber struct {
	client *redis.Client
}

// NewSubscriber 创建订阅者
func NewSubscriber(client *redis.Client) *Subscriber {
	return &Subscriber{client: client}
}

// Subscribe blocks delivering chat events to handler until ctx is done.
func (s *Subscriber) Subscribe(ctx context.Context, handler func(*ChatEvent)) error {
	pubsub := s.client.Subscribe(ctx, ChannelCoachChat)
	defer pubsub.Close()

	// 等待订阅确认
	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe: %w", err)
	}

	ch := pubsub.Channel()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}

			var event ChatEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				continue // 忽略解析错误
			}

			handler(&event)
		}
	}
}
