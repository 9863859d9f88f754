package ws

import (
	"github.com/rs/zerolog/log"

	"github.com/breathfree/quit_go_server/internal/pkg/pubsub"
)

// Deliver 将 redis 会话事件推送给本实例上接收者的连接
func (h *Hub) Deliver(event *pubsub.ChatEvent) {
	msgType := TypeChatMessage
	if event.Type == pubsub.EventChatAssigned {
		msgType = TypeChatAssigned
	}

	if err := h.SendToUser(event.RecipientID, &Message{Type: msgType, Data: event}); err != nil {
		log.Warn().Err(err).Int64("user_id", event.RecipientID).Int64("chat_id", event.ChatID).Msg("failed to deliver chat event")
	}
}
