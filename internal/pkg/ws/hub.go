// Package ws keeps the coach chat websocket connections of this instance.
package ws

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/breathfree/quit_go_server/internal/pkg/metrics"
)

// 推送消息类型
const (
	TypeChatMessage  = "chat_message"
	TypeChatAssigned = "chat_assigned"
)

const writeWait = 10 * time.Second

// Hub 按用户索引连接，一个用户可以同时有多个连接（多标签页）
type Hub struct {
	mu    sync.RWMutex
	conns map[int64]map[*Client]struct{}
}

// Client 单个连接
type Client struct {
	UserID int64
	Conn   *websocket.Conn
	// gorilla 连接不支持并发写
	writeMu sync.Mutex
}

// Message 推送给前端的消息
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

func NewHub() *Hub {
	return &Hub{conns: make(map[int64]map[*Client]struct{})}
}

// NewClient wraps an upgraded connection.
func NewClient(userID int64, conn *websocket.Conn) *Client {
	return &Client{UserID: userID, Conn: conn}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	set, ok := h.conns[c.UserID]
	if !ok {
		set = make(map[*Client]struct{})
		h.conns[c.UserID] = set
	}
	set[c] = struct{}{}
	n := len(set)
	h.mu.Unlock()

	metrics.WebSocketConnections.Inc()
	log.Debug().Int64("user_id", c.UserID).Int("user_conns", n).Msg("websocket connected")
}

// Unregister is a no-op for a client that is not registered.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	set, ok := h.conns[c.UserID]
	_, present := set[c]
	if ok && present {
		delete(set, c)
		if len(set) == 0 {
			delete(h.conns, c.UserID)
		}
	}
	h.mu.Unlock()

	if present {
		metrics.WebSocketConnections.Dec()
		log.Debug().Int64("user_id", c.UserID).Msg("websocket disconnected")
	}
}

// SendToUser 推送到用户的所有连接；用户不在线时什么也不做。单个连接写失败只记日志
func (h *Hub) SendToUser(userID int64, msg *Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	for _, c := range h.clientsOf(userID) {
		if err := c.write(data); err != nil {
			log.Warn().Err(err).Int64("user_id", userID).Str("type", msg.Type).Msg("websocket write failed")
		}
	}
	return nil
}

func (h *Hub) clientsOf(userID int64) []*Client {
	h.mu.RLock()
	defer h.mu.RUnlock()
	set := h.conns[userID]
	clients := make([]*Client, 0, len(set))
	for c := range set {
		clients = append(clients, c)
	}
	return clients
}

func (c *Client) write(data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := c.Conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.Conn.WriteMessage(websocket.TextMessage, data)
}

// IsOnline 用户在本实例上是否有连接
func (h *Hub) IsOnline(userID int64) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns[userID]) > 0
}

// ConnectionCount 本实例的连接总数
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	total := 0
	for _, set := range h.conns {
		total += len(set)
	}
	return total
}
