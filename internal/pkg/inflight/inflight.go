// Package inflight holds short-lived redis tokens that reject a second
// concurrent request for the same (user, operation).
package inflight

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

const keyPrefix = "inflight:"

// ErrInFlight 同一操作仍在处理中
var ErrInFlight = errors.New("Yêu cầu đang được xử lý, vui lòng chờ")

// 仅当 token 匹配时释放，避免删掉过期后被别人拿到的锁
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type Guard struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewGuard(rdb *redis.Client, ttl time.Duration) *Guard {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &Guard{rdb: rdb, ttl: ttl}
}

// Token 已获取的占位
type Token struct {
	key   string
	value string
}

// Acquire takes the token for (userID, op) or returns ErrInFlight.
func (g *Guard) Acquire(ctx context.Context, userID int64, op string) (*Token, error) {
	value := uuid.NewString()
	key := fmt.Sprintf("%s%s:%d", keyPrefix, op, userID)
	ok, err := g.rdb.SetNX(ctx, key, value, g.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire in-flight token: %w", err)
	}
	if !ok {
		return nil, ErrInFlight
	}
	return &Token{key: key, value: value}, nil
}

// Release drops the token if it is still ours.
func (g *Guard) Release(ctx context.Context, t *Token) error {
	if t == nil {
		return nil
	}
	return releaseScript.Run(ctx, g.rdb, []string{t.key}, t.value).Err()
}
