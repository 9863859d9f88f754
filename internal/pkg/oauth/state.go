package oauth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	stateKeyPrefix  = "oauth:state:"
	defaultStateTTL = 10 * time.Minute
)

var ErrInvalidState = errors.New("invalid or expired state")

// StateStore 在 redis 中保存 OAuth state，一次性消费
type StateStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewStateStore(rdb *redis.Client) *StateStore {
	return &StateStore{rdb: rdb, ttl: defaultStateTTL}
}

// StateData state 绑定的登录上下文
type StateData struct {
	RedirectURI string `json:"redirect_uri"`
	Role        string `json:"role,omitempty"`
}

// GenerateState stores data under a fresh random state.
func (s *StateStore) GenerateState(ctx context.Context, data StateData) (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate random state: %w", err)
	}
	state := hex.EncodeToString(buf)

	payload, err := json.Marshal(data)
	if err != nil {
		return "", err
	}
	if err := s.rdb.Set(ctx, stateKeyPrefix+state, payload, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("failed to store state: %w", err)
	}

	return state, nil
}

// ValidateState consumes state and returns its data. A state is valid once.
func (s *StateStore) ValidateState(ctx context.Context, state string) (*StateData, error) {
	if state == "" {
		return nil, ErrInvalidState
	}

	key := stateKeyPrefix + state

	var raw string
	err := s.rdb.Watch(ctx, func(tx *redis.Tx) error {
		val, err := tx.Get(ctx, key).Result()
		if err == redis.Nil {
			return ErrInvalidState
		}
		if err != nil {
			return fmt.Errorf("failed to get state: %w", err)
		}
		raw = val

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, key)
			return nil
		})
		return err
	}, key)
	if err != nil {
		return nil, err
	}

	var data StateData
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return nil, ErrInvalidState
	}
	return &data, nil
}
