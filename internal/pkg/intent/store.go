// Package intent persists payment intents in redis across the gateway
// redirect. An intent is consumed exactly once.
package intent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/breathfree/quit_go_server/internal/domain/payment"
)

const keyPrefix = "payment:intent:"

// ErrNotFound 意图不存在（已被消费或已过期）
var ErrNotFound = errors.New("payment intent not found or already consumed")

type Store struct {
	rdb *redis.Client
}

func NewStore(rdb *redis.Client) *Store {
	return &Store{rdb: rdb}
}

// Save stores in under its txn ref for ttl.
func (s *Store) Save(ctx context.Context, in payment.Intent, ttl time.Duration) error {
	if in.TxnRef == "" {
		return payment.ErrUnknownIntent
	}
	if err := in.Validate(); err != nil {
		return err
	}

	data, err := in.Marshal()
	if err != nil {
		return fmt.Errorf("failed to marshal intent: %w", err)
	}
	if err := s.rdb.Set(ctx, keyPrefix+in.TxnRef, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store intent: %w", err)
	}
	return nil
}

// Take reads and deletes the intent in one transaction, so a replayed return
// finds nothing.
func (s *Store) Take(ctx context.Context, txnRef string) (payment.Intent, error) {
	if txnRef == "" {
		return payment.Intent{}, ErrNotFound
	}
	key := keyPrefix + txnRef

	var raw string
	err := s.rdb.Watch(ctx, func(tx *redis.Tx) error {
		val, err := tx.Get(ctx, key).Result()
		if err == redis.Nil {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to get intent: %w", err)
		}
		raw = val

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, key)
			return nil
		})
		return err
	}, key)
	if err != nil {
		return payment.Intent{}, err
	}

	return payment.UnmarshalIntent([]byte(raw))
}
