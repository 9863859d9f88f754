package queue

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*redis.Client, func()) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	cleanup := func() {
		client.Close()
		mr.Close()
	}

	return client, cleanup
}

func TestQueue_Push(t *testing.T) {
	client, cleanup := setupTestRedis(t)
	defer cleanup()

	q := NewQueue(client, "test_queue")
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, q.Push(ctx, &Notification{Kind: KindExpiryReminder, UserID: int64(i)}))
	}

	length, err := q.Length(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), length)
}

func TestQueue_Pop(t *testing.T) {
	client, cleanup := setupTestRedis(t)
	defer cleanup()

	ctx := context.Background()

	t.Run("round trip", func(t *testing.T) {
		q := NewQueue(client, "test_pop_queue")
		end := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)

		require.NoError(t, q.Push(ctx, &Notification{
			Kind:           KindExpiryReminder,
			UserID:         20,
			SubscriptionID: 5,
			MembershipName: "Premium",
			EndDate:        end,
			DaysRemaining:  2,
		}))

		result, err := q.Pop(ctx, time.Second)
		require.NoError(t, err)
		require.NotNil(t, result)

		assert.Equal(t, KindExpiryReminder, result.Kind)
		assert.Equal(t, int64(20), result.UserID)
		assert.Equal(t, int64(5), result.SubscriptionID)
		assert.Equal(t, "Premium", result.MembershipName)
		assert.True(t, end.Equal(result.EndDate))
		assert.Equal(t, 2, result.DaysRemaining)
		assert.False(t, result.EnqueuedAt.IsZero())
	})

	t.Run("FIFO order", func(t *testing.T) {
		q := NewQueue(client, "test_fifo_queue")

		for i := 1; i <= 3; i++ {
			require.NoError(t, q.Push(ctx, &Notification{UserID: int64(i)}))
		}

		for i := 1; i <= 3; i++ {
			result, err := q.Pop(ctx, time.Second)
			require.NoError(t, err)
			require.NotNil(t, result)
			assert.Equal(t, int64(i), result.UserID)
		}
	})

	t.Run("empty queue times out", func(t *testing.T) {
		q := NewQueue(client, "test_empty_queue")

		result, err := q.Pop(ctx, 10*time.Millisecond)

		// miniredis 的 BRPop 超时行为不完全一致
		if err == nil {
			assert.Nil(t, result)
		}
	})
}

func TestQueue_MultipleQueues(t *testing.T) {
	client, cleanup := setupTestRedis(t)
	defer cleanup()

	ctx := context.Background()
	q1 := NewQueue(client, "queue_1")
	q2 := NewQueue(client, "queue_2")

	require.NoError(t, q1.Push(ctx, &Notification{UserID: 1}))
	require.NoError(t, q2.Push(ctx, &Notification{UserID: 2}))

	result1, err := q1.Pop(ctx, time.Second)
	require.NoError(t, err)
	result2, err := q2.Pop(ctx, time.Second)
	require.NoError(t, err)

	assert.Equal(t, int64(1), result1.UserID)
	assert.Equal(t, int64(2), result2.UserID)
}
