package oauth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/breathfree/quit_go_server/internal/testutil"
)

func TestStateStore_GenerateState(t *testing.T) {
	rdb, _ := testutil.SetupTestRedis(t)
	store := NewStateStore(rdb)
	ctx := context.Background()

	s1, err := store.GenerateState(ctx, StateData{RedirectURI: "http://localhost:3000"})
	require.NoError(t, err)
	assert.Len(t, s1, 64)

	s2, err := store.GenerateState(ctx, StateData{})
	require.NoError(t, err)
	assert.NotEqual(t, s1, s2)
}

func TestStateStore_ValidateState(t *testing.T) {
	rdb, mr := testutil.SetupTestRedis(t)
	store := NewStateStore(rdb)
	ctx := context.Background()

	state, err := store.GenerateState(ctx, StateData{RedirectURI: "http://localhost:3000/cb", Role: "coach"})
	require.NoError(t, err)

	t.Run("success then consumed", func(t *testing.T) {
		data, err := store.ValidateState(ctx, state)
		require.NoError(t, err)
		assert.Equal(t, "http://localhost:3000/cb", data.RedirectURI)
		assert.Equal(t, "coach", data.Role)

		_, err = store.ValidateState(ctx, state)
		assert.ErrorIs(t, err, ErrInvalidState)
	})

	t.Run("unknown and empty", func(t *testing.T) {
		_, err := store.ValidateState(ctx, "nope")
		assert.ErrorIs(t, err, ErrInvalidState)
		_, err = store.ValidateState(ctx, "")
		assert.ErrorIs(t, err, ErrInvalidState)
	})

	t.Run("expired", func(t *testing.T) {
		old, err := store.GenerateState(ctx, StateData{})
		require.NoError(t, err)
		mr.FastForward(11 * time.Minute)
		_, err = store.ValidateState(ctx, old)
		assert.ErrorIs(t, err, ErrInvalidState)
	})
}
