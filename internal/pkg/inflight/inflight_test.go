package inflight

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/breathfree/quit_go_server/internal/testutil"
)

func TestGuard_AcquireRelease(t *testing.T) {
	rdb, _ := testutil.SetupTestRedis(t)
	g := NewGuard(rdb, time.Minute)
	ctx := context.Background()

	tok, err := g.Acquire(ctx, 1, "plan.create")
	require.NoError(t, err)

	_, err = g.Acquire(ctx, 1, "plan.create")
	assert.ErrorIs(t, err, ErrInFlight)

	// 不同用户、不同操作互不影响
	_, err = g.Acquire(ctx, 2, "plan.create")
	assert.NoError(t, err)
	_, err = g.Acquire(ctx, 1, "plan.cancel")
	assert.NoError(t, err)

	require.NoError(t, g.Release(ctx, tok))
	_, err = g.Acquire(ctx, 1, "plan.create")
	assert.NoError(t, err)
}

func TestGuard_Expiry(t *testing.T) {
	rdb, mr := testutil.SetupTestRedis(t)
	g := NewGuard(rdb, 5*time.Second)
	ctx := context.Background()

	stale, err := g.Acquire(ctx, 1, "payment.create")
	require.NoError(t, err)

	mr.FastForward(6 * time.Second)

	fresh, err := g.Acquire(ctx, 1, "payment.create")
	require.NoError(t, err)

	// 过期的 token 不能释放新持有者的锁
	require.NoError(t, g.Release(ctx, stale))
	_, err = g.Acquire(ctx, 1, "payment.create")
	assert.ErrorIs(t, err, ErrInFlight)

	require.NoError(t, g.Release(ctx, fresh))
}
