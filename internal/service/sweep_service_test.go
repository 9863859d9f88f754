package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/breathfree/quit_go_server/internal/model"
	"github.com/breathfree/quit_go_server/internal/pkg/queue"
	"github.com/breathfree/quit_go_server/internal/repository"
	"github.com/breathfree/quit_go_server/internal/testutil"
)

func TestSweepService_Run(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	rdb, _ := testutil.SetupTestRedis(t)
	cfg := testConfig()

	subRepo := repository.NewSubscriptionRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	subService := NewSubscriptionService(subRepo, rdb, cfg)
	planService := NewQuitPlanService(repository.NewQuitPlanRepository(db), repository.NewSmokingStatusRepository(db), subService, rdb, cfg)
	service := NewSweepService(subRepo, orderRepo, planService, &fakeQueue{}, rdb, cfg)

	user := testutil.TestUser(t, db)
	membership := testutil.TestMembership(t, db)
	expired := testutil.TestSubscription(t, db, user.ID, membership.ID, -2)
	live := testutil.TestSubscription(t, db, testutil.TestUser(t, db).ID, membership.ID, 20)

	stale := testutil.TestOrder(t, db, user.ID, membership.ID, "stale-ref", "register")
	require.NoError(t, db.Model(&model.PaymentOrder{}).Where("id = ?", stale.ID).
		Update("created_at", time.Now().Add(-time.Hour)).Error)
	testutil.TestOrder(t, db, user.ID, membership.ID, "fresh-ref", "register")

	finished := testutil.TestQuitPlan(t, db, user.ID, time.Now().AddDate(0, 0, -30), 10, 10)
	running := testutil.TestQuitPlan(t, db, live.UserID, time.Now().AddDate(0, 0, -3), 10, 10)

	ctx := context.Background()

	dry, err := service.Run(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, SweepReport{DryRun: true, ExpiredSubscriptions: 1, CompletedPlans: 1, FailedOrders: 1}, *dry)

	var sub model.Subscription
	require.NoError(t, db.First(&sub, expired.ID).Error)
	assert.Equal(t, model.SubscriptionActive, sub.Status)

	report, err := service.Run(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, int64(1), report.ExpiredSubscriptions)
	assert.Equal(t, int64(1), report.FailedOrders)
	assert.Equal(t, 1, report.CompletedPlans)

	require.NoError(t, db.First(&sub, expired.ID).Error)
	assert.Equal(t, model.SubscriptionExpired, sub.Status)
	require.NoError(t, db.First(&sub, live.ID).Error)
	assert.Equal(t, model.SubscriptionActive, sub.Status)

	var order model.PaymentOrder
	require.NoError(t, db.First(&order, stale.ID).Error)
	assert.Equal(t, model.OrderFailed, order.Status)
	require.NoError(t, db.Where("txn_ref = ?", "fresh-ref").First(&order).Error)
	assert.Equal(t, model.OrderPending, order.Status)

	var plan model.QuitPlan
	require.NoError(t, db.First(&plan, finished.ID).Error)
	assert.Equal(t, model.PlanCompleted, plan.Status)
	require.NoError(t, db.First(&plan, running.ID).Error)
	assert.Equal(t, model.PlanActive, plan.Status)

	again, err := service.Run(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, SweepReport{}, *again)
}

func TestSweepService_QueueReminders(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	rdb, _ := testutil.SetupTestRedis(t)
	cfg := testConfig()
	notifications := &fakeQueue{}

	subRepo := repository.NewSubscriptionRepository(db)
	service := NewSweepService(subRepo, repository.NewOrderRepository(db), nil, notifications, rdb, cfg)

	membership := testutil.TestMembership(t, db)
	soon := testutil.TestSubscription(t, db, testutil.TestUser(t, db).ID, membership.ID, 2)
	testutil.TestSubscription(t, db, testutil.TestUser(t, db).ID, membership.ID, 10)
	testutil.TestSubscription(t, db, testutil.TestUser(t, db).ID, membership.ID, 1,
		testutil.WithSubscriptionStatus(model.SubscriptionCancelled))

	ctx := context.Background()

	n, err := service.QueueReminders(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Empty(t, notifications.kinds())

	n, err = service.QueueReminders(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	require.Equal(t, []string{queue.KindExpiryReminder}, notifications.kinds())
	assert.Equal(t, soon.UserID, notifications.msgs[0].UserID)
	assert.Equal(t, membership.Name, notifications.msgs[0].MembershipName)
	assert.Equal(t, 2, notifications.msgs[0].DaysRemaining)

	// 同一天不重复提醒
	n, err = service.QueueReminders(ctx, false)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Len(t, notifications.kinds(), 1)
}
