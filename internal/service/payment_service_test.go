package service

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/breathfree/quit_go_server/config"
	"github.com/breathfree/quit_go_server/internal/domain/payment"
	"github.com/breathfree/quit_go_server/internal/model"
	"github.com/breathfree/quit_go_server/internal/model/dto"
	"github.com/breathfree/quit_go_server/internal/pkg/intent"
	"github.com/breathfree/quit_go_server/internal/pkg/queue"
	"github.com/breathfree/quit_go_server/internal/repository"
	"github.com/breathfree/quit_go_server/internal/testutil"
)

type paymentFixture struct {
	service    *PaymentService
	db         *gorm.DB
	mr         *miniredis.Miniredis
	queue      *fakeQueue
	cfg        *config.Config
	user       *model.User
	membership *model.Membership
}

func setupPaymentService(t *testing.T) (*paymentFixture, func()) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	rdb, mr := testutil.SetupTestRedis(t)
	cfg := testConfig()
	q := &fakeQueue{}

	subRepo := repository.NewSubscriptionRepository(db)
	service := NewPaymentService(
		db,
		repository.NewMembershipRepository(db),
		subRepo,
		repository.NewOrderRepository(db),
		NewSubscriptionService(subRepo, rdb, cfg),
		intent.NewStore(rdb),
		q,
		cfg,
	)

	f := &paymentFixture{
		service:    service,
		db:         db,
		mr:         mr,
		queue:      q,
		cfg:        cfg,
		user:       testutil.TestUser(t, db),
		membership: testutil.TestMembership(t, db, testutil.WithPrice(99000), testutil.WithDuration(30)),
	}

	cleanup := func() {
		mr.Close()
		testutil.CleanupTestDB(t, db)
	}
	return f, cleanup
}

func (f *paymentFixture) create(t *testing.T, req *dto.CreatePaymentRequest) *dto.CreatePaymentResponse {
	t.Helper()
	resp, err := f.service.Create(context.Background(), f.user.ID, req, "127.0.0.1")
	require.NoError(t, err)
	return resp
}

func (f *paymentFixture) subscriptions(t *testing.T) []model.Subscription {
	t.Helper()
	var subs []model.Subscription
	require.NoError(t, f.db.Where("user_id = ?", f.user.ID).Find(&subs).Error)
	return subs
}

func TestPaymentService_Create(t *testing.T) {
	f, cleanup := setupPaymentService(t)
	defer cleanup()

	resp := f.create(t, &dto.CreatePaymentRequest{MembershipID: f.membership.ID, Intent: "register"})
	assert.NotEmpty(t, resp.TxnRef)
	assert.Equal(t, int64(99000), resp.Amount)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), resp.ExpiresAt, time.Minute)

	u, err := url.Parse(resp.PaymentURL)
	require.NoError(t, err)
	assert.Equal(t, resp.TxnRef, u.Query().Get("vnp_TxnRef"))
	assert.Equal(t, "9900000", u.Query().Get("vnp_Amount"))
	assert.NotEmpty(t, u.Query().Get("vnp_SecureHash"))

	var order model.PaymentOrder
	require.NoError(t, f.db.Where("txn_ref = ?", resp.TxnRef).First(&order).Error)
	assert.Equal(t, model.OrderPending, order.Status)
	assert.Equal(t, "register", order.Intent)
	assert.Equal(t, resp.PaymentURL, order.PaymentURL)

	assert.True(t, f.mr.Exists("payment:intent:"+resp.TxnRef))
	assert.Greater(t, f.mr.TTL("payment:intent:"+resp.TxnRef), time.Duration(0))
}

func TestPaymentService_Create_Rejected(t *testing.T) {
	f, cleanup := setupPaymentService(t)
	defer cleanup()
	ctx := context.Background()

	t.Run("unknown membership", func(t *testing.T) {
		_, err := f.service.Create(ctx, f.user.ID, &dto.CreatePaymentRequest{MembershipID: 999, Intent: "register"}, "")
		assert.ErrorIs(t, err, ErrMembershipNotFound)
	})

	t.Run("renew without subscription id", func(t *testing.T) {
		_, err := f.service.Create(ctx, f.user.ID, &dto.CreatePaymentRequest{MembershipID: f.membership.ID, Intent: "renew"}, "")
		assert.ErrorIs(t, err, payment.ErrRenewSubscriptionID)
	})

	t.Run("renew someone else's subscription", func(t *testing.T) {
		other := testutil.TestUser(t, f.db)
		sub := testutil.TestSubscription(t, f.db, other.ID, f.membership.ID, 10)
		_, err := f.service.Create(ctx, f.user.ID, &dto.CreatePaymentRequest{
			MembershipID: f.membership.ID, Intent: "renew", SubscriptionID: &sub.ID,
		}, "")
		assert.ErrorIs(t, err, ErrSubscriptionNotRenewable)
	})

	t.Run("register while subscribed", func(t *testing.T) {
		testutil.TestSubscription(t, f.db, f.user.ID, f.membership.ID, 10)
		_, err := f.service.Create(ctx, f.user.ID, &dto.CreatePaymentRequest{MembershipID: f.membership.ID, Intent: "register"}, "")
		assert.ErrorIs(t, err, ErrAlreadySubscribed)
	})
}

func TestPaymentService_HandleReturn_Register(t *testing.T) {
	f, cleanup := setupPaymentService(t)
	defer cleanup()
	ctx := context.Background()

	resp := f.create(t, &dto.CreatePaymentRequest{MembershipID: f.membership.ID, Intent: "register"})
	params := gatewayReturn(f.cfg, resp.TxnRef, "00", 99000)

	result, err := f.service.HandleReturn(ctx, params)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "Thanh toán thành công", result.Message)
	require.NotNil(t, result.Subscription)
	assert.WithinDuration(t, time.Now().AddDate(0, 0, 30), result.Subscription.EndDate, time.Minute)

	var order model.PaymentOrder
	require.NoError(t, f.db.Where("txn_ref = ?", resp.TxnRef).First(&order).Error)
	assert.Equal(t, model.OrderPaid, order.Status)
	require.NotNil(t, order.SubscriptionID)
	assert.Equal(t, result.Subscription.ID, *order.SubscriptionID)
	assert.False(t, f.mr.Exists("payment:intent:"+resp.TxnRef))
	assert.Equal(t, []string{queue.KindPaymentReceipt}, f.queue.kinds())

	// 重复回跳不会再次开通
	again, err := f.service.HandleReturn(ctx, params)
	require.NoError(t, err)
	assert.True(t, again.Success)
	require.NotNil(t, again.Subscription)
	assert.Equal(t, result.Subscription.ID, again.Subscription.ID)
	assert.Len(t, f.subscriptions(t), 1)
	assert.Len(t, f.queue.kinds(), 1)
}

func TestPaymentService_HandleReturn_Cancelled(t *testing.T) {
	f, cleanup := setupPaymentService(t)
	defer cleanup()

	resp := f.create(t, &dto.CreatePaymentRequest{MembershipID: f.membership.ID, Intent: "register"})

	result, err := f.service.HandleReturn(context.Background(), gatewayReturn(f.cfg, resp.TxnRef, "24", 99000))
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "24", result.ResponseCode)
	assert.Equal(t, "Bạn đã hủy giao dịch.", result.Message)
	assert.Nil(t, result.Subscription)

	var order model.PaymentOrder
	require.NoError(t, f.db.Where("txn_ref = ?", resp.TxnRef).First(&order).Error)
	assert.Equal(t, model.OrderFailed, order.Status)
	assert.Empty(t, f.subscriptions(t))
	assert.Empty(t, f.queue.kinds())
	assert.False(t, f.mr.Exists("payment:intent:"+resp.TxnRef))
}

func TestPaymentService_HandleReturn_Renew(t *testing.T) {
	f, cleanup := setupPaymentService(t)
	defer cleanup()

	sub := testutil.TestSubscription(t, f.db, f.user.ID, f.membership.ID, 5)
	resp := f.create(t, &dto.CreatePaymentRequest{MembershipID: f.membership.ID, Intent: "renew", SubscriptionID: &sub.ID})

	result, err := f.service.Extend(context.Background(), f.user.ID, gatewayReturn(f.cfg, resp.TxnRef, "00", 99000))
	require.NoError(t, err)
	assert.True(t, result.Success)
	require.NotNil(t, result.Subscription)
	assert.Equal(t, sub.ID, result.Subscription.ID)

	var updated model.Subscription
	require.NoError(t, f.db.First(&updated, sub.ID).Error)
	assert.WithinDuration(t, sub.EndDate.AddDate(0, 0, 30), updated.EndDate, time.Second)
	assert.Len(t, f.subscriptions(t), 1)
}

func TestPaymentService_HandleReturn_Invalid(t *testing.T) {
	f, cleanup := setupPaymentService(t)
	defer cleanup()
	ctx := context.Background()

	resp := f.create(t, &dto.CreatePaymentRequest{MembershipID: f.membership.ID, Intent: "register"})

	t.Run("tampered", func(t *testing.T) {
		params := gatewayReturn(f.cfg, resp.TxnRef, "24", 99000)
		params.Set("vnp_ResponseCode", "00")
		_, err := f.service.HandleReturn(ctx, params)
		assert.ErrorIs(t, err, payment.ErrInvalidSignature)
		assert.True(t, f.mr.Exists("payment:intent:"+resp.TxnRef))
	})

	t.Run("unknown order", func(t *testing.T) {
		_, err := f.service.HandleReturn(ctx, gatewayReturn(f.cfg, "nope", "00", 99000))
		assert.ErrorIs(t, err, ErrOrderNotFound)
	})

	t.Run("other user confirms", func(t *testing.T) {
		other := testutil.TestUser(t, f.db)
		_, err := f.service.Confirm(ctx, other.ID, gatewayReturn(f.cfg, resp.TxnRef, "00", 99000))
		assert.ErrorIs(t, err, ErrOrderNotFound)
	})

	t.Run("extend with register order", func(t *testing.T) {
		_, err := f.service.Extend(ctx, f.user.ID, gatewayReturn(f.cfg, resp.TxnRef, "00", 99000))
		assert.ErrorIs(t, err, ErrIntentMismatch)
	})

	t.Run("amount mismatch", func(t *testing.T) {
		_, err := f.service.Confirm(ctx, f.user.ID, gatewayReturn(f.cfg, resp.TxnRef, "00", 1000))
		assert.ErrorIs(t, err, ErrAmountMismatch)
		assert.Empty(t, f.subscriptions(t))
	})
}

func TestPaymentService_IntentKindMismatchKeepsIntent(t *testing.T) {
	f, cleanup := setupPaymentService(t)
	defer cleanup()

	resp := f.create(t, &dto.CreatePaymentRequest{MembershipID: f.membership.ID, Intent: "register"})
	key := "payment:intent:" + resp.TxnRef

	// 存储的意图与订单不一致
	data, err := payment.Renew(resp.TxnRef, 7).Marshal()
	require.NoError(t, err)
	require.NoError(t, f.mr.Set(key, string(data)))

	_, err = f.service.Confirm(context.Background(), f.user.ID, gatewayReturn(f.cfg, resp.TxnRef, "00", 99000))
	assert.ErrorIs(t, err, ErrIntentMismatch)
	assert.Empty(t, f.subscriptions(t))

	require.True(t, f.mr.Exists(key))
	stored, err := f.mr.Get(key)
	require.NoError(t, err)
	got, err := payment.UnmarshalIntent([]byte(stored))
	require.NoError(t, err)
	assert.Equal(t, payment.KindRenew, got.Kind)
}

func TestPaymentService_HandleReturn_IntentExpired(t *testing.T) {
	f, cleanup := setupPaymentService(t)
	defer cleanup()

	resp := f.create(t, &dto.CreatePaymentRequest{MembershipID: f.membership.ID, Intent: "register"})
	f.mr.FastForward(16 * time.Minute)

	_, err := f.service.HandleReturn(context.Background(), gatewayReturn(f.cfg, resp.TxnRef, "00", 99000))
	assert.ErrorIs(t, err, ErrIntentExpired)
	assert.Empty(t, f.subscriptions(t))
}

func TestPaymentService_QRCode(t *testing.T) {
	f, cleanup := setupPaymentService(t)
	defer cleanup()

	resp := f.create(t, &dto.CreatePaymentRequest{MembershipID: f.membership.ID, Intent: "register"})

	png, err := f.service.QRCode(f.user.ID, resp.TxnRef)
	require.NoError(t, err)
	assert.Equal(t, []byte("\x89PNG"), png[:4])

	_, err = f.service.QRCode(f.user.ID+1000, resp.TxnRef)
	assert.ErrorIs(t, err, ErrOrderNotFound)

	_, err = f.service.HandleReturn(context.Background(), gatewayReturn(f.cfg, resp.TxnRef, "24", 99000))
	require.NoError(t, err)
	_, err = f.service.QRCode(f.user.ID, resp.TxnRef)
	assert.ErrorIs(t, err, ErrOrderNotPending)
}
