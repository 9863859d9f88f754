package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/breathfree/quit_go_server/internal/domain/payment"
	"github.com/breathfree/quit_go_server/internal/model/dto"
)

const (
	payPath     = "/api/v1/payMembership"
	confirmPath = "/api/v1/payMembership/confirm-payment"
)

func returnParams(code string) url.Values {
	q := url.Values{}
	q.Set("vnp_TxnRef", "txn-1")
	q.Set("vnp_ResponseCode", code)
	q.Set("vnp_Amount", "9900000")
	q.Set("vnp_SecureHash", "abc")
	return q
}

func newFlow(t *testing.T) (*fakeAPI, *PaymentFlow, *FileIntentStore) {
	t.Helper()
	api, c := newFakeAPI(t)
	store := NewFileIntentStore(filepath.Join(t.TempDir(), "quitctl", "payment.json"))
	return api, NewPaymentFlow(c, store), store
}

func TestFileIntentStore(t *testing.T) {
	store := NewFileIntentStore(filepath.Join(t.TempDir(), "payment.json"))

	got, err := store.Take()
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, store.Save(payment.Renew("txn-1", 9)))

	got, err = store.Take()
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, payment.KindRenew, got.Kind)
	assert.Equal(t, int64(9), *got.SubscriptionID)

	_, err = os.Stat(store.path)
	assert.True(t, os.IsNotExist(err))

	again, err := store.Take()
	require.NoError(t, err)
	assert.Nil(t, again)

	assert.ErrorIs(t, store.Save(payment.Intent{Kind: payment.KindRenew}), payment.ErrRenewSubscriptionID)
}

func TestStart_SavesIntent(t *testing.T) {
	api, flow, store := newFlow(t)
	api.reply(http.MethodPost, payPath, CodeSuccess, "success", dto.CreatePaymentResponse{
		TxnRef:     "txn-1",
		PaymentURL: "https://sandbox.example.vn/pay?x=1",
		Amount:     99000,
	})

	order, err := flow.Start(context.Background(), 3, payment.KindRegister, nil)
	require.NoError(t, err)
	assert.Equal(t, "txn-1", order.TxnRef)

	saved, err := store.Take()
	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.Equal(t, payment.KindRegister, saved.Kind)
	assert.Equal(t, "txn-1", saved.TxnRef)
}

func TestStart_RenewWithoutSubscription(t *testing.T) {
	api, flow, _ := newFlow(t)

	_, err := flow.Start(context.Background(), 3, payment.KindRenew, nil)

	assert.ErrorIs(t, err, payment.ErrRenewSubscriptionID)
	assert.Zero(t, api.total())
}

func TestComplete_CancelledMakesNoCall(t *testing.T) {
	api, flow, store := newFlow(t)
	require.NoError(t, store.Save(payment.Register("txn-1")))

	result, err := flow.Complete(context.Background(), returnParams("24"))

	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "Bạn đã hủy giao dịch.", result.Message)
	assert.Zero(t, api.total())

	// intent 已被清除，刷新页面不会重放
	_, err = flow.Complete(context.Background(), returnParams("00"))
	assert.ErrorIs(t, err, ErrNoPendingPayment)
	assert.Zero(t, api.total())
}

func TestComplete_UnknownCode(t *testing.T) {
	_, flow, store := newFlow(t)
	require.NoError(t, store.Save(payment.Register("txn-1")))

	result, err := flow.Complete(context.Background(), returnParams("42"))
	require.NoError(t, err)
	assert.Equal(t, payment.DefaultFailureMessage, result.Message)
}

func TestComplete_Register(t *testing.T) {
	api, flow, store := newFlow(t)
	api.reply(http.MethodPost, confirmPath, CodeSuccess, "success", dto.PaymentResult{TxnRef: "txn-1", Success: true, ResponseCode: "00"})
	require.NoError(t, store.Save(payment.Register("txn-1")))

	result, err := flow.Complete(context.Background(), returnParams("00"))

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 1, api.count(http.MethodPost, confirmPath))

	var req dto.ConfirmPaymentRequest
	require.NoError(t, json.Unmarshal(api.body(http.MethodPost, confirmPath), &req))
	assert.Equal(t, "txn-1", req.Params["vnp_TxnRef"])
	assert.Equal(t, "00", req.Params["vnp_ResponseCode"])
}

func TestComplete_Renew(t *testing.T) {
	api, flow, store := newFlow(t)
	extendPath := "/api/v1/subscription/extend/9"
	api.reply(http.MethodPut, extendPath, CodeSuccess, "success", dto.PaymentResult{TxnRef: "txn-1", Success: true})
	require.NoError(t, store.Save(payment.Renew("txn-1", 9)))

	result, err := flow.Complete(context.Background(), returnParams("00"))

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 1, api.count(http.MethodPut, extendPath))
	assert.Zero(t, api.count(http.MethodPost, confirmPath))
}

func TestComplete_ServerRejectsAfterIntentCleared(t *testing.T) {
	api, flow, store := newFlow(t)
	api.reply(http.MethodPost, confirmPath, CodePaymentFailed, "Chữ ký thanh toán không hợp lệ", nil)
	require.NoError(t, store.Save(payment.Register("txn-1")))

	_, err := flow.Complete(context.Background(), returnParams("00"))
	assert.True(t, IsCode(err, CodePaymentFailed))

	left, err := store.Take()
	require.NoError(t, err)
	assert.Nil(t, left)
}
