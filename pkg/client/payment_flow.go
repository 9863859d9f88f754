package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sync"

	"github.com/breathfree/quit_go_server/internal/domain/payment"
	"github.com/breathfree/quit_go_server/internal/model/dto"
)

// ErrNoPendingPayment is returned on gateway return when no intent was saved.
var ErrNoPendingPayment = errors.New("Không tìm thấy giao dịch đang chờ")

// IntentStore keeps the payment intent across the gateway redirect.
type IntentStore interface {
	Save(intent payment.Intent) error
	// Take returns and removes the stored intent; nil when there is none.
	Take() (*payment.Intent, error)
}

// FileIntentStore stores the intent as a JSON file.
type FileIntentStore struct {
	path string
	mu   sync.Mutex
}

// NewFileIntentStore stores the intent at path.
func NewFileIntentStore(path string) *FileIntentStore {
	return &FileIntentStore{path: path}
}

// Save overwrites any previous intent.
func (s *FileIntentStore) Save(intent payment.Intent) error {
	if err := intent.Validate(); err != nil {
		return err
	}
	data, err := intent.Marshal()
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create intent dir: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write intent: %w", err)
	}
	return os.Rename(tmp, s.path)
}

// Take removes the file before returning its content.
func (s *FileIntentStore) Take() (*payment.Intent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read intent: %w", err)
	}
	if err := os.Remove(s.path); err != nil {
		return nil, fmt.Errorf("remove intent: %w", err)
	}

	intent, err := payment.UnmarshalIntent(data)
	if err != nil {
		return nil, err
	}
	return &intent, nil
}

// PaymentFlow drives register/renew payments through the gateway redirect.
type PaymentFlow struct {
	client *Client
	store  IntentStore
}

// NewPaymentFlow creates a flow persisting intents in store.
func NewPaymentFlow(c *Client, store IntentStore) *PaymentFlow {
	return &PaymentFlow{client: c, store: store}
}

// Start creates the order and saves the intent. The caller then opens
// PaymentURL.
func (f *PaymentFlow) Start(ctx context.Context, membershipID int64, kind payment.Kind, subscriptionID *int64) (*dto.CreatePaymentResponse, error) {
	pending := payment.Intent{Kind: kind, SubscriptionID: subscriptionID}
	if err := pending.Validate(); err != nil {
		return nil, err
	}

	var order dto.CreatePaymentResponse
	req := dto.CreatePaymentRequest{MembershipID: membershipID, Intent: string(kind), SubscriptionID: subscriptionID}
	if err := f.client.do(ctx, http.MethodPost, "/payMembership", req, &order); err != nil {
		return nil, err
	}

	pending.TxnRef = order.TxnRef
	if err := f.store.Save(pending); err != nil {
		return nil, fmt.Errorf("save payment intent: %w", err)
	}
	return &order, nil
}

// Complete handles the gateway return parameters. The saved intent is
// removed before anything else; a non-success code is mapped to its message
// without calling the server.
func (f *PaymentFlow) Complete(ctx context.Context, params url.Values) (*dto.PaymentResult, error) {
	pending, err := f.store.Take()
	if err != nil {
		return nil, err
	}
	if pending == nil {
		return nil, ErrNoPendingPayment
	}

	code := params.Get("vnp_ResponseCode")
	if !payment.Succeeded(code) {
		return &dto.PaymentResult{
			TxnRef:       params.Get("vnp_TxnRef"),
			ResponseCode: code,
			Message:      payment.MessageFor(code),
		}, nil
	}

	flat := make(map[string]string, len(params))
	for k := range params {
		flat[k] = params.Get(k)
	}
	body := dto.ConfirmPaymentRequest{Params: flat}

	var result dto.PaymentResult
	switch pending.Kind {
	case payment.KindRenew:
		err = f.client.do(ctx, http.MethodPut, fmt.Sprintf("/subscription/extend/%d", *pending.SubscriptionID), body, &result)
	default:
		err = f.client.do(ctx, http.MethodPost, "/payMembership/confirm-payment", body, &result)
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}
