package payment

import (
	"encoding/json"
	"errors"
)

// Kind of payment.
type Kind string

const (
	KindRegister Kind = "register"
	KindRenew    Kind = "renew"
)

var (
	ErrUnknownIntent       = errors.New("Loại thanh toán không hợp lệ")
	ErrRenewSubscriptionID = errors.New("Gia hạn cần có mã gói thành viên hiện tại")
)

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	return k == KindRegister || k == KindRenew
}

// Intent is persisted before the redirect and consumed exactly once on return.
type Intent struct {
	Kind           Kind   `json:"intent"`
	SubscriptionID *int64 `json:"subscriptionId,omitempty"`
	TxnRef         string `json:"txnRef,omitempty"`
}

// Register returns a register intent.
func Register(txnRef string) Intent {
	return Intent{Kind: KindRegister, TxnRef: txnRef}
}

// Renew returns a renew intent for subscriptionID.
func Renew(txnRef string, subscriptionID int64) Intent {
	return Intent{Kind: KindRenew, SubscriptionID: &subscriptionID, TxnRef: txnRef}
}

// Validate checks the kind and that renew carries a subscription id.
func (i Intent) Validate() error {
	if !i.Kind.Valid() {
		return ErrUnknownIntent
	}
	if i.Kind == KindRenew && (i.SubscriptionID == nil || *i.SubscriptionID <= 0) {
		return ErrRenewSubscriptionID
	}
	return nil
}

// Marshal encodes the intent for storage.
func (i Intent) Marshal() ([]byte, error) {
	return json.Marshal(i)
}

// UnmarshalIntent decodes a stored intent and validates it.
func UnmarshalIntent(data []byte) (Intent, error) {
	var i Intent
	if err := json.Unmarshal(data, &i); err != nil {
		return Intent{}, err
	}
	if err := i.Validate(); err != nil {
		return Intent{}, err
	}
	return i, nil
}
