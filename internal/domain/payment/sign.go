package payment

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

const (
	paramSecureHash     = "vnp_SecureHash"
	paramSecureHashType = "vnp_SecureHashType"
	dateLayout          = "20060102150405"
	version             = "2.1.0"
)

var (
	ErrInvalidSignature = errors.New("Chữ ký thanh toán không hợp lệ")
	ErrMissingTxnRef    = errors.New("Thiếu mã giao dịch")
)

// Gateway 支付网关参数
type Gateway struct {
	TmnCode    string
	HashSecret string
	PayURL     string
	ReturnURL  string
	Locale     string
}

// Order 构造支付链接所需的订单信息
type Order struct {
	TxnRef    string
	Amount    int64 // VND
	Info      string
	ClientIP  string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// BuildURL returns the signed redirect URL for order.
func (g Gateway) BuildURL(o Order) string {
	locale := g.Locale
	if locale == "" {
		locale = "vn"
	}

	params := url.Values{}
	params.Set("vnp_Version", version)
	params.Set("vnp_Command", "pay")
	params.Set("vnp_TmnCode", g.TmnCode)
	// 网关金额单位为 1/100 VND
	params.Set("vnp_Amount", strconv.FormatInt(o.Amount*100, 10))
	params.Set("vnp_CurrCode", "VND")
	params.Set("vnp_TxnRef", o.TxnRef)
	params.Set("vnp_OrderInfo", o.Info)
	params.Set("vnp_OrderType", "other")
	params.Set("vnp_Locale", locale)
	params.Set("vnp_ReturnUrl", g.ReturnURL)
	params.Set("vnp_IpAddr", o.ClientIP)
	params.Set("vnp_CreateDate", o.CreatedAt.Format(dateLayout))
	if !o.ExpiresAt.IsZero() {
		params.Set("vnp_ExpireDate", o.ExpiresAt.Format(dateLayout))
	}

	query := canonical(params)
	return g.PayURL + "?" + query + "&" + paramSecureHash + "=" + g.sign(query)
}

// Return is a verified gateway return.
type Return struct {
	TxnRef        string
	ResponseCode  string
	TransactionNo string
	BankCode      string
	Amount        int64 // VND
	PayDate       string
}

// Succeeded reports whether the gateway reported success.
func (r Return) Succeeded() bool {
	return Succeeded(r.ResponseCode)
}

// Message is the user-facing outcome message.
func (r Return) Message() string {
	if r.Succeeded() {
		return "Thanh toán thành công"
	}
	return MessageFor(r.ResponseCode)
}

// Verify checks the signature of the return parameters and extracts them.
func (g Gateway) Verify(params url.Values) (*Return, error) {
	got := params.Get(paramSecureHash)
	if got == "" {
		return nil, ErrInvalidSignature
	}

	signed := url.Values{}
	for k, v := range params {
		if k == paramSecureHash || k == paramSecureHashType || !strings.HasPrefix(k, "vnp_") {
			continue
		}
		signed[k] = v
	}

	want := g.sign(canonical(signed))
	if !hmac.Equal([]byte(strings.ToLower(got)), []byte(want)) {
		return nil, ErrInvalidSignature
	}

	r := &Return{
		TxnRef:        params.Get("vnp_TxnRef"),
		ResponseCode:  params.Get("vnp_ResponseCode"),
		TransactionNo: params.Get("vnp_TransactionNo"),
		BankCode:      params.Get("vnp_BankCode"),
		PayDate:       params.Get("vnp_PayDate"),
	}
	if r.TxnRef == "" {
		return nil, ErrMissingTxnRef
	}
	if amount, err := strconv.ParseInt(params.Get("vnp_Amount"), 10, 64); err == nil {
		r.Amount = amount / 100
	}
	return r, nil
}

// Sign signs params the way the gateway does. Used by tests and the sandbox.
func (g Gateway) Sign(params url.Values) string {
	return g.sign(canonical(params))
}

func (g Gateway) sign(data string) string {
	mac := hmac.New(sha512.New, []byte(g.HashSecret))
	mac.Write([]byte(data))
	return hex.EncodeToString(mac.Sum(nil))
}

// canonical encodes params sorted by key, skipping empty values.
func canonical(params url.Values) string {
	keys := make([]string, 0, len(params))
	for k, v := range params {
		if len(v) == 0 || v[0] == "" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(k))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(params.Get(k)))
	}
	return b.String()
}
