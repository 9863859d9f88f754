package service

import (
	"context"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/breathfree/quit_go_server/config"
	"github.com/breathfree/quit_go_server/internal/domain/payment"
	"github.com/breathfree/quit_go_server/internal/pkg/pubsub"
	"github.com/breathfree/quit_go_server/internal/pkg/queue"
)

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Mode:     "test",
			Timezone: "Asia/Ho_Chi_Minh",
		},
		JWT: config.JWTConfig{
			Secret:      "test-secret-key-for-testing",
			ExpireHours: 24,
		},
		OAuth: config.OAuthConfig{
			Google: config.GoogleOAuthConfig{
				ClientID:     "test-client-id",
				ClientSecret: "test-client-secret",
				RedirectURI:  "http://localhost:8080/api/v1/auth/google/callback",
				FrontendURL:  "http://localhost:3000/auth/callback",
			},
		},
		Payment: config.PaymentConfig{
			TmnCode:    "TESTCODE",
			HashSecret: "SECRET",
			PayURL:     "https://sandbox.example.vn/paymentv2/vpcpay.html",
			ReturnURL:  "http://localhost:8080/api/v1/payMembership/return",
			OrderTTL:   15,
		},
		Plan: config.PlanConfig{
			MinTotalDays:     15,
			MaxStageDays:     365,
			ExpiringSoonDays: 3,
		},
	}
}

// gatewayReturn 模拟网关回跳参数
func gatewayReturn(cfg *config.Config, txnRef, code string, amount int64) url.Values {
	g := payment.Gateway{TmnCode: cfg.Payment.TmnCode, HashSecret: cfg.Payment.HashSecret}

	q := url.Values{}
	q.Set("vnp_TxnRef", txnRef)
	q.Set("vnp_ResponseCode", code)
	q.Set("vnp_Amount", strconv.FormatInt(amount*100, 10))
	q.Set("vnp_BankCode", "NCB")
	q.Set("vnp_TransactionNo", "14000001")
	q.Set("vnp_PayDate", time.Now().Format("20060102150405"))
	q.Set("vnp_SecureHash", g.Sign(q))
	return q
}

type fakeQueue struct {
	mu   sync.Mutex
	msgs []*queue.Notification
}

func (q *fakeQueue) Push(_ context.Context, msg *queue.Notification) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.msgs = append(q.msgs, msg)
	return nil
}

func (q *fakeQueue) kinds() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	kinds := make([]string, len(q.msgs))
	for i, m := range q.msgs {
		kinds[i] = m.Kind
	}
	return kinds
}

type fakePublisher struct {
	mu     sync.Mutex
	events []*pubsub.ChatEvent
}

func (p *fakePublisher) PublishChat(_ context.Context, event *pubsub.ChatEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}
