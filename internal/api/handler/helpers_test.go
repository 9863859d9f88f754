package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/breathfree/quit_go_server/config"
	"github.com/breathfree/quit_go_server/internal/api/middleware"
	"github.com/breathfree/quit_go_server/internal/domain/payment"
	"github.com/breathfree/quit_go_server/internal/model"
	"github.com/breathfree/quit_go_server/internal/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Mode:     "test",
			Timezone: "Asia/Ho_Chi_Minh",
		},
		JWT: config.JWTConfig{
			Secret:      "test-secret-key",
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
			SuccessURL: "http://localhost:3000/payment/success",
			FailureURL: "http://localhost:3000/payment/failure",
			OrderTTL:   15,
		},
		Plan: config.PlanConfig{
			MinTotalDays:     15,
			MaxStageDays:     365,
			ExpiringSoonDays: 3,
		},
	}
}

// mockAuth 模拟 Auth 中间件写入的上下文
func mockAuth(userID int64, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.UserIDKey, userID)
		c.Set(middleware.RoleKey, role)
		c.Next()
	}
}

func memberRouter(userID int64) *gin.Engine {
	router := gin.New()
	router.Use(mockAuth(userID, model.RoleMember))
	return router
}

func performRequest(r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		jsonBytes, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(jsonBytes)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func parseResponse(t *testing.T, w *httptest.ResponseRecorder) response.Response {
	t.Helper()
	var resp response.Response
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	return resp
}

// dataMap 将 data 解析为 map
func dataMap(t *testing.T, resp response.Response) map[string]interface{} {
	t.Helper()
	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok, "data is %T", resp.Data)
	return data
}

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

func flatten(q url.Values) map[string]string {
	out := make(map[string]string, len(q))
	for k := range q {
		out[k] = q.Get(k)
	}
	return out
}
