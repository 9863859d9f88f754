package handler

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/breathfree/quit_go_server/internal/model"
	"github.com/breathfree/quit_go_server/internal/model/dto"
	"github.com/breathfree/quit_go_server/internal/pkg/oauth"
	"github.com/breathfree/quit_go_server/internal/pkg/queue"
	"github.com/breathfree/quit_go_server/internal/pkg/response"
	"github.com/breathfree/quit_go_server/internal/repository"
	"github.com/breathfree/quit_go_server/internal/service"
	"github.com/breathfree/quit_go_server/internal/testutil"
)

func setupAuthHandler(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.CleanupTestDB(t, db) })
	rdb, _ := testutil.SetupTestRedis(t)

	authService := service.NewAuthService(
		repository.NewUserRepository(db),
		oauth.NewStateStore(rdb),
		queue.NewQueue(rdb, "test:notifications"),
		testConfig(),
	)
	handler := NewAuthHandler(authService)

	router := gin.New()
	router.POST("/register", handler.Register)
	router.POST("/login", handler.Login)
	router.GET("/google", handler.GoogleAuth)
	router.GET("/google/callback", handler.GoogleCallback)
	return router, db
}

func TestAuthHandler_Register(t *testing.T) {
	router, _ := setupAuthHandler(t)

	req := dto.RegisterRequest{
		Email:    "test@example.com",
		Username: "testuser",
		Password: "password123",
	}

	w := performRequest(router, "POST", "/register", req)
	resp := parseResponse(t, w)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, response.CodeSuccess, resp.Code)
	assert.NotZero(t, dataMap(t, resp)["userId"])

	t.Run("duplicate email", func(t *testing.T) {
		dup := req
		dup.Username = "testuser2"
		resp := parseResponse(t, performRequest(router, "POST", "/register", dup))
		assert.Equal(t, response.CodeParamError, resp.Code)
		assert.Equal(t, service.ErrEmailExists.Error(), resp.Message)
	})

	t.Run("invalid request", func(t *testing.T) {
		w := performRequest(router, "POST", "/register", map[string]string{"email": "invalid-email"})
		resp := parseResponse(t, w)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, response.CodeParamError, resp.Code)
	})
}

func TestAuthHandler_Login(t *testing.T) {
	router, db := setupAuthHandler(t)

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)
	testutil.TestUser(t, db, testutil.WithEmail("coach@example.com"), testutil.WithPasswordHash(string(hash)), testutil.WithRole(model.RoleCoach))

	tests := []struct {
		name string
		req  dto.LoginRequest
		code int
	}{
		{"success", dto.LoginRequest{Email: "coach@example.com", Password: "password123", Role: model.RoleCoach}, response.CodeSuccess},
		{"wrong password", dto.LoginRequest{Email: "coach@example.com", Password: "wrong-password"}, response.CodeAuthFailed},
		{"role mismatch", dto.LoginRequest{Email: "coach@example.com", Password: "password123", Role: model.RoleAdmin}, response.CodePermissionDenied},
		{"unknown role", dto.LoginRequest{Email: "coach@example.com", Password: "password123", Role: "root"}, response.CodeParamError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := parseResponse(t, performRequest(router, "POST", "/login", tt.req))
			assert.Equal(t, tt.code, resp.Code)
			if tt.code == response.CodeSuccess {
				data := dataMap(t, resp)
				assert.NotEmpty(t, data["token"])
				user := data["user"].(map[string]interface{})
				assert.Equal(t, model.RoleCoach, user["role"])
			}
		})
	}
}

func TestAuthHandler_GoogleAuth(t *testing.T) {
	router, _ := setupAuthHandler(t)

	w := performRequest(router, "GET", "/google?role=member", nil)
	assert.Equal(t, http.StatusTemporaryRedirect, w.Code)
	loc, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)
	assert.NotEmpty(t, loc.Query().Get("state"))

	resp := parseResponse(t, performRequest(router, "GET", "/google?role=root", nil))
	assert.Equal(t, response.CodeParamError, resp.Code)
}

func TestAuthHandler_GoogleCallback_Invalid(t *testing.T) {
	router, _ := setupAuthHandler(t)

	resp := parseResponse(t, performRequest(router, "GET", "/google/callback?state=abc", nil))
	assert.Equal(t, response.CodeParamError, resp.Code)

	// 未知 state 没有可跳转的前端地址
	w := performRequest(router, "GET", "/google/callback?code=xyz&state=unknown", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	resp = parseResponse(t, w)
	assert.Equal(t, response.CodeAuthFailed, resp.Code)
}
