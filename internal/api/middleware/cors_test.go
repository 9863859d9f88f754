package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/breathfree/quit_go_server/config"
)

func corsRouter(cfg config.CORSConfig) *gin.Engine {
	router := gin.New()
	router.Use(CORS(cfg))
	router.GET("/api/v1/memberships", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"code": 0})
	})
	return router
}

func TestCORS(t *testing.T) {
	cfg := config.CORSConfig{
		AllowedOrigins: []string{"http://localhost:5173", "https://app.example.vn"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}

	tests := []struct {
		name        string
		method      string
		origin      string
		wantStatus  int
		wantOrigin  string
		handlerRuns bool
	}{
		{"allowed origin", http.MethodGet, "http://localhost:5173", http.StatusOK, "http://localhost:5173", true},
		{"second allowed origin", http.MethodGet, "https://app.example.vn", http.StatusOK, "https://app.example.vn", true},
		{"foreign origin", http.MethodGet, "http://evil.example.com", http.StatusOK, "", true},
		{"no origin", http.MethodGet, "", http.StatusOK, "", true},
		{"preflight", http.MethodOptions, "http://localhost:5173", http.StatusNoContent, "http://localhost:5173", false},
	}

	router := corsRouter(cfg)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/api/v1/memberships", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantOrigin, w.Header().Get("Access-Control-Allow-Origin"))
			assert.Equal(t, "GET, POST, PUT, DELETE", w.Header().Get("Access-Control-Allow-Methods"))
			assert.Equal(t, "Authorization, Content-Type", w.Header().Get("Access-Control-Allow-Headers"))
			assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
			assert.Equal(t, tt.handlerRuns, w.Body.Len() > 0)
			if tt.wantOrigin != "" {
				assert.Equal(t, "Origin", w.Header().Get("Vary"))
			}
		})
	}
}

func TestCORS_Wildcard(t *testing.T) {
	router := corsRouter(config.CORSConfig{AllowedOrigins: []string{"*"}})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/memberships", nil)
	req.Header.Set("Origin", "http://192.168.1.10:5173")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	// 回显具体来源而不是 "*"，以便携带凭证
	assert.Equal(t, "http://192.168.1.10:5173", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestOriginAllowed(t *testing.T) {
	assert.False(t, originAllowed([]string{"*"}, ""))
	assert.False(t, originAllowed(nil, "http://localhost:5173"))
	assert.True(t, originAllowed([]string{"http://localhost:5173"}, "http://localhost:5173"))
	assert.False(t, originAllowed([]string{"http://localhost:5173"}, "http://localhost:5174"))
}
