package oauth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func TestGoogleOAuth_GetAuthURL(t *testing.T) {
	g := NewGoogleOAuth("test-client-id", "test-secret", "http://example.com/callback")

	url := g.GetAuthURL("test-state")

	assert.Contains(t, url, "accounts.google.com")
	assert.Contains(t, url, "client_id=test-client-id")
	assert.Contains(t, url, "state=test-state")
	assert.Contains(t, url, "prompt=select_account")
}

func mockUserInfo(t *testing.T, user GoogleUser) *GoogleOAuth {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(user)
	}))
	t.Cleanup(server.Close)

	g := NewGoogleOAuth("id", "secret", "http://localhost/callback")
	g.userInfoURL = server.URL
	return g
}

func TestGoogleOAuth_GetUser(t *testing.T) {
	token := &oauth2.Token{AccessToken: "test-token", TokenType: "Bearer"}

	t.Run("verified", func(t *testing.T) {
		g := mockUserInfo(t, GoogleUser{Sub: "1001", Email: "lan@example.com", EmailVerified: true, Name: "Lan"})

		user, err := g.GetUser(context.Background(), token)
		require.NoError(t, err)
		assert.Equal(t, "1001", user.Sub)
		assert.Equal(t, "lan@example.com", user.Email)
	})

	t.Run("unverified email", func(t *testing.T) {
		g := mockUserInfo(t, GoogleUser{Sub: "1002", Email: "x@example.com"})

		_, err := g.GetUser(context.Background(), token)
		assert.ErrorIs(t, err, ErrEmailNotVerified)
	})

	t.Run("missing subject", func(t *testing.T) {
		g := mockUserInfo(t, GoogleUser{Email: "x@example.com", EmailVerified: true})

		_, err := g.GetUser(context.Background(), token)
		assert.Error(t, err)
	})
}
