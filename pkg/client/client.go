// Package client is a Go SDK for the quit_go_server REST API. It unwraps the
// {code, message, data} envelope, carries the login token, and hosts the
// quit-plan store and the payment redirect flow built on top of it.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/breathfree/quit_go_server/internal/model/dto"
)

const defaultHTTPTimeout = 30 * time.Second

const maxResponseBodyBytes int64 = 4 * 1024 * 1024

// 业务码，与服务端 response 包一致
const (
	CodeSuccess          = 0
	CodeParamError       = 1000
	CodeAuthFailed       = 1001
	CodePermissionDenied = 1002
	CodeResourceNotFound = 1003
	CodeSubscription     = 1004
	CodeDuplicateAction  = 1005
	CodeValidation       = 1006
	CodePaymentFailed    = 1007
	CodeServerError      = 5000
)

// APIError is a non-zero business code returned by the server.
type APIError struct {
	Code    int
	Message string
	Method  string
	Path    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s %s: code=%d %s", e.Method, e.Path, e.Code, e.Message)
}

// IsCode reports whether err is an APIError with the given code.
func IsCode(err error, code int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == code
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Client is a thin HTTP wrapper around the API. Safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client

	mu    sync.RWMutex
	token string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithToken starts the client with an existing token.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// New creates a client for baseURL, e.g. http://localhost:8080/api/v1.
func New(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("api base url is required")
	}

	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Token returns the current bearer token.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// SetToken replaces the bearer token. An empty token logs out.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// Session 登录结果
type Session struct {
	Token string
	User  *dto.UserInfo
}

// Login authenticates and keeps the returned token for later calls.
func (c *Client) Login(ctx context.Context, email, password, role string) (*Session, error) {
	var resp dto.LoginResponse
	req := dto.LoginRequest{Email: email, Password: password, Role: role}
	if err := c.do(ctx, http.MethodPost, "/auth/login", req, &resp); err != nil {
		return nil, err
	}
	c.SetToken(resp.Token)
	return &Session{Token: resp.Token, User: resp.User}, nil
}

// Register creates a member account.
func (c *Client) Register(ctx context.Context, req dto.RegisterRequest) (int64, error) {
	var resp dto.RegisterResponse
	if err := c.do(ctx, http.MethodPost, "/auth/register", req, &resp); err != nil {
		return 0, err
	}
	return resp.UserID, nil
}

// Profile returns the logged-in user.
func (c *Client) Profile(ctx context.Context) (*dto.UserInfo, error) {
	var user dto.UserInfo
	if err := c.do(ctx, http.MethodGet, "/user/profile", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// SubscriptionStatus returns the subscription snapshot.
func (c *Client) SubscriptionStatus(ctx context.Context) (*dto.SubscriptionStatus, error) {
	var status dto.SubscriptionStatus
	if err := c.do(ctx, http.MethodGet, "/subscription/status", nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// Memberships lists the public membership catalog.
func (c *Client) Memberships(ctx context.Context) ([]dto.MembershipInfo, error) {
	var items []dto.MembershipInfo
	if err := c.do(ctx, http.MethodGet, "/memberships", nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// SmokingStatus returns the declared baseline.
func (c *Client) SmokingStatus(ctx context.Context) (*dto.SmokingStatusInfo, error) {
	var info dto.SmokingStatusInfo
	if err := c.do(ctx, http.MethodGet, "/smoking-status", nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// SaveSmokingStatus upserts the baseline.
func (c *Client) SaveSmokingStatus(ctx context.Context, req dto.SmokingStatusRequest) (*dto.SmokingStatusInfo, error) {
	var info dto.SmokingStatusInfo
	if err := c.do(ctx, http.MethodPost, "/smoking-status", req, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// LogProgress records today's entry.
func (c *Client) LogProgress(ctx context.Context, req dto.ProgressLogRequest) (*dto.ProgressLogInfo, error) {
	var info dto.ProgressLogInfo
	if err := c.do(ctx, http.MethodPost, "/progress-logs", req, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// do sends body as JSON and decodes the envelope data into out (may be nil).
func (c *Client) do(ctx context.Context, method, path string, body, out any) (err error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request %s %s failed: %w", method, path, err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close response body for %s %s: %w", method, path, closeErr)
		}
	}()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return &APIError{Code: CodeServerError, Message: http.StatusText(resp.StatusCode), Method: method, Path: path}
	}

	var env envelope
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBodyBytes)).Decode(&env); err != nil {
		return fmt.Errorf("decode response %s %s: %w", method, path, err)
	}
	if env.Code != CodeSuccess {
		return &APIError{Code: env.Code, Message: env.Message, Method: method, Path: path}
	}
	if out == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode data %s %s: %w", method, path, err)
	}
	return nil
}
