// Package client is a Go client for the booking API. It keeps the session token,
// attaches it to every request and forgets it when the server rejects it.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"booking-system/pkg/logger"
)

const (
	DefaultBaseURL = "http://localhost:8080"
	DefaultTimeout = 10 * time.Second
)

// HTTPError is returned for any non-2xx response
type HTTPError struct {
	Status int
	Body   []byte
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("request failed: %d %s", e.Status, strings.TrimSpace(string(e.Body)))
}

// Client talks to the booking API
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenStore
	logger     *logger.Logger
}

// Option configures a Client
type Option func(*Client)

// WithBaseURL points the client at another server
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(url, "/") }
}

// WithTimeout overrides the request timeout
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTokenStore keeps the session token somewhere other than memory
func WithTokenStore(store TokenStore) Option {
	return func(c *Client) { c.tokens = store }
}

// WithLogger sets the logger used for swallowed failures
func WithLogger(log *logger.Logger) Option {
	return func(c *Client) { c.logger = log }
}

// New creates a client with the defaults overridden by opts
func New(opts ...Option) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		tokens:     &MemoryTokenStore{},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = logger.NewNop()
	}
	c.logger = c.logger.WithComponent("client")
	return c
}

// Tokens exposes the token store
func (c *Client) Tokens() TokenStore {
	return c.tokens
}

// Do sends a JSON request and decodes a 2xx body into out when out is not nil.
// 401 and 403 responses clear the stored token.
func (c *Client) Do(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token := c.tokens.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		c.tokens.Clear()
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &HTTPError{Status: resp.StatusCode, Body: respBody}
	}

	if out == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// envelope is the server's standard response wrapper
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// User is the account returned by the server
type User struct {
	ID         int64  `json:"id"`
	Username   string `json:"username"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	ProfilePic string `json:"profile_pic"`
}

// Session is the result of a login or registration
type Session struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expires_at"`
	User      *User  `json:"user"`
}

// RegisterRequest is the body of an account registration
type RegisterRequest struct {
	Username   string `json:"username"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	Role       string `json:"role"`
	ProfilePic string `json:"profilePic,omitempty"`
}

// Login signs in and stores the returned token
func (c *Client) Login(ctx context.Context, email, password string) (*Session, error) {
	body := map[string]string{"email": email, "password": password}
	return c.authenticate(ctx, "/api/v1/login", body)
}

// Register creates an account and stores the returned token
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*Session, error) {
	return c.authenticate(ctx, "/api/v1/register", req)
}

// Logout revokes the token on the server and forgets it locally
func (c *Client) Logout(ctx context.Context) error {
	defer c.tokens.Clear()
	return c.Do(ctx, http.MethodPost, "/api/v1/logout", nil, nil)
}

func (c *Client) authenticate(ctx context.Context, path string, body interface{}) (*Session, error) {
	var env envelope
	if err := c.Do(ctx, http.MethodPost, path, body, &env); err != nil {
		return nil, err
	}

	var session Session
	if err := json.Unmarshal(env.Data, &session); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	if session.Token == "" {
		return nil, fmt.Errorf("server returned no token")
	}

	c.tokens.SetToken(session.Token)
	return &session, nil
}
