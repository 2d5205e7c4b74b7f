package client

import (
	"sync"

	"github.com/golang-jwt/jwt/v5"
)

const (
	RoleClient = "client"
	RoleWorker = "worker"
)

// TokenStore keeps the session token between requests
type TokenStore interface {
	Token() string
	SetToken(token string)
	Clear()
}

// MemoryTokenStore is a TokenStore held in process memory
type MemoryTokenStore struct {
	mu    sync.RWMutex
	token string
}

func (s *MemoryTokenStore) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *MemoryTokenStore) SetToken(token string) {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
}

func (s *MemoryTokenStore) Clear() {
	s.SetToken("")
}

// TokenInfo is the identity carried in the session token
type TokenInfo struct {
	UserID     int64  `json:"userId"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	Username   string `json:"username"`
	ProfilePic string `json:"profilePic"`
	jwt.RegisteredClaims
}

// TokenInfo decodes the stored token without checking its signature.
// It returns nil when there is no token or it cannot be decoded.
func (c *Client) TokenInfo() *TokenInfo {
	token := c.tokens.Token()
	if token == "" {
		return nil
	}

	var info TokenInfo
	if _, _, err := jwt.NewParser().ParseUnverified(token, &info); err != nil {
		c.logger.Warning("Failed to decode token: %v", err)
		return nil
	}
	return &info
}

// IsClientAuthenticated reports whether the stored token belongs to a client
func (c *Client) IsClientAuthenticated() bool {
	info := c.TokenInfo()
	return info != nil && info.Role == RoleClient
}

// IsWorkerAuthenticated reports whether the stored token belongs to a worker
func (c *Client) IsWorkerAuthenticated() bool {
	info := c.TokenInfo()
	return info != nil && info.Role == RoleWorker
}
