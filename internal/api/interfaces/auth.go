package interfaces

import (
	"context"
	"time"

	"booking-system/internal/database"
)

// Claims represents validated JWT token claims
type Claims struct {
	UserID     int64  `json:"userId"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	Username   string `json:"username"`
	ProfilePic string `json:"profilePic"`
	TokenID    string `json:"jti"`
	ExpiresAt  int64  `json:"exp"`
}

type AuthServiceInterface interface {
	GenerateToken(user *database.User) (string, time.Time, error)
	ValidateToken(ctx context.Context, token string) (*Claims, error)
	RevokeToken(ctx context.Context, token string, claims *Claims) error
	HashPassword(password string) (string, error)
	CheckPassword(hash, password string) bool
}
