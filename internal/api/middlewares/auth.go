package middlewares

import (
	"net/http"
	"strings"
	"time"

	"booking-system/internal/api/interfaces"
	"booking-system/internal/api/models"

	"github.com/gin-gonic/gin"
)

// Context keys set by the auth middlewares
const (
	ContextUserID = "user_id"
	ContextRole   = "user_role"
	ContextClaims = "claims"
	ContextToken  = "token"
)

// AuthRequired middleware validates JWT tokens from the Authorization header or the token cookie
func AuthRequired(services interfaces.Services) gin.HandlerFunc {
	cookieName := services.GetConfig().Security.TokenCookie

	return func(c *gin.Context) {
		token := extractToken(c, cookieName)
		if token == "" {
			abort(c, http.StatusUnauthorized, models.ErrCodeUnauthorized, "Authorization token required")
			return
		}

		claims, err := services.AuthService().ValidateToken(c.Request.Context(), token)
		if err != nil {
			services.GetLogger().SecurityLogger("INVALID_TOKEN", "", err.Error())
			abort(c, http.StatusUnauthorized, models.ErrCodeInvalidToken, "Invalid or expired token")
			return
		}

		setClaims(c, claims, token)
		c.Next()
	}
}

// RoleRequired middleware ensures the authenticated user has one of the roles
func RoleRequired(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(ContextRole)
		for _, allowed := range roles {
			if role == allowed {
				c.Next()
				return
			}
		}
		abort(c, http.StatusForbidden, models.ErrCodeForbidden, "Access denied for role "+role)
	}
}

// WSAuthRequired middleware for WebSocket authentication. Browsers cannot set
// headers on the upgrade request, so the token travels in the query string.
func WSAuthRequired(services interfaces.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			abort(c, http.StatusUnauthorized, models.ErrCodeUnauthorized, "Token required for WebSocket")
			return
		}

		claims, err := services.AuthService().ValidateToken(c.Request.Context(), token)
		if err != nil {
			abort(c, http.StatusUnauthorized, models.ErrCodeInvalidToken, "Invalid or expired token")
			return
		}

		setClaims(c, claims, token)
		c.Next()
	}
}

func setClaims(c *gin.Context, claims *interfaces.Claims, token string) {
	c.Set(ContextUserID, claims.UserID)
	c.Set(ContextRole, claims.Role)
	c.Set(ContextClaims, claims)
	c.Set(ContextToken, token)
}

// extractToken reads the bearer token, falling back to the cookie the frontends use
func extractToken(c *gin.Context, cookieName string) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			return ""
		}
		return strings.TrimSpace(parts[1])
	}

	if cookieName == "" {
		return ""
	}
	token, err := c.Cookie(cookieName)
	if err != nil {
		return ""
	}
	return token
}

func abort(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, models.BaseResponse{
		Success: false,
		Error: &models.ErrorInfo{
			Code:    code,
			Message: message,
		},
		Timestamp: time.Now().Unix(),
		RequestID: c.GetString(ContextRequestID),
	})
}
