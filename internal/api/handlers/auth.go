package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"booking-system/internal/api/interfaces"
	"booking-system/internal/api/middlewares"
	"booking-system/internal/api/models"
	"booking-system/internal/database"
	"booking-system/internal/database/repositories"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
)

// Register creates a client or worker account and signs it in
func Register(services interfaces.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.RegisterRequest
		if !bindJSON(c, &req) {
			return
		}

		cfg := services.GetConfig()
		if len(req.Password) < cfg.Security.PasswordMinLength {
			respondError(c, models.BadRequest("Password is too short").
				WithField("password", fmt.Sprintf("must be at least %d characters", cfg.Security.PasswordMinLength)))
			return
		}

		hash, err := services.AuthService().HashPassword(req.Password)
		if err != nil {
			fail(c, services, err, "hash password")
			return
		}

		user := &database.User{
			Username:     strings.TrimSpace(req.Username),
			Email:        strings.ToLower(strings.TrimSpace(req.Email)),
			PasswordHash: hash,
			Role:         req.Role,
			ProfilePic:   req.ProfilePic,
		}
		if err := services.UserRepository().Create(c.Request.Context(), user); err != nil {
			if errors.Is(err, repositories.ErrDuplicate) {
				respondError(c, models.Conflict(models.ErrCodeConflict, "Username or email already in use"))
				return
			}
			fail(c, services, err, "create user")
			return
		}

		createAuditLog(c, services, "USER_REGISTERED", user.ID, "user", "role="+user.Role)
		issueToken(c, services, user, http.StatusCreated, "Registration successful")
	}
}

// Login authenticates with e-mail and password
func Login(services interfaces.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.LoginRequest
		if !bindJSON(c, &req) {
			return
		}

		email := strings.ToLower(strings.TrimSpace(req.Email))
		user, err := services.UserRepository().GetByEmail(c.Request.Context(), email)
		if err != nil && !errors.Is(err, repositories.ErrNotFound) {
			fail(c, services, err, "load user")
			return
		}
		if user == nil || !services.AuthService().CheckPassword(user.PasswordHash, req.Password) {
			services.GetLogger().SecurityLogger("LOGIN_FAILED", email, "client_ip="+getClientIP(c))
			respondError(c, models.NewAPIError(models.ErrCodeInvalidCredentials, "Invalid email or password", http.StatusUnauthorized))
			return
		}

		if err := services.UserRepository().UpdateLastLogin(c.Request.Context(), user.ID); err != nil {
			services.GetLogger().Warning("Failed to update last login: %v", err)
		}

		createAuditLog(c, services, "USER_LOGIN", user.ID, "user", "")
		issueToken(c, services, user, http.StatusOK, "Login successful")
	}
}

// Logout revokes the presented token
func Logout(services interfaces.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := revokeCurrentToken(c, services); err != nil {
			fail(c, services, err, "revoke token")
			return
		}
		clearTokenCookie(c, services)
		respond(c, http.StatusOK, "Logged out", nil)
	}
}

// DeleteAccount deactivates the caller, cancels their future bookings and revokes the token
func DeleteAccount(services interfaces.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := currentUserID(c)
		ctx := c.Request.Context()

		var cancelled int64
		err := database.WithTx(ctx, services.GetDB(), func(tx *sqlx.Tx) error {
			if err := services.UserRepository().WithTx(tx).DeactivateUser(ctx, userID); err != nil {
				return err
			}
			n, err := services.AppointmentRepository().WithTx(tx).CancelForUser(ctx, userID, time.Now())
			cancelled = n
			return err
		})
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(c, models.NotFound(models.ErrCodeNotFound, "Account not found"))
			return
		}
		if err != nil {
			fail(c, services, err, "delete account")
			return
		}

		if err := revokeCurrentToken(c, services); err != nil {
			services.GetLogger().Error("Failed to revoke token of deleted account: %v", err)
		}
		clearTokenCookie(c, services)

		createAuditLog(c, services, "USER_DELETED", userID, "user", fmt.Sprintf("cancelled_appointments=%d", cancelled))
		respond(c, http.StatusOK, "Account deleted", gin.H{"cancelled_appointments": cancelled})
	}
}

// UpdateAccount changes username, e-mail, profile picture or password
func UpdateAccount(services interfaces.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.UpdateAccountRequest
		if !bindJSON(c, &req) {
			return
		}

		ctx := c.Request.Context()
		users := services.UserRepository()
		user, err := users.GetByID(ctx, currentUserID(c))
		if errors.Is(err, repositories.ErrNotFound) || (err == nil && !user.IsActive) {
			respondError(c, models.NotFound(models.ErrCodeNotFound, "Account not found"))
			return
		}
		if err != nil {
			fail(c, services, err, "load user")
			return
		}

		if req.Username != nil {
			user.Username = strings.TrimSpace(*req.Username)
		}
		if req.Email != nil {
			user.Email = strings.ToLower(strings.TrimSpace(*req.Email))
		}
		if req.ProfilePic != nil {
			user.ProfilePic = *req.ProfilePic
		}

		var newHash string
		if req.Password != "" {
			if !services.AuthService().CheckPassword(user.PasswordHash, req.CurrentPassword) {
				respondError(c, models.NewAPIError(models.ErrCodeInvalidCredentials, "Current password is incorrect", http.StatusUnauthorized))
				return
			}
			minLength := services.GetConfig().Security.PasswordMinLength
			if len(req.Password) < minLength {
				respondError(c, models.BadRequest("Password is too short").
					WithField("password", fmt.Sprintf("must be at least %d characters", minLength)))
				return
			}
			if newHash, err = services.AuthService().HashPassword(req.Password); err != nil {
				fail(c, services, err, "hash password")
				return
			}
		}

		err = database.WithTx(ctx, services.GetDB(), func(tx *sqlx.Tx) error {
			txUsers := users.WithTx(tx)
			if err := txUsers.UpdateUser(ctx, user); err != nil {
				return err
			}
			if newHash != "" {
				return txUsers.UpdatePassword(ctx, user.ID, newHash)
			}
			return nil
		})
		if errors.Is(err, repositories.ErrDuplicate) {
			respondError(c, models.Conflict(models.ErrCodeConflict, "Username or email already in use"))
			return
		}
		if err != nil {
			fail(c, services, err, "update account")
			return
		}

		createAuditLog(c, services, "USER_UPDATED", user.ID, "user", fmt.Sprintf("password_changed=%t", newHash != ""))
		// username and e-mail travel in the token, so hand out a fresh one
		issueToken(c, services, user, http.StatusOK, "Account updated")
	}
}

// Me returns the caller with the profile matching their role
func Me(services interfaces.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		users := services.UserRepository()

		user, err := users.GetByID(ctx, currentUserID(c))
		if errors.Is(err, repositories.ErrNotFound) || (err == nil && !user.IsActive) {
			respondError(c, models.NotFound(models.ErrCodeNotFound, "Account not found"))
			return
		}
		if err != nil {
			fail(c, services, err, "load user")
			return
		}

		resp := models.MeResponse{User: user}
		switch user.Role {
		case database.RoleClient:
			resp.ClientProfile, err = users.GetClientProfile(ctx, user.ID)
		case database.RoleWorker:
			resp.WorkerProfile, err = users.GetWorkerProfile(ctx, user.ID)
		}
		if err != nil && !errors.Is(err, repositories.ErrNotFound) {
			fail(c, services, err, "load profile")
			return
		}

		respond(c, http.StatusOK, "", resp)
	}
}

// UpdateProfile upserts the client or worker profile of the caller
func UpdateProfile(services interfaces.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.ProfileRequest
		if !bindJSON(c, &req) {
			return
		}

		ctx := c.Request.Context()
		userID := currentUserID(c)
		users := services.UserRepository()

		var (
			profile interface{}
			err     error
		)
		if currentRole(c) == database.RoleWorker {
			p := &database.ExtendedHair{
				UserID:          userID,
				Description:     req.Description,
				Specialties:     req.Specialties,
				ExperienceYears: req.ExperienceYears,
			}
			err = users.UpsertWorkerProfile(ctx, p)
			profile = p
		} else {
			p := &database.ExtendedUser{
				UserID:    userID,
				FirstName: req.FirstName,
				LastName:  req.LastName,
				Phone:     req.Phone,
				City:      req.City,
			}
			err = users.UpsertClientProfile(ctx, p)
			profile = p
		}
		if err != nil {
			fail(c, services, err, "update profile")
			return
		}

		respond(c, http.StatusOK, "Profile updated", profile)
	}
}

// ClientWelcome is the check the client frontend uses to confirm its role
func ClientWelcome(services interfaces.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Welcome, Client!"})
	}
}

// HairWelcome is the check the worker frontend uses to confirm its role
func HairWelcome(services interfaces.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Welcome, Hair!"})
	}
}

// IsStoreOwner reports whether the caller owns a store
func IsStoreOwner(services interfaces.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		store, err := services.StoreRepository().GetByOwner(c.Request.Context(), currentUserID(c))
		if errors.Is(err, repositories.ErrNotFound) {
			c.JSON(http.StatusOK, models.StoreOwnerResponse{})
			return
		}
		if err != nil {
			fail(c, services, err, "load store")
			return
		}

		c.JSON(http.StatusOK, models.StoreOwnerResponse{
			IsStoreOwner: true,
			StoreID:      &store.ID,
			StoreName:    store.Name,
		})
	}
}

// IsConnectedToStore reports the store the caller works at, if any
func IsConnectedToStore(services interfaces.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		stores := services.StoreRepository()

		membership, err := stores.GetMembership(ctx, currentUserID(c))
		if errors.Is(err, repositories.ErrNotFound) {
			c.JSON(http.StatusOK, models.StoreConnectionResponse{})
			return
		}
		if err != nil {
			fail(c, services, err, "load store membership")
			return
		}

		store, err := stores.GetByID(ctx, membership.StoreID)
		if err != nil {
			fail(c, services, err, "load store")
			return
		}

		c.JSON(http.StatusOK, models.StoreConnectionResponse{
			IsConnectedToStore: true,
			Store:              store,
			Role:               membership.Role,
		})
	}
}

func issueToken(c *gin.Context, services interfaces.Services, user *database.User, status int, message string) {
	token, expiresAt, err := services.AuthService().GenerateToken(user)
	if err != nil {
		fail(c, services, err, "issue token")
		return
	}

	cfg := services.GetConfig()
	if cfg.Security.TokenCookie != "" {
		// the frontends decode this cookie client side, so it cannot be HttpOnly
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(cfg.Security.TokenCookie, token, int(time.Until(expiresAt).Seconds()), "/", "", cfg.Server.TLS.Enabled, false)
	}

	respond(c, status, message, models.AuthResponse{
		Token:     token,
		ExpiresAt: expiresAt.Unix(),
		User:      user,
	})
}

func revokeCurrentToken(c *gin.Context, services interfaces.Services) error {
	claims := currentClaims(c)
	if claims == nil {
		return nil
	}
	return services.AuthService().RevokeToken(c.Request.Context(), c.GetString(middlewares.ContextToken), claims)
}

func clearTokenCookie(c *gin.Context, services interfaces.Services) {
	cfg := services.GetConfig()
	if cfg.Security.TokenCookie != "" {
		c.SetCookie(cfg.Security.TokenCookie, "", -1, "/", "", cfg.Server.TLS.Enabled, false)
	}
}
