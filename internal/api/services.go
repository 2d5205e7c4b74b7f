package api

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"

	"booking-system/internal/api/interfaces"
	"booking-system/internal/booking"
	"booking-system/internal/database"
	"booking-system/internal/database/repositories"
	"booking-system/internal/metrics"
	"booking-system/internal/realtime"
	"booking-system/internal/scheduler"
	"booking-system/internal/tokenstore"
	"booking-system/pkg/config"
	"booking-system/pkg/logger"
)

var (
	// ErrTokenRevoked is returned for tokens that were logged out
	ErrTokenRevoked = errors.New("token has been revoked")
	// ErrAccountInactive is returned for tokens of deleted or deactivated accounts
	ErrAccountInactive = errors.New("account is not active")
)

// tokenClaims is the JWT payload shared with the frontends
type tokenClaims struct {
	UserID     int64  `json:"userId"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	Username   string `json:"username"`
	ProfilePic string `json:"profilePic"`
	jwt.RegisteredClaims
}

// Services contains all the dependencies for API handlers
type Services struct {
	// Core dependencies
	DB        *sqlx.DB
	Logger    *logger.Logger
	Config    *config.Config
	Blacklist tokenstore.Blacklist

	authService interfaces.AuthServiceInterface
	booking     *booking.Service
	hub         *realtime.Hub
	completer   *scheduler.AppointmentCompleter

	// Repositories
	userRepository        *repositories.UserRepository
	storeRepository       *repositories.StoreRepository
	appointmentRepository *repositories.AppointmentRepository
	friendshipRepository  *repositories.FriendshipRepository
	chatRepository        *repositories.ChatRepository
	auditLogRepository    *repositories.AuditLogRepository
}

// NewServices creates a new services container
func NewServices(db *sqlx.DB, blacklist tokenstore.Blacklist, log *logger.Logger, cfg *config.Config) *Services {
	services := &Services{
		DB:        db,
		Logger:    log,
		Config:    cfg,
		Blacklist: blacklist,
	}

	services.authService = services
	services.booking = booking.NewService(db, cfg.Booking, log)
	services.hub = realtime.NewHub(log)
	services.completer = scheduler.NewAppointmentCompleter(
		services.booking, cfg.Scheduler.CompletionSpec, cfg.Scheduler.AvailabilityRetention, log)
	services.completer.SetCallback(func(completed, _ int64) {
		metrics.RecordAppointments(database.AppointmentCompleted, completed)
	})

	services.userRepository = repositories.NewUserRepository(db)
	services.storeRepository = repositories.NewStoreRepository(db)
	services.appointmentRepository = repositories.NewAppointmentRepository(db)
	services.friendshipRepository = repositories.NewFriendshipRepository(db)
	services.chatRepository = repositories.NewChatRepository(db)
	services.auditLogRepository = repositories.NewAuditLogRepository(db)

	return services
}

// Start starts all background services
func (s *Services) Start() error {
	s.Logger.Info("Starting API services...")

	if s.Config.Scheduler.Enabled {
		if err := s.completer.Start(); err != nil {
			s.Logger.Error("Failed to start appointment completer: %v", err)
			return err
		}
	}

	s.Logger.Info("All API services started successfully")
	return nil
}

// Stop stops all background services
func (s *Services) Stop() {
	s.Logger.Info("Stopping API services...")

	s.completer.Stop()
	s.hub.Close()
	if err := s.Blacklist.Close(); err != nil {
		s.Logger.Error("Error closing token blacklist: %v", err)
	}

	s.Logger.Info("All API services stopped")
}

// Interface implementation methods
func (s *Services) GetLogger() *logger.Logger {
	return s.Logger
}

func (s *Services) GetConfig() *config.Config {
	return s.Config
}

func (s *Services) GetDB() *sqlx.DB {
	return s.DB
}

func (s *Services) AuthService() interfaces.AuthServiceInterface {
	return s.authService
}

func (s *Services) BookingService() *booking.Service {
	return s.booking
}

func (s *Services) ChatHub() *realtime.Hub {
	return s.hub
}

func (s *Services) Completer() *scheduler.AppointmentCompleter {
	return s.completer
}

func (s *Services) UserRepository() *repositories.UserRepository {
	return s.userRepository
}

func (s *Services) StoreRepository() *repositories.StoreRepository {
	return s.storeRepository
}

func (s *Services) AppointmentRepository() *repositories.AppointmentRepository {
	return s.appointmentRepository
}

func (s *Services) FriendshipRepository() *repositories.FriendshipRepository {
	return s.friendshipRepository
}

func (s *Services) ChatRepository() *repositories.ChatRepository {
	return s.chatRepository
}

func (s *Services) AuditLogRepository() *repositories.AuditLogRepository {
	return s.auditLogRepository
}

// IsHealthy checks if all critical services are healthy
func (s *Services) IsHealthy(ctx context.Context) bool {
	if err := s.DB.PingContext(ctx); err != nil {
		s.Logger.Error("Database health check failed: %v", err)
		return false
	}

	if s.Config.Scheduler.Enabled && !s.completer.IsRunning() {
		s.Logger.Warning("Appointment completer is not running")
		return false
	}

	return true
}

// GenerateToken issues a signed token for the user
func (s *Services) GenerateToken(user *database.User) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(s.Config.Security.JWTExpiration)

	claims := tokenClaims{
		UserID:     user.ID,
		Email:      user.Email,
		Role:       user.Role,
		Username:   user.Username,
		ProfilePic: user.ProfilePic,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatInt(user.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.Config.Security.JWTSecret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// ValidateToken implements the AuthServiceInterface
func (s *Services) ValidateToken(ctx context.Context, token string) (*interfaces.Claims, error) {
	// Remove "Bearer " prefix if present
	token = strings.TrimPrefix(token, "Bearer ")

	var claims tokenClaims
	parsedToken, err := jwt.ParseWithClaims(token, &claims, func(token *jwt.Token) (interface{}, error) {
		secretKey := s.Config.Security.JWTSecret
		if secretKey == "" {
			return nil, errors.New("JWT secret key not configured")
		}
		return []byte(secretKey), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	if !parsedToken.Valid {
		return nil, errors.New("invalid token")
	}

	if claims.UserID == 0 {
		return nil, errors.New("missing userId claim")
	}

	if claims.Role != database.RoleClient && claims.Role != database.RoleWorker {
		return nil, fmt.Errorf("unknown role claim %q", claims.Role)
	}

	revoked, err := s.Blacklist.IsRevoked(ctx, token)
	if err != nil {
		s.Logger.Error("Token blacklist lookup failed: %v", err)
		return nil, fmt.Errorf("token revocation check failed: %w", err)
	}
	if revoked {
		return nil, ErrTokenRevoked
	}

	// a deleted account may still hold other unexpired tokens
	user, err := s.userRepository.GetByID(ctx, claims.UserID)
	if errors.Is(err, repositories.ErrNotFound) || (err == nil && !user.IsActive) {
		return nil, ErrAccountInactive
	}
	if err != nil {
		return nil, fmt.Errorf("load token user: %w", err)
	}

	return &interfaces.Claims{
		UserID:     claims.UserID,
		Email:      claims.Email,
		Role:       claims.Role,
		Username:   claims.Username,
		ProfilePic: claims.ProfilePic,
		TokenID:    claims.ID,
		ExpiresAt:  claims.ExpiresAt.Unix(),
	}, nil
}

// RevokeToken blacklists the token until it would have expired
func (s *Services) RevokeToken(ctx context.Context, token string, claims *interfaces.Claims) error {
	ttl := time.Until(time.Unix(claims.ExpiresAt, 0))
	return s.Blacklist.Revoke(ctx, strings.TrimPrefix(token, "Bearer "), ttl)
}

func (s *Services) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.Config.Security.BcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (s *Services) CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
