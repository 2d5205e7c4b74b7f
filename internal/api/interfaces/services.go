package interfaces

import (
	"context"

	"github.com/jmoiron/sqlx"

	"booking-system/internal/booking"
	"booking-system/internal/database/repositories"
	"booking-system/internal/realtime"
	"booking-system/internal/scheduler"
	"booking-system/pkg/config"
	"booking-system/pkg/logger"
)

// Services defines the interface for API services
type Services interface {
	GetLogger() *logger.Logger
	GetConfig() *config.Config
	GetDB() *sqlx.DB
	AuthService() AuthServiceInterface
	BookingService() *booking.Service
	ChatHub() *realtime.Hub
	Completer() *scheduler.AppointmentCompleter
	UserRepository() *repositories.UserRepository
	StoreRepository() *repositories.StoreRepository
	AppointmentRepository() *repositories.AppointmentRepository
	FriendshipRepository() *repositories.FriendshipRepository
	ChatRepository() *repositories.ChatRepository
	AuditLogRepository() *repositories.AuditLogRepository
	IsHealthy(ctx context.Context) bool
}
