package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"booking-system/internal/api/interfaces"
	"booking-system/internal/api/middlewares"
	"booking-system/internal/api/models"
	"booking-system/internal/booking"
	"booking-system/internal/database"

	"github.com/gin-gonic/gin"
)

func respond(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, models.BaseResponse{
		Success:   true,
		Message:   message,
		Data:      data,
		Timestamp: time.Now().Unix(),
		RequestID: c.GetString(middlewares.ContextRequestID),
	})
}

func respondError(c *gin.Context, apiErr *models.APIError) {
	c.AbortWithStatusJSON(apiErr.StatusCode, models.BaseResponse{
		Success:   false,
		Error:     apiErr.Info(),
		Timestamp: time.Now().Unix(),
		RequestID: c.GetString(middlewares.ContextRequestID),
	})
}

// fail maps domain errors to API errors; anything unknown is logged and hidden
func fail(c *gin.Context, services interfaces.Services, err error, op string) {
	var apiErr *models.APIError
	switch {
	case errors.As(err, &apiErr):
	case errors.Is(err, booking.ErrNotConnected):
		apiErr = models.Forbidden(models.ErrCodeNotConnected, "You are not connected to a store")
	case errors.Is(err, booking.ErrInvalidWindow), errors.Is(err, booking.ErrWindowInPast),
		errors.Is(err, booking.ErrWindowTooLong):
		apiErr = models.NewAPIError(models.ErrCodeInvalidWindow, err.Error(), http.StatusBadRequest)
	case errors.Is(err, booking.ErrInvalidDuration):
		apiErr = models.BadRequest(err.Error()).WithField("duration_minutes", "out of range")
	case errors.Is(err, booking.ErrWindowOverlap):
		apiErr = models.Conflict(models.ErrCodeAvailabilityOverlap, err.Error())
	case errors.Is(err, booking.ErrWindowHasBookings):
		apiErr = models.Conflict(models.ErrCodeAvailabilityBooked, err.Error())
	case errors.Is(err, booking.ErrClientInactive):
		apiErr = models.Forbidden(models.ErrCodeAccountInactive, "Your account is not active")
	case errors.Is(err, booking.ErrWorkerHasBookings):
		apiErr = models.Conflict(models.ErrCodeWorkerHasBookings, err.Error())
	case errors.Is(err, booking.ErrWorkerNotFound):
		apiErr = models.NotFound(models.ErrCodeWorkerNotFound, "Worker not found")
	case errors.Is(err, booking.ErrOutOfRange):
		apiErr = models.NewAPIError(models.ErrCodeBookingOutOfRange, err.Error(), http.StatusBadRequest)
	case errors.Is(err, booking.ErrSlotUnavailable):
		apiErr = models.Conflict(models.ErrCodeSlotUnavailable, err.Error())
	case errors.Is(err, booking.ErrCancellationClosed):
		apiErr = models.Conflict(models.ErrCodeCancellationClosed, err.Error())
	case errors.Is(err, booking.ErrNotBooked):
		apiErr = models.Conflict(models.ErrCodeAppointmentNotBooked, err.Error())
	case errors.Is(err, booking.ErrAvailabilityMissing), errors.Is(err, booking.ErrAppointmentMissing),
		errors.Is(err, booking.ErrNotParticipant):
		// other people's records are reported as missing
		apiErr = models.NotFound(models.ErrCodeNotFound, "Not found")
	case errors.Is(err, context.Canceled):
		apiErr = models.NewAPIError(models.ErrCodeServiceUnavailable, "Request cancelled", http.StatusServiceUnavailable)
	default:
		services.GetLogger().StructuredError(err, map[string]interface{}{
			"operation":  op,
			"request_id": c.GetString(middlewares.ContextRequestID),
		})
		apiErr = models.Internal("Failed to " + op)
	}
	respondError(c, apiErr)
}

func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		respondError(c, models.BadRequest("Invalid request format").WithDetails(err.Error()))
		return false
	}
	return true
}

func currentUserID(c *gin.Context) int64 {
	id, _ := c.Get(middlewares.ContextUserID)
	userID, _ := id.(int64)
	return userID
}

func currentRole(c *gin.Context) string {
	return c.GetString(middlewares.ContextRole)
}

func currentClaims(c *gin.Context) *interfaces.Claims {
	v, _ := c.Get(middlewares.ContextClaims)
	claims, _ := v.(*interfaces.Claims)
	return claims
}

// paramID parses a positive integer path parameter, answering 400 when it is not one
func paramID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		respondError(c, models.BadRequest("Invalid "+name).WithField(name, "must be a positive integer"))
		return 0, false
	}
	return id, true
}

func queryInt(c *gin.Context, name string, def, max int) int {
	v, err := strconv.Atoi(c.Query(name))
	if err != nil || v < 0 {
		return def
	}
	if max > 0 && v > max {
		return max
	}
	return v
}

func getClientIP(c *gin.Context) string {
	if forwarded := c.GetHeader("X-Forwarded-For"); forwarded != "" {
		return strings.TrimSpace(strings.Split(forwarded, ",")[0])
	}
	if realIP := c.GetHeader("X-Real-IP"); realIP != "" {
		return realIP
	}
	return c.ClientIP()
}

func createAuditLog(c *gin.Context, services interfaces.Services, action string, userID int64, resource, details string) {
	user := strconv.FormatInt(userID, 10)
	services.GetLogger().AuditLogger(action, user, resource, details)

	auditLog := &database.AuditLog{
		Action:    action,
		UserID:    user,
		Resource:  resource,
		Details:   details,
		IPAddress: getClientIP(c),
	}
	if err := services.AuditLogRepository().InsertAuditLog(c.Request.Context(), auditLog); err != nil {
		services.GetLogger().Error("Failed to create audit log: %v", err)
	}
}
