package models

import "net/http"

// Error codes
const (
	// General errors
	ErrCodeInvalidRequest     = "INVALID_REQUEST"
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeForbidden          = "FORBIDDEN"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeConflict           = "CONFLICT"
	ErrCodeInternalError      = "INTERNAL_ERROR"
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE"
	ErrCodeRateLimitExceeded  = "RATE_LIMIT_EXCEEDED"

	// Authentication errors
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeInvalidToken       = "INVALID_TOKEN"
	ErrCodeAccountInactive    = "ACCOUNT_INACTIVE"

	// Store errors
	ErrCodeStoreNotFound     = "STORE_NOT_FOUND"
	ErrCodeNotStoreOwner     = "NOT_STORE_OWNER"
	ErrCodeAlreadyConnected  = "ALREADY_CONNECTED"
	ErrCodeNotConnected      = "NOT_CONNECTED_TO_STORE"
	ErrCodeWorkerNotFound    = "WORKER_NOT_FOUND"
	ErrCodeCannotRemoveOwner = "CANNOT_REMOVE_OWNER"
	ErrCodeWorkerHasBookings = "WORKER_HAS_BOOKINGS"

	// Booking errors
	ErrCodeInvalidWindow        = "INVALID_AVAILABILITY"
	ErrCodeAvailabilityOverlap  = "AVAILABILITY_OVERLAP"
	ErrCodeAvailabilityBooked   = "AVAILABILITY_HAS_BOOKINGS"
	ErrCodeSlotUnavailable      = "SLOT_UNAVAILABLE"
	ErrCodeBookingOutOfRange    = "BOOKING_OUT_OF_RANGE"
	ErrCodeCancellationClosed   = "CANCELLATION_CLOSED"
	ErrCodeAppointmentNotBooked = "APPOINTMENT_NOT_BOOKED"

	// Social errors
	ErrCodeChatNotAllowed = "CHAT_NOT_ALLOWED"
)

// APIError represents a structured API error
type APIError struct {
	Code       string                 `json:"code"`
	Message    string                 `json:"message"`
	Details    string                 `json:"details,omitempty"`
	Fields     map[string]string      `json:"fields,omitempty"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
	StatusCode int                    `json:"-"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return e.Message
}

// NewAPIError creates a new API error
func NewAPIError(code, message string, statusCode int) *APIError {
	return &APIError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
	}
}

// WithDetails adds details to the error
func (e *APIError) WithDetails(details string) *APIError {
	e.Details = details
	return e
}

// WithField adds a field error
func (e *APIError) WithField(field, message string) *APIError {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	e.Fields[field] = message
	return e
}

// Info converts the error to the envelope representation
func (e *APIError) Info() *ErrorInfo {
	return &ErrorInfo{Code: e.Code, Message: e.Message, Details: e.Details, Fields: e.Fields}
}

func BadRequest(message string) *APIError {
	return NewAPIError(ErrCodeInvalidRequest, message, http.StatusBadRequest)
}

func NotFound(code, message string) *APIError {
	return NewAPIError(code, message, http.StatusNotFound)
}

func Forbidden(code, message string) *APIError {
	return NewAPIError(code, message, http.StatusForbidden)
}

func Conflict(code, message string) *APIError {
	return NewAPIError(code, message, http.StatusConflict)
}

func Internal(message string) *APIError {
	return NewAPIError(ErrCodeInternalError, message, http.StatusInternalServerError)
}
