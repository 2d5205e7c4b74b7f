package booking

import "errors"

var (
	ErrNotConnected        = errors.New("worker is not connected to a store")
	ErrInvalidWindow       = errors.New("end time must be after start time")
	ErrWindowInPast        = errors.New("availability must start in the future")
	ErrWindowTooLong       = errors.New("availability window is too long")
	ErrWindowOverlap       = errors.New("availability overlaps an existing window")
	ErrWindowHasBookings   = errors.New("availability has booked appointments")
	ErrInvalidDuration     = errors.New("invalid duration")
	ErrWorkerNotFound      = errors.New("worker not found")
	ErrClientInactive      = errors.New("client account is not active")
	ErrWorkerHasBookings   = errors.New("worker has upcoming appointments at this store")
	ErrOutOfRange          = errors.New("start time is outside the bookable range")
	ErrSlotUnavailable     = errors.New("requested slot is not available")
	ErrCancellationClosed  = errors.New("appointment can no longer be cancelled online")
	ErrNotBooked           = errors.New("appointment is not in booked state")
	ErrNotParticipant      = errors.New("user is not part of this appointment")
	ErrAvailabilityMissing = errors.New("availability not found")
	ErrAppointmentMissing  = errors.New("appointment not found")
)
