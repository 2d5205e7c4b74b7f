// Package booking holds the availability and appointment rules.
package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"booking-system/internal/database"
	"booking-system/internal/database/repositories"
	"booking-system/pkg/config"
	"booking-system/pkg/logger"
)

// BookRequest describes an appointment a client asks for
type BookRequest struct {
	ClientID    int64
	WorkerID    int64
	StartTime   time.Time
	Duration    time.Duration
	ServiceName string
	Note        string
}

// Service validates and persists availability windows and appointments
type Service struct {
	db           *sqlx.DB
	cfg          config.BookingConfig
	users        *repositories.UserRepository
	stores       *repositories.StoreRepository
	availability *repositories.AvailabilityRepository
	appointments *repositories.AppointmentRepository
	logger       *logger.Logger
	now          func() time.Time
}

func NewService(db *sqlx.DB, cfg config.BookingConfig, log *logger.Logger) *Service {
	return &Service{
		db:           db,
		cfg:          cfg,
		users:        repositories.NewUserRepository(db),
		stores:       repositories.NewStoreRepository(db),
		availability: repositories.NewAvailabilityRepository(db),
		appointments: repositories.NewAppointmentRepository(db),
		logger:       log.WithComponent("booking"),
		now:          time.Now,
	}
}

func (s *Service) clock() time.Time {
	return s.now().UTC().Truncate(time.Second)
}

// SlotDuration resolves a requested duration in minutes, falling back to the default
func (s *Service) SlotDuration(minutes int) (time.Duration, error) {
	if minutes == 0 {
		minutes = s.cfg.DefaultSlotMinutes
	}
	if minutes <= 0 || time.Duration(minutes)*time.Minute > s.cfg.MaxWindow {
		return 0, ErrInvalidDuration
	}
	return time.Duration(minutes) * time.Minute, nil
}

// CreateAvailability opens a bookable window for the worker at the store they are connected to
func (s *Service) CreateAvailability(ctx context.Context, workerID int64, start, end time.Time) (*database.AvailabilityTime, error) {
	start, end = start.UTC().Truncate(time.Second), end.UTC().Truncate(time.Second)

	if !end.After(start) {
		return nil, ErrInvalidWindow
	}
	if !start.After(s.clock()) {
		return nil, ErrWindowInPast
	}
	if end.Sub(start) > s.cfg.MaxWindow {
		return nil, ErrWindowTooLong
	}

	window := &database.AvailabilityTime{WorkerID: workerID, StartTime: start, EndTime: end}
	err := database.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		if err := s.users.WithTx(tx).Lock(ctx, workerID); err != nil {
			return err
		}

		membership, err := s.stores.WithTx(tx).GetMembership(ctx, workerID)
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrNotConnected
		}
		if err != nil {
			return err
		}
		window.StoreID = membership.StoreID

		availability := s.availability.WithTx(tx)
		existing, err := availability.ListByWorker(ctx, workerID, start, end)
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			return ErrWindowOverlap
		}

		return availability.Create(ctx, window)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("availability created", "worker_id", workerID, "availability_id", window.ID)
	return window, nil
}

// ListAvailability returns the worker's windows that have not ended yet
func (s *Service) ListAvailability(ctx context.Context, workerID int64) ([]database.AvailabilityTime, error) {
	now := s.clock()
	return s.availability.ListByWorker(ctx, workerID, now, now.AddDate(10, 0, 0))
}

// DeleteAvailability removes one of the worker's windows unless it holds bookings
func (s *Service) DeleteAvailability(ctx context.Context, workerID, availabilityID int64) error {
	return database.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		availability := s.availability.WithTx(tx)

		window, err := availability.GetByID(ctx, availabilityID)
		if errors.Is(err, repositories.ErrNotFound) || (err == nil && window.WorkerID != workerID) {
			return ErrAvailabilityMissing
		}
		if err != nil {
			return err
		}

		booked, err := s.appointments.WithTx(tx).BookedForWorker(ctx, workerID, window.StartTime, window.EndTime)
		if err != nil {
			return err
		}
		if len(booked) > 0 {
			return ErrWindowHasBookings
		}

		return availability.Delete(ctx, availabilityID)
	})
}

// FreeSlots lists the bookable slots of a worker on the given UTC day
func (s *Service) FreeSlots(ctx context.Context, workerID int64, day time.Time, duration time.Duration) ([]Slot, error) {
	if duration <= 0 {
		return nil, ErrInvalidDuration
	}
	if _, err := s.activeWorker(ctx, s.users, workerID); err != nil {
		return nil, err
	}

	day = day.UTC()
	from := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	to := from.Add(24 * time.Hour)

	windows, err := s.availability.ListByWorker(ctx, workerID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list availability: %w", err)
	}
	// slots starting late in the day may run past midnight
	booked, err := s.appointments.BookedForWorker(ctx, workerID, from, to.Add(duration))
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}

	earliest := s.clock().Add(s.cfg.MinLeadTime)
	return ComputeSlots(windows, booked, duration, from, to, earliest), nil
}

// Book creates an appointment after checking the window and both calendars
func (s *Service) Book(ctx context.Context, req BookRequest) (*database.Appointment, error) {
	if req.Duration <= 0 || req.Duration > s.cfg.MaxWindow {
		return nil, ErrInvalidDuration
	}

	start := req.StartTime.UTC().Truncate(time.Second)
	end := start.Add(req.Duration)
	now := s.clock()
	if start.Before(now.Add(s.cfg.MinLeadTime)) || start.After(now.AddDate(0, 0, s.cfg.MaxDaysAhead)) {
		return nil, ErrOutOfRange
	}

	appointment := &database.Appointment{
		ClientID:    req.ClientID,
		WorkerID:    req.WorkerID,
		ServiceName: req.ServiceName,
		Note:        req.Note,
		StartTime:   start,
		EndTime:     end,
		Status:      database.AppointmentBooked,
	}

	err := database.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		users := s.users.WithTx(tx)

		// lock in id order so concurrent bookings of the same pair cannot deadlock
		first, second := req.ClientID, req.WorkerID
		if first > second {
			first, second = second, first
		}
		for _, id := range []int64{first, second} {
			if err := users.Lock(ctx, id); err != nil && !errors.Is(err, repositories.ErrNotFound) {
				return err
			}
		}

		if err := activeClient(ctx, users, req.ClientID); err != nil {
			return err
		}
		if _, err := s.activeWorker(ctx, users, req.WorkerID); err != nil {
			return err
		}

		window, err := s.availability.WithTx(tx).FindContaining(ctx, req.WorkerID, start, end)
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrSlotUnavailable
		}
		if err != nil {
			return err
		}
		appointment.StoreID = window.StoreID

		appointments := s.appointments.WithTx(tx)
		workerBusy, err := appointments.BookedForWorker(ctx, req.WorkerID, start, end)
		if err != nil {
			return err
		}
		clientBusy, err := appointments.BookedForClient(ctx, req.ClientID, start, end)
		if err != nil {
			return err
		}
		if len(workerBusy) > 0 || len(clientBusy) > 0 {
			return ErrSlotUnavailable
		}

		return appointments.Create(ctx, appointment)
	})
	if err != nil {
		return nil, err
	}

	s.logger.BookingLogger("APPOINTMENT_BOOKED", appointment.ID, appointment.ClientID, appointment.WorkerID,
		fmt.Sprintf("start=%s end=%s", start.Format(time.RFC3339), end.Format(time.RFC3339)))
	return appointment, nil
}

// ListAppointments returns the client's bookings or the worker's schedule
func (s *Service) ListAppointments(ctx context.Context, userID int64, role string, filter repositories.AppointmentFilter) ([]database.Appointment, error) {
	if role == database.RoleWorker {
		return s.appointments.ListForWorker(ctx, userID, filter)
	}
	return s.appointments.ListForClient(ctx, userID, filter)
}

// Cancel cancels a booked appointment. Clients must do so before the cutoff.
func (s *Service) Cancel(ctx context.Context, userID, appointmentID int64) (*database.Appointment, error) {
	var appointment *database.Appointment
	err := database.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		appointments := s.appointments.WithTx(tx)

		a, err := appointments.GetByID(ctx, appointmentID)
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrAppointmentMissing
		}
		if err != nil {
			return err
		}
		if a.ClientID != userID && a.WorkerID != userID {
			return ErrNotParticipant
		}
		if a.Status != database.AppointmentBooked {
			return ErrNotBooked
		}
		if a.ClientID == userID && a.StartTime.Sub(s.clock()) < s.cfg.CancelCutoff {
			return ErrCancellationClosed
		}

		if err := appointments.UpdateStatus(ctx, a.ID, database.AppointmentCancelled); err != nil {
			return err
		}
		a.Status = database.AppointmentCancelled
		appointment = a
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.BookingLogger("APPOINTMENT_CANCELLED", appointment.ID, appointment.ClientID, appointment.WorkerID,
		fmt.Sprintf("cancelled_by=%d", userID))
	return appointment, nil
}

// DisconnectWorker removes the worker from the store together with their open availability there.
// It refuses while the worker still has upcoming bookings at the store.
func (s *Service) DisconnectWorker(ctx context.Context, storeID, workerID int64) (int64, error) {
	var removed int64
	err := database.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		if err := s.users.WithTx(tx).Lock(ctx, workerID); err != nil {
			return err
		}

		now := s.clock()
		booked, err := s.appointments.WithTx(tx).CountBookedAtStore(ctx, workerID, storeID, now)
		if err != nil {
			return err
		}
		if booked > 0 {
			return ErrWorkerHasBookings
		}

		if err := s.stores.WithTx(tx).RemoveWorker(ctx, storeID, workerID); err != nil {
			return err
		}
		removed, err = s.availability.WithTx(tx).DeleteOpenAtStore(ctx, workerID, storeID, now)
		return err
	})
	if err != nil {
		return 0, err
	}

	s.logger.Info("worker disconnected", "store_id", storeID, "worker_id", workerID, "availability_removed", removed)
	return removed, nil
}

// CompleteFinished marks ended appointments completed and prunes windows older than retention
func (s *Service) CompleteFinished(ctx context.Context, retention time.Duration) (completed, pruned int64, err error) {
	now := s.clock()

	completed, err = s.appointments.CompleteEndedBefore(ctx, now)
	if err != nil {
		return 0, 0, fmt.Errorf("complete appointments: %w", err)
	}

	pruned, err = s.availability.DeleteEndedBefore(ctx, now.Add(-retention))
	if err != nil {
		return completed, 0, fmt.Errorf("prune availability: %w", err)
	}
	return completed, pruned, nil
}

func activeClient(ctx context.Context, users *repositories.UserRepository, clientID int64) error {
	client, err := users.GetByID(ctx, clientID)
	if errors.Is(err, repositories.ErrNotFound) {
		return ErrClientInactive
	}
	if err != nil {
		return err
	}
	if !client.IsActive || client.Role != database.RoleClient {
		return ErrClientInactive
	}
	return nil
}

func (s *Service) activeWorker(ctx context.Context, users *repositories.UserRepository, workerID int64) (*database.User, error) {
	worker, err := users.GetByID(ctx, workerID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrWorkerNotFound
	}
	if err != nil {
		return nil, err
	}
	if !worker.IsActive || worker.Role != database.RoleWorker {
		return nil, ErrWorkerNotFound
	}
	return worker, nil
}
