package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"booking-system/internal/api/interfaces"
	"booking-system/internal/api/models"
	"booking-system/internal/booking"
	"booking-system/internal/database"
	"booking-system/internal/database/repositories"
	"booking-system/internal/metrics"

	"github.com/gin-gonic/gin"
)

// CreateAvailability opens a bookable window for the calling worker
func CreateAvailability(services interfaces.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.AvailabilityRequest
		if !bindJSON(c, &req) {
			return
		}

		window, err := services.BookingService().CreateAvailability(c.Request.Context(), currentUserID(c), req.StartTime, req.EndTime)
		if err != nil {
			fail(c, services, err, "create availability")
			return
		}
		respond(c, http.StatusCreated, "Availability created", window)
	}
}

// ListAvailability returns the caller's windows that have not ended
func ListAvailability(services interfaces.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		windows, err := services.BookingService().ListAvailability(c.Request.Context(), currentUserID(c))
		if err != nil {
			fail(c, services, err, "list availability")
			return
		}
		respond(c, http.StatusOK, "", gin.H{"availability": windows})
	}
}

// DeleteAvailability removes one of the caller's windows
func DeleteAvailability(services interfaces.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}

		if err := services.BookingService().DeleteAvailability(c.Request.Context(), currentUserID(c), id); err != nil {
			fail(c, services, err, "delete availability")
			return
		}
		respond(c, http.StatusOK, "Availability removed", nil)
	}
}

// WorkerSlots lists the free slots of a worker on one day
func WorkerSlots(services interfaces.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		workerID, ok := paramID(c, "id")
		if !ok {
			return
		}

		day, err := time.Parse("2006-01-02", c.Query("date"))
		if err != nil {
			respondError(c, models.BadRequest("Invalid date").WithField("date", "expected YYYY-MM-DD"))
			return
		}

		minutes := 0
		if raw := c.Query("duration"); raw != "" {
			if minutes, err = strconv.Atoi(raw); err != nil || minutes <= 0 {
				respondError(c, models.BadRequest("Invalid duration").WithField("duration", "minutes, positive integer"))
				return
			}
		}

		svc := services.BookingService()
		duration, err := svc.SlotDuration(minutes)
		if err != nil {
			fail(c, services, err, "resolve duration")
			return
		}

		slots, err := svc.FreeSlots(c.Request.Context(), workerID, day, duration)
		if err != nil {
			fail(c, services, err, "compute slots")
			return
		}

		respond(c, http.StatusOK, "", gin.H{
			"worker_id":        workerID,
			"date":             day.Format("2006-01-02"),
			"duration_minutes": int(duration / time.Minute),
			"slots":            slots,
		})
	}
}

// BookAppointment books a worker for the calling client
func BookAppointment(services interfaces.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.BookingRequest
		if !bindJSON(c, &req) {
			return
		}

		svc := services.BookingService()
		duration, err := svc.SlotDuration(req.DurationMinutes)
		if err != nil {
			fail(c, services, err, "resolve duration")
			return
		}

		clientID := currentUserID(c)
		appointment, err := svc.Book(c.Request.Context(), booking.BookRequest{
			ClientID:    clientID,
			WorkerID:    req.WorkerID,
			StartTime:   req.StartTime,
			Duration:    duration,
			ServiceName: req.ServiceName,
			Note:        req.Note,
		})
		if err != nil {
			fail(c, services, err, "book appointment")
			return
		}

		metrics.RecordAppointments(database.AppointmentBooked, 1)
		createAuditLog(c, services, "APPOINTMENT_BOOKED", clientID, fmt.Sprintf("appointment:%d", appointment.ID),
			fmt.Sprintf("worker_id=%d", appointment.WorkerID))
		respond(c, http.StatusCreated, "Appointment booked", appointment)
	}
}

// ListAppointments lists the client's bookings or the worker's schedule
func ListAppointments(services interfaces.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		filter := repositories.AppointmentFilter{
			Status: c.Query("status"),
			Limit:  queryInt(c, "limit", 100, 500),
			Offset: queryInt(c, "offset", 0, 0),
		}

		switch filter.Status {
		case "", database.AppointmentBooked, database.AppointmentCancelled, database.AppointmentCompleted:
		default:
			respondError(c, models.BadRequest("Invalid status").WithField("status", "booked, cancelled or completed"))
			return
		}

		for name, target := range map[string]**time.Time{"from": &filter.From, "to": &filter.To} {
			raw := c.Query(name)
			if raw == "" {
				continue
			}
			t, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				respondError(c, models.BadRequest("Invalid "+name).WithField(name, "expected RFC3339"))
				return
			}
			*target = &t
		}

		appointments, err := services.BookingService().ListAppointments(c.Request.Context(), currentUserID(c), currentRole(c), filter)
		if err != nil {
			fail(c, services, err, "list appointments")
			return
		}

		respond(c, http.StatusOK, "", gin.H{
			"appointments": appointments,
			"limit":        filter.Limit,
			"offset":       filter.Offset,
		})
	}
}

// CancelAppointment cancels a booked appointment of the caller
func CancelAppointment(services interfaces.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}

		userID := currentUserID(c)
		appointment, err := services.BookingService().Cancel(c.Request.Context(), userID, id)
		if err != nil {
			fail(c, services, err, "cancel appointment")
			return
		}

		metrics.RecordAppointments(database.AppointmentCancelled, 1)
		createAuditLog(c, services, "APPOINTMENT_CANCELLED", userID, fmt.Sprintf("appointment:%d", id), "")
		respond(c, http.StatusOK, "Appointment cancelled", appointment)
	}
}
