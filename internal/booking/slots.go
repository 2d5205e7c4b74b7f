package booking

import (
	"time"

	"booking-system/internal/database"
)

// Slot is a bookable interval
type Slot struct {
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

// ComputeSlots cuts windows into consecutive slots of the given duration,
// aligned to each window start. A slot is returned when it starts inside
// [from, to), starts no earlier than earliest and overlaps no booked appointment.
func ComputeSlots(windows []database.AvailabilityTime, booked []database.Appointment,
	duration time.Duration, from, to, earliest time.Time) []Slot {
	slots := []Slot{}
	if duration <= 0 {
		return slots
	}

	for _, w := range windows {
		for start := w.StartTime; !start.Add(duration).After(w.EndTime); start = start.Add(duration) {
			end := start.Add(duration)
			if start.Before(from) || !start.Before(to) || start.Before(earliest) {
				continue
			}
			if overlapsAny(start, end, booked) {
				continue
			}
			slots = append(slots, Slot{StartTime: start, EndTime: end})
		}
	}
	return slots
}

func overlapsAny(start, end time.Time, booked []database.Appointment) bool {
	for _, a := range booked {
		if Overlaps(start, end, a.StartTime, a.EndTime) {
			return true
		}
	}
	return false
}

// Overlaps reports whether the half-open intervals [s1, e1) and [s2, e2) intersect
func Overlaps(s1, e1, s2, e2 time.Time) bool {
	return s1.Before(e2) && s2.Before(e1)
}
