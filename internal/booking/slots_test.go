package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"booking-system/internal/database"
)

func at(hour, minute int) time.Time {
	return time.Date(2030, 1, 16, hour, minute, 0, 0, time.UTC)
}

func TestComputeSlots_AlignedToWindowStart(t *testing.T) {
	windows := []database.AvailabilityTime{{StartTime: at(9, 15), EndTime: at(11, 0)}}

	slots := ComputeSlots(windows, nil, 30*time.Minute, at(0, 0), at(23, 59), at(0, 0))

	require.Len(t, slots, 3)
	assert.Equal(t, at(9, 15), slots[0].StartTime)
	assert.Equal(t, at(10, 15), slots[2].StartTime)
	assert.Equal(t, at(10, 45), slots[2].EndTime)
}

func TestComputeSlots_SkipsBookedAndEarly(t *testing.T) {
	windows := []database.AvailabilityTime{
		{StartTime: at(9, 0), EndTime: at(12, 0)},
		{StartTime: at(14, 0), EndTime: at(15, 0)},
	}
	booked := []database.Appointment{{StartTime: at(10, 30), EndTime: at(11, 15)}}

	slots := ComputeSlots(windows, booked, 30*time.Minute, at(0, 0), at(23, 59), at(9, 30))

	var starts []time.Time
	for _, s := range slots {
		starts = append(starts, s.StartTime)
	}
	assert.Equal(t, []time.Time{at(9, 30), at(10, 0), at(11, 30), at(14, 0), at(14, 30)}, starts)
}

func TestComputeSlots_RespectsDayBounds(t *testing.T) {
	windows := []database.AvailabilityTime{{StartTime: at(22, 0), EndTime: at(22, 0).Add(3 * time.Hour)}}

	slots := ComputeSlots(windows, nil, time.Hour, at(0, 0), at(0, 0).Add(24*time.Hour), at(0, 0))

	require.Len(t, slots, 2)
	assert.Equal(t, at(23, 0), slots[1].StartTime)
}

func TestComputeSlots_ZeroDuration(t *testing.T) {
	windows := []database.AvailabilityTime{{StartTime: at(9, 0), EndTime: at(10, 0)}}
	assert.Empty(t, ComputeSlots(windows, nil, 0, at(0, 0), at(23, 0), at(0, 0)))
}

func TestOverlaps(t *testing.T) {
	assert.True(t, Overlaps(at(9, 0), at(10, 0), at(9, 30), at(10, 30)))
	assert.False(t, Overlaps(at(9, 0), at(10, 0), at(10, 0), at(11, 0)))
	assert.True(t, Overlaps(at(9, 0), at(12, 0), at(10, 0), at(11, 0)))
}
