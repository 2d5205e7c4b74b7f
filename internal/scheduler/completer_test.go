package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"booking-system/pkg/logger"
)

type fakeCompleter struct {
	calls     atomic.Int32
	retention time.Duration
	err       error
}

func (f *fakeCompleter) CompleteFinished(_ context.Context, retention time.Duration) (int64, int64, error) {
	f.calls.Add(1)
	f.retention = retention
	if f.err != nil {
		return 0, 0, f.err
	}
	return 2, 1, nil
}

func TestRunNow(t *testing.T) {
	fake := &fakeCompleter{}
	ac := NewAppointmentCompleter(fake, "@every 5m", 72*time.Hour, logger.NewNop())

	var gotCompleted, gotPruned int64
	ac.SetCallback(func(c, p int64) { gotCompleted, gotPruned = c, p })

	completed, pruned, err := ac.RunNow(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 2, completed)
	assert.EqualValues(t, 1, pruned)
	assert.EqualValues(t, 2, gotCompleted)
	assert.EqualValues(t, 1, gotPruned)
	assert.Equal(t, 72*time.Hour, fake.retention)
}

func TestRunNow_PropagatesError(t *testing.T) {
	fake := &fakeCompleter{err: errors.New("db down")}
	ac := NewAppointmentCompleter(fake, "@every 5m", time.Hour, logger.NewNop())

	called := false
	ac.SetCallback(func(int64, int64) { called = true })

	_, _, err := ac.RunNow(context.Background())
	assert.EqualError(t, err, "db down")
	assert.False(t, called)
}

func TestStartStop(t *testing.T) {
	ac := NewAppointmentCompleter(&fakeCompleter{}, "@every 5m", time.Hour, logger.NewNop())

	require.NoError(t, ac.Start())
	assert.True(t, ac.IsRunning())
	assert.Error(t, ac.Start())

	ac.Stop()
	assert.False(t, ac.IsRunning())
	ac.Stop()
}

func TestStart_InvalidSpec(t *testing.T) {
	ac := NewAppointmentCompleter(&fakeCompleter{}, "every now and then", time.Hour, logger.NewNop())

	assert.Error(t, ac.Start())
	assert.False(t, ac.IsRunning())
}

func TestSchedule_Fires(t *testing.T) {
	fake := &fakeCompleter{}
	ac := NewAppointmentCompleter(fake, "@every 1s", time.Hour, logger.NewNop())

	require.NoError(t, ac.Start())
	defer ac.Stop()

	assert.Eventually(t, func() bool { return fake.calls.Load() > 0 }, 5*time.Second, 50*time.Millisecond)
}
