// Package scheduler runs the periodic appointment housekeeping.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"booking-system/pkg/logger"
)

// Completer finishes ended appointments and prunes stale availability
type Completer interface {
	CompleteFinished(ctx context.Context, retention time.Duration) (completed, pruned int64, err error)
}

// AppointmentCompleter runs a Completer on a cron schedule
type AppointmentCompleter struct {
	target     Completer
	spec       string
	retention  time.Duration
	timeout    time.Duration
	cron       *cron.Cron
	isRunning  bool
	mutex      sync.RWMutex
	logger     *logger.Logger
	onComplete func(completed, pruned int64)
}

// NewAppointmentCompleter creates a completer; spec uses the standard cron syntax or @every
func NewAppointmentCompleter(target Completer, spec string, retention time.Duration, log *logger.Logger) *AppointmentCompleter {
	return &AppointmentCompleter{
		target:    target,
		spec:      spec,
		retention: retention,
		timeout:   time.Minute,
		logger:    log.WithComponent("scheduler"),
	}
}

// SetCallback registers a function called after every run
func (ac *AppointmentCompleter) SetCallback(onComplete func(completed, pruned int64)) {
	ac.onComplete = onComplete
}

// Start schedules the job
func (ac *AppointmentCompleter) Start() error {
	ac.mutex.Lock()
	defer ac.mutex.Unlock()

	if ac.isRunning {
		return fmt.Errorf("appointment completer is already running")
	}

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := c.AddFunc(ac.spec, ac.tick); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", ac.spec, err)
	}
	c.Start()

	ac.cron = c
	ac.isRunning = true

	ac.logger.Info("appointment completer started", "schedule", ac.spec)
	return nil
}

// Stop stops the schedule and waits for a running job to return
func (ac *AppointmentCompleter) Stop() {
	ac.mutex.Lock()
	defer ac.mutex.Unlock()

	if !ac.isRunning {
		return
	}

	<-ac.cron.Stop().Done()
	ac.isRunning = false

	ac.logger.Info("appointment completer stopped")
}

// IsRunning returns whether the schedule is active
func (ac *AppointmentCompleter) IsRunning() bool {
	ac.mutex.RLock()
	defer ac.mutex.RUnlock()

	return ac.isRunning
}

// RunNow performs an immediate run
func (ac *AppointmentCompleter) RunNow(ctx context.Context) (int64, int64, error) {
	start := time.Now()
	completed, pruned, err := ac.target.CompleteFinished(ctx, ac.retention)
	ac.logger.PerformanceLogger("complete_appointments", time.Since(start), err == nil)
	if err != nil {
		return completed, pruned, err
	}

	if completed > 0 || pruned > 0 {
		ac.logger.Info("appointments completed", "completed", completed, "pruned_windows", pruned)
	}
	if ac.onComplete != nil {
		ac.onComplete(completed, pruned)
	}
	return completed, pruned, nil
}

func (ac *AppointmentCompleter) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), ac.timeout)
	defer cancel()

	if _, _, err := ac.RunNow(ctx); err != nil {
		ac.logger.Error("appointment completer run failed", "error", err.Error())
	}
}
