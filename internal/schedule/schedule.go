// Package schedule runs the update pipeline on a fixed interval and tracks
// how recent runs went.
package schedule

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/GOLDENPLIX/pes-2013-updater/internal/logging"
)

const defaultInterval = 24 * time.Hour

// RunFunc executes one update.
type RunFunc func(ctx context.Context) error

// Scheduler triggers RunFunc every interval. Runs never overlap.
type Scheduler struct {
	run      RunFunc
	logger   *slog.Logger
	interval time.Duration
	now      func() time.Time

	startMu sync.Mutex
	started bool
	cron    *gocron.Scheduler
	job     *gocron.Job

	statusMu sync.RWMutex
	status   Status
}

// Status describes the recent health of the schedule.
type Status struct {
	Running             bool      `json:"running"`
	Runs                int       `json:"runs"`
	ConsecutiveFailures int       `json:"consecutive_failures"`
	LastError           string    `json:"last_error,omitempty"`
	LastAttempt         time.Time `json:"last_attempt"`
	LastSuccess         time.Time `json:"last_success"`
	NextRun             time.Time `json:"next_run"`
}

// IsReady reports whether a run has succeeded and runs are not failing repeatedly.
func (s Status) IsReady() bool {
	if s.LastSuccess.IsZero() {
		return false
	}
	return s.ConsecutiveFailures < 3
}

// New constructs a Scheduler. A non-positive interval means daily.
func New(run RunFunc, logger *slog.Logger, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = defaultInterval
	}
	return &Scheduler{
		run:      run,
		logger:   logger,
		interval: interval,
		now:      time.Now,
	}
}

// Start runs once immediately and then every interval until ctx ends or Stop
// is called.
func (s *Scheduler) Start(ctx context.Context) error {
	s.startMu.Lock()
	defer s.startMu.Unlock()
	if s.started {
		return nil
	}

	cron := gocron.NewScheduler(time.UTC)
	cron.SingletonModeAll()
	job, err := cron.Every(s.interval).Do(func() {
		s.RunOnce(ctx)
	})
	if err != nil {
		return err
	}
	s.cron, s.job, s.started = cron, job, true
	cron.StartAsync()
	logging.Info(s.logger, "schedule started", logging.FieldDurationMS, s.interval.Milliseconds())

	go func() {
		<-ctx.Done()
		_ = s.Stop(context.Background())
	}()
	return nil
}

// Stop halts the schedule. A run in progress is left to finish.
func (s *Scheduler) Stop(ctx context.Context) error {
	_ = ctx
	s.startMu.Lock()
	defer s.startMu.Unlock()
	if !s.started || s.cron == nil {
		return nil
	}
	s.cron.Stop()
	s.cron = nil
	logging.Info(s.logger, "schedule stopped")
	return nil
}

// RunOnce executes one run and updates the status.
func (s *Scheduler) RunOnce(ctx context.Context) {
	start := s.now()
	s.recordAttempt(start)
	err := s.safeRun(ctx)
	if err != nil {
		logging.Error(s.logger, "scheduled update failed", err,
			logging.FieldDurationMS, s.now().Sub(start).Milliseconds(),
		)
		s.recordFailure(err)
		return
	}
	s.recordSuccess(start)
	logging.Info(s.logger, "scheduled update finished", logging.FieldDurationMS, s.now().Sub(start).Milliseconds())
}

func (s *Scheduler) safeRun(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.New("update panicked")
			logging.Error(s.logger, "scheduled update panicked", err, "panic", r)
		}
	}()
	return s.run(ctx)
}

func (s *Scheduler) recordAttempt(at time.Time) {
	s.statusMu.Lock()
	defer s.statusMu.Unlock()
	s.status.Running = true
	s.status.LastAttempt = at
}

func (s *Scheduler) recordSuccess(at time.Time) {
	s.statusMu.Lock()
	defer s.statusMu.Unlock()
	s.status.Running = false
	s.status.Runs++
	s.status.ConsecutiveFailures = 0
	s.status.LastError = ""
	s.status.LastSuccess = at
}

func (s *Scheduler) recordFailure(err error) {
	s.statusMu.Lock()
	defer s.statusMu.Unlock()
	s.status.Running = false
	s.status.Runs++
	s.status.ConsecutiveFailures++
	s.status.LastError = err.Error()
}

// Status returns a snapshot of the schedule's recent health.
func (s *Scheduler) Status() Status {
	s.statusMu.RLock()
	st := s.status
	s.statusMu.RUnlock()

	s.startMu.Lock()
	if s.job != nil && s.cron != nil {
		st.NextRun = s.job.NextRun()
	}
	s.startMu.Unlock()
	return st
}
