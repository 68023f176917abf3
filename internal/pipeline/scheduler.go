package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
)

// Runner executes one pipeline run.
type Runner interface {
	Run(ctx context.Context) (Report, error)
}

// Scheduler executes runs one after another at a fixed interval. Runs never
// overlap. A failed run is retried with exponential backoff capped at the
// interval.
type Scheduler struct {
	runner       Runner
	interval     time.Duration
	retryBackoff time.Duration
	clock        clockwork.Clock
	logger       *slog.Logger
	ready        atomic.Bool
	last         atomic.Pointer[RunStatus]
}

// RunStatus is the outcome of the most recent scheduled run.
type RunStatus struct {
	Report Report
	Err    error
}

// NewScheduler creates a Scheduler. retryBackoff is the first delay after a
// failed run.
func NewScheduler(r Runner, interval, retryBackoff time.Duration, clock clockwork.Clock, logger *slog.Logger) *Scheduler {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Scheduler{
		runner:       r,
		interval:     interval,
		retryBackoff: min(retryBackoff, interval),
		clock:        clock,
		logger:       logger,
	}
}

// CheckReadiness returns nil once at least one run has succeeded.
func (s *Scheduler) CheckReadiness(_ context.Context) error {
	if !s.ready.Load() {
		return errors.New("no pipeline run has succeeded yet")
	}
	return nil
}

// LastRun returns the most recent run's outcome, or false before the first run
// finishes.
func (s *Scheduler) LastRun() (RunStatus, bool) {
	st := s.last.Load()
	if st == nil {
		return RunStatus{}, false
	}
	return *st, true
}

// Start runs immediately and then on schedule until ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	s.logger.Info("scheduler started", "interval", s.interval)
	backoff := s.retryBackoff

	for {
		wait := s.interval
		report, err := s.runner.Run(ctx)
		s.last.Store(&RunStatus{Report: report, Err: err})
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			wait = backoff
			backoff = nextBackoff(backoff, s.interval)
			s.logger.Warn("run failed, retrying", "retry_in", wait)
		} else {
			s.ready.Store(true)
			backoff = s.retryBackoff
		}

		if !sleepWithContext(ctx, s.clock, wait) {
			break
		}
	}

	s.logger.Info("scheduler stopping", "reason", ctx.Err())
	return nil
}

func nextBackoff(current, maxBackoff time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}

func sleepWithContext(ctx context.Context, clock clockwork.Clock, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}

	timer := clock.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.Chan():
		return true
	}
}
