package sync

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Runner is the unit of work the scheduler drives; satisfied by *Engine.
type Runner interface {
	Run(ctx context.Context) error
}

// Scheduler serializes sync runs: manual triggers, a periodic interval and
// failure retries all funnel into a single worker goroutine, so at most one
// run executes at a time.
type Scheduler struct {
	runner   Runner
	interval time.Duration
	logger   *logrus.Logger

	trigger chan struct{}

	mu      sync.Mutex
	started bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// retryBackoff is the delay sequence after consecutive failed runs; the last
// entry repeats.
var retryBackoff = []time.Duration{
	10 * time.Second,
	30 * time.Second,
	2 * time.Minute,
	10 * time.Minute,
}

// NewScheduler creates a scheduler driving the runner. interval <= 0
// disables periodic runs; manual triggers still work.
func NewScheduler(runner Runner, interval time.Duration, logger *logrus.Logger) *Scheduler {
	return &Scheduler{
		runner:   runner,
		interval: interval,
		logger:   logger,
		trigger:  make(chan struct{}, 1),
	}
}

// Start launches the worker goroutine. Calling Start twice is a no-op.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	s.started = true

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	go s.loop(runCtx)
}

// Stop cancels the in-flight run, if any, and waits for the worker to exit.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.started = false
	cancel, done := s.cancel, s.done
	s.mu.Unlock()

	cancel()
	<-done
}

// Trigger requests a run as soon as the worker is free. Triggers arriving
// while one is already pending coalesce.
func (s *Scheduler) Trigger() {
	select {
	case s.trigger <- struct{}{}:
	default:
	}
}

func (s *Scheduler) loop(ctx context.Context) {
	defer close(s.done)

	var ticker *time.Ticker
	var tick <-chan time.Time
	if s.interval > 0 {
		ticker = time.NewTicker(s.interval)
		tick = ticker.C
		defer ticker.Stop()
	}

	failures := 0
	var retry <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.trigger:
		case <-tick:
		case <-retry:
		}
		retry = nil

		runID := uuid.New().String()
		log := s.logger.WithField("run_id", runID)
		log.Info("Starting library sync run")

		if err := s.runner.Run(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			failures++
			delay := retryBackoff[min(failures, len(retryBackoff))-1]
			log.WithError(err).WithField("retry_in", delay).Error("Library sync run failed")
			retry = time.After(delay)
			continue
		}
		failures = 0
	}
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
