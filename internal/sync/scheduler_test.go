package sync

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

// countingRunner counts runs and can block to simulate a slow sync.
type countingRunner struct {
	runs    atomic.Int32
	release chan struct{}
}

func (c *countingRunner) Run(ctx context.Context) error {
	c.runs.Add(1)
	if c.release != nil {
		select {
		case <-c.release:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func waitForRuns(t *testing.T, runner *countingRunner, want int32) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		if runner.runs.Load() >= want {
			return
		}
		select {
		case <-deadline:
			t.Fatalf("expected %d runs, saw %d", want, runner.runs.Load())
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func schedulerLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func TestSchedulerTriggerRunsOnce(t *testing.T) {
	runner := &countingRunner{}
	scheduler := NewScheduler(runner, 0, schedulerLogger())

	scheduler.Start(context.Background())
	defer scheduler.Stop()

	scheduler.Trigger()
	waitForRuns(t, runner, 1)

	// No periodic interval, no further triggers: stays at one.
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(1), runner.runs.Load())
}

func TestSchedulerCoalescesTriggersDuringRun(t *testing.T) {
	runner := &countingRunner{release: make(chan struct{})}
	scheduler := NewScheduler(runner, 0, schedulerLogger())

	scheduler.Start(context.Background())
	defer scheduler.Stop()

	scheduler.Trigger()
	waitForRuns(t, runner, 1)

	// While the first run blocks, a burst of triggers folds into one more.
	scheduler.Trigger()
	scheduler.Trigger()
	scheduler.Trigger()

	runner.release <- struct{}{}
	waitForRuns(t, runner, 2)
	runner.release <- struct{}{}

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(2), runner.runs.Load())
}

func TestSchedulerStopCancelsRun(t *testing.T) {
	runner := &countingRunner{release: make(chan struct{})}
	scheduler := NewScheduler(runner, 0, schedulerLogger())

	scheduler.Start(context.Background())
	scheduler.Trigger()
	waitForRuns(t, runner, 1)

	done := make(chan struct{})
	go func() {
		scheduler.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not cancel the in-flight run")
	}
}
