// Package schedule provides a cancellable recurring task.
package schedule

import (
	"context"
	"sync"
	"time"
)

// Task runs a function every interval until it is re-armed or stopped.
// Only one arm is live at a time: Rearm cancels the previous arm before
// starting the next, so a repeating callback never outlives its arm.
type Task struct {
	interval time.Duration

	mu       sync.Mutex
	cancel   context.CancelFunc
	closed   bool
	arms     uint64
	inFlight sync.WaitGroup
}

// New creates an unarmed task.
func New(interval time.Duration) *Task {
	return &Task{interval: interval}
}

// Interval returns the period between runs.
func (t *Task) Interval() time.Duration {
	return t.interval
}

// Rearm cancels any pending arm and schedules fn every interval, starting
// from now. The context passed to fn is cancelled when the arm is replaced
// or the task is stopped. Rearm after Stop is a no-op and returns false.
func (t *Task) Rearm(parent context.Context, fn func(context.Context)) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return false
	}
	if t.cancel != nil {
		t.cancel()
	}

	ctx, cancel := context.WithCancel(parent)
	t.cancel = cancel
	t.arms++

	t.inFlight.Add(1)
	go t.loop(ctx, fn)
	return true
}

func (t *Task) loop(ctx context.Context, fn func(context.Context)) {
	defer t.inFlight.Done()

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// A tick may race with cancellation; never run on a dead arm.
			if ctx.Err() != nil {
				return
			}
			fn(ctx)
		}
	}
}

// Stop cancels the pending arm and prevents further arms. It is safe to call
// more than once.
func (t *Task) Stop() {
	t.mu.Lock()
	t.closed = true
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
	t.mu.Unlock()
}

// Wait blocks until every arm's goroutine has exited. Call it after Stop,
// never from inside fn.
func (t *Task) Wait() {
	t.inFlight.Wait()
}

// Arms returns how many times the task has been armed.
func (t *Task) Arms() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.arms
}

// Stopped reports whether Stop has been called.
func (t *Task) Stopped() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closed
}
