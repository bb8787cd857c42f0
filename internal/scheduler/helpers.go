package scheduler

import (
	"context"
	"errors"
	"fmt"

	"github.com/utkarsh5026/stealpool/internal/types"
)

var (
	// ErrInvalidWorkerCount is returned by NewWorkStealing when WorkerCount < 1.
	ErrInvalidWorkerCount = errors.New("worker count must be at least 1")

	// ErrPoolClosed is returned by Submit once teardown has begun.
	ErrPoolClosed = errors.New("pool is closed")

	// ErrAlreadyClosed is returned by every Shutdown after the first.
	ErrAlreadyClosed = errors.New("pool already shut down")

	// ErrShutdownTimeout is returned by Shutdown when the workers outlive the timeout.
	ErrShutdownTimeout = errors.New("error in shutting down: timeout reached")

	// ErrTaskAbandoned is stored in the future of a task that never ran because the
	// scheduler stopped first.
	ErrTaskAbandoned = errors.New("task abandoned: pool shut down before it ran")
)

// nextPowerOfTwo returns the next power of 2 >= n
func nextPowerOfTwo(n int) int {
	if n <= 0 {
		return 1
	}

	if n&(n-1) == 0 {
		return n
	}

	power := 1
	for power < n {
		power *= 2
	}
	return power
}

// executeTask runs a single task on the calling worker with rate limiting and hooks.
// The task's outcome always lands in its future; the returned values are only used for
// accounting and never stop the worker.
//
// With abandon-on-close, a task still waiting for the rate limiter when the pool
// context is cancelled never runs: it fails with ErrTaskAbandoned like any task left
// in a queue, and abandoned is true.
func executeTask(ctx context.Context, conf *Config, workerID int, t types.Runnable) (abandoned bool, err error) {
	if conf.RateLimiter != nil {
		if err := conf.RateLimiter.Wait(ctx); err != nil {
			// Rate limiter's error doesn't wrap context errors, so check context explicitly
			ctxErr := ctx.Err()
			if ctxErr != nil && conf.AbandonOnClose {
				t.Fail(ErrTaskAbandoned)
				return true, ErrTaskAbandoned
			}
			if ctxErr != nil {
				err = ctxErr
			}
			err = fmt.Errorf("rate limiter: %w", err)
			t.Fail(err)
			return false, err
		}
	}

	if conf.BeforeTaskStart != nil {
		callHook(workerID, func() { conf.BeforeTaskStart(workerID, t.ID()) })
	}

	recovered, err := t.Run(ctx)

	// Only the task that panicked reports it; a parent returning a child's
	// *PanicError is an ordinary failure.
	var pe *types.PanicError
	if recovered && conf.PanicHandler != nil && errors.As(err, &pe) {
		callHook(workerID, func() { conf.PanicHandler(workerID, pe.Value) })
	}

	if conf.OnTaskEnd != nil {
		callHook(workerID, func() { conf.OnTaskEnd(workerID, t.ID(), err) })
	}

	return false, err
}

// callHook runs a user hook and swallows any panic it raises so the worker survives.
func callHook(workerID int, hook func()) {
	defer func() {
		if r := recover(); r != nil {
			debugLog("worker %d: hook panicked: %v", workerID, r)
		}
	}()
	hook()
}
