package pool

import (
	"context"
	"time"

	"github.com/utkarsh5026/stealpool/internal/scheduler"
)

// Pool is a fixed set of work-stealing workers that run submitted callables and
// deliver their results through futures.
//
// Each worker owns a queue. Work submitted from outside the pool goes to worker 0;
// work submitted by a running task (through the context it was given) goes to the
// queue of the worker running that task. Idle workers steal from their siblings
// and park when there is nothing left to steal.
//
// A Pool is safe for concurrent use. It must be closed with Close or Shutdown to
// release its workers.
type Pool struct {
	sched *scheduler.WorkStealing
}

// New creates a pool and starts its workers.
//
// Default configuration:
//   - workerCount: runtime.GOMAXPROCS(0)
//   - drain every queued task on Close
//   - no rate limiting, no hooks, no CPU pinning
//
// Returns:
//   - *Pool: A running pool
//   - error: ErrInvalidWorkerCount if WithWorkerCount was given a value below 1
//
// Example:
//
//	p, err := pool.New(pool.WithWorkerCount(8))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer p.Close()
func New(opts ...Option) (*Pool, error) {
	cfg, err := createConfig(opts...)
	if err != nil {
		return nil, err
	}

	sched, err := scheduler.NewWorkStealing(cfg.schedulerConfig())
	if err != nil {
		return nil, err
	}

	return &Pool{sched: sched}, nil
}

// Close stops accepting new submissions, lets the workers finish (draining the
// queues unless WithAbandonOnClose was given) and waits for all of them to exit.
// Tasks already running may still submit children while the pool drains.
//
// Calling Close or Shutdown a second time returns ErrAlreadyClosed.
//
// Close must not be called from inside a task of the same pool: it waits for every
// worker to exit, including the one running the caller, and never returns. From a
// task, use Shutdown with a non-zero timeout.
func (p *Pool) Close() error {
	return p.sched.Shutdown(0)
}

// Shutdown is Close with a bound on how long to wait for the workers. Called from
// inside a task with a non-zero timeout, it always returns ErrShutdownTimeout because
// the caller's own worker cannot exit until the task returns; the pool finishes
// shutting down afterwards. A zero timeout from inside a task blocks forever.
//
// Parameters:
//   - timeout: Maximum duration to wait (0 = wait forever)
//
// Returns:
//   - error: ErrShutdownTimeout if the workers are still busy when timeout expires
//     (they keep shutting down in the background), ErrAlreadyClosed on a repeated call
//
// Example:
//
//	if err := p.Shutdown(5 * time.Second); err != nil {
//	    log.Printf("shutdown error: %v", err)
//	}
func (p *Pool) Shutdown(timeout time.Duration) error {
	return p.sched.Shutdown(timeout)
}

// Done returns a channel that is closed once every worker has exited.
func (p *Pool) Done() <-chan struct{} {
	return p.sched.Done()
}

// WorkerCount returns the number of workers.
func (p *Pool) WorkerCount() int {
	return p.sched.WorkerCount()
}

// Stats returns a snapshot of per-worker and pool-wide counters.
func (p *Pool) Stats() Stats {
	return p.sched.Stats()
}

// WorkerID returns the id of the worker running the task that received ctx.
// It reports false for any context that was not handed to a task by a pool.
func WorkerID(ctx context.Context) (int, bool) {
	return scheduler.WorkerID(ctx)
}
