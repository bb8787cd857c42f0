package scheduler

import (
	"github.com/coder/quartz"
	"golang.org/x/time/rate"
)

// Config holds everything a WorkStealing scheduler needs. It is built once by the
// pool package and never modified after the scheduler starts.
type Config struct {
	// Number of workers, each backed by its own goroutine and OS thread. Must be >= 1.
	WorkerCount int

	// If true, each worker's OS thread is also pinned to a CPU core (best effort).
	PinWorkers bool

	// Optional token bucket rate limiter applied before every task execution (may be nil).
	RateLimiter *rate.Limiter

	// If true, teardown stops workers after their current task and fails whatever is
	// still queued with ErrTaskAbandoned. Otherwise teardown drains every queue first.
	AbandonOnClose bool

	// Clock used for the shutdown timeout and for uptime. Defaults to the real clock.
	Clock quartz.Clock

	// Hook called on the worker goroutine before a task starts.
	BeforeTaskStart func(workerID int, taskID int64)

	// Hook called on the worker goroutine after a task ends (err is the task's error, if any).
	OnTaskEnd func(workerID int, taskID int64, err error)

	// Hook called with the recovered value when a task panics.
	PanicHandler func(workerID int, recovered any)
}
