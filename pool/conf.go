package pool

import (
	"fmt"
	"runtime"

	"github.com/coder/quartz"
	"github.com/utkarsh5026/stealpool/internal/scheduler"
	"golang.org/x/time/rate"
)

// Option is a functional option for configuring a Pool.
type Option func(*poolConfig)

type poolConfig struct {
	workerCount    int
	workerCountSet bool
	pinWorkers     bool
	rateLimiter    *rate.Limiter
	abandonOnClose bool
	clock          quartz.Clock

	beforeTaskStart func(workerID int, taskID int64)
	onTaskEnd       func(workerID int, taskID int64, err error)
	panicHandler    func(workerID int, recovered any)
}

// WithWorkerCount sets the number of workers.
// If not specified, defaults to runtime.GOMAXPROCS(0).
// A count below 1 makes New fail with ErrInvalidWorkerCount.
func WithWorkerCount(count int) Option {
	return func(cfg *poolConfig) {
		cfg.workerCount = count
		cfg.workerCountSet = true
	}
}

// WithCPUPinning pins each worker's OS thread to one CPU core (worker i to core
// i modulo the number of cores). Only effective on Linux and Windows; elsewhere
// workers are still locked to their own OS thread but not pinned.
func WithCPUPinning(enabled bool) Option {
	return func(cfg *poolConfig) {
		cfg.pinWorkers = enabled
	}
}

// WithRateLimit sets a rate limiter for controlling task throughput.
// tasksPerSecond specifies the maximum number of tasks started per second across
// all workers, burst the maximum number of tasks that may start at once.
// Workers wait for the limiter before each task. If not specified, no rate
// limiting is applied.
//
// Example:
//
//	WithRateLimit(10, 5) // Allow 10 tasks/sec with burst of 5
func WithRateLimit(tasksPerSecond float64, burst int) Option {
	return func(cfg *poolConfig) {
		if tasksPerSecond > 0 && burst > 0 {
			cfg.rateLimiter = rate.NewLimiter(rate.Limit(tasksPerSecond), burst)
		}
	}
}

// WithBeforeTaskStart registers a hook called on the worker right before a task runs.
// A panic in the hook is recovered and does not affect the task.
func WithBeforeTaskStart(hook func(workerID int, taskID int64)) Option {
	return func(cfg *poolConfig) {
		cfg.beforeTaskStart = hook
	}
}

// WithOnTaskEnd registers a hook called on the worker after a task finished,
// with the error stored in its future (nil on success).
func WithOnTaskEnd(hook func(workerID int, taskID int64, err error)) Option {
	return func(cfg *poolConfig) {
		cfg.onTaskEnd = hook
	}
}

// WithPanicHandler registers a handler called with the recovered value whenever a
// task panics. The panic is stored in the task's future as a *PanicError either way.
func WithPanicHandler(handler func(workerID int, recovered any)) Option {
	return func(cfg *poolConfig) {
		cfg.panicHandler = handler
	}
}

// WithAbandonOnClose changes what Close does with tasks that are still queued.
// By default the pool drains: every accepted task runs before the workers exit.
// With this option workers stop after their current task, the context handed to
// running tasks is cancelled, and every queued task's future fails with
// ErrTaskAbandoned.
func WithAbandonOnClose() Option {
	return func(cfg *poolConfig) {
		cfg.abandonOnClose = true
	}
}

// WithClock sets the clock used for shutdown timeouts and uptime. Tests pass a
// quartz mock here; the default is the real clock.
func WithClock(clock quartz.Clock) Option {
	return func(cfg *poolConfig) {
		if clock != nil {
			cfg.clock = clock
		}
	}
}

// createConfig applies opts on top of the defaults and validates the result.
func createConfig(opts ...Option) (*poolConfig, error) {
	cfg := &poolConfig{
		workerCount: runtime.GOMAXPROCS(0),
		clock:       quartz.NewReal(),
	}

	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.workerCountSet && cfg.workerCount < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidWorkerCount, cfg.workerCount)
	}

	return cfg, nil
}

func (cfg *poolConfig) schedulerConfig() *scheduler.Config {
	return &scheduler.Config{
		WorkerCount:     cfg.workerCount,
		PinWorkers:      cfg.pinWorkers,
		RateLimiter:     cfg.rateLimiter,
		AbandonOnClose:  cfg.abandonOnClose,
		Clock:           cfg.clock,
		BeforeTaskStart: cfg.beforeTaskStart,
		OnTaskEnd:       cfg.onTaskEnd,
		PanicHandler:    cfg.panicHandler,
	}
}
