// Package pool provides a fixed-size work-stealing worker pool that runs
// short-lived callables and returns their results through futures.
//
// Every worker runs on its own goroutine, locked to its own OS thread, and owns a
// queue. Submissions from outside the pool go to worker 0; submissions made by a
// running task (using the context the task was given) go to the queue of the
// worker running it. After each submission a rotating cursor wakes one more
// worker, so workers that own nothing still get to steal. An idle worker takes the
// oldest task of its own queue first, then the newest task of the first sibling
// that has one, and parks when there is nothing to steal.
//
// # Basic Usage
//
//	p, err := pool.New(pool.WithWorkerCount(4))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer p.Close()
//
//	f, err := pool.Submit(ctx, p, func(ctx context.Context) (int, error) {
//	    return 6 * 7, nil
//	})
//	v, err := f.Get()
//
// # Binding Arguments
//
// Arguments are bound at submit time, either by a closure or with the CallN helpers:
//
//	f, err := pool.Call2(ctx, p, func(ctx context.Context, a, b int) (int, error) {
//	    return a + b, nil
//	}, 1, 2)
//
// Callables without a result use Run, which returns a Future[struct{}].
//
// # Nested Submissions
//
// A task can submit more work with its own ctx. The child lands on the same worker:
//
//	pool.Submit(ctx, p, func(ctx context.Context) (int, error) {
//	    child, err := pool.Submit(ctx, p, leaf)
//	    if err != nil {
//	        return 0, err
//	    }
//	    return child.Get()
//	})
//
// Blocking on a child's future from inside a task holds that worker. With one
// worker, or when every worker waits the same way, this deadlocks.
//
// Calling Close from inside a task deadlocks too: Close waits for every worker to
// exit, including the one running the caller. Use Shutdown with a timeout there.
//
// # Failures
//
// A task's error is stored in its future and returned by Get. A panic is recovered
// and stored as a *PanicError; the worker keeps running. Later submissions are not
// affected by earlier failures.
//
// # Shutting Down
//
// Close rejects new submissions with ErrPoolClosed, wakes every worker and waits
// for all of them to exit. By default queued tasks are drained first. With
// WithAbandonOnClose the workers stop after their current task and every queued
// future fails with ErrTaskAbandoned. Shutdown does the same with a timeout.
//
// # Configuration Options
//
//   - WithWorkerCount(n): Number of workers (default: GOMAXPROCS, n < 1 is an error)
//   - WithCPUPinning(bool): Pin each worker's thread to a core
//   - WithRateLimit(perSecond, burst): Throttle task starts
//   - WithBeforeTaskStart, WithOnTaskEnd, WithPanicHandler: Hooks run on the worker
//   - WithAbandonOnClose(): Abandon queued work on Close instead of draining
//   - WithClock(clock): Clock for timeouts and uptime (tests use a quartz mock)
//
// # Debug Logging
//
// Building with -tags debug logs worker lifecycle, steals and abandoned tasks to stderr.
package pool
