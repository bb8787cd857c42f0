package scheduler

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/coder/quartz"
	"github.com/utkarsh5026/stealpool/internal/types"
	"golang.org/x/sync/errgroup"
)

// WorkStealing is a fixed set of workers, each with its own task queue.
//
// Architecture:
//   - Each worker has its own mutex-guarded deque and parks when it finds no work
//   - A task submitted from inside a running task goes to that worker's own queue
//   - Every other submission goes to worker 0
//   - After each submission a rotating cursor wakes one more worker, so idle
//     workers get a chance to steal even when they own no work
//   - Idle workers steal the newest task from the first non-empty sibling queue
//
// There is no central queue and no lock shared by all workers on the hot path.
type WorkStealing struct {
	conf    *Config
	workers []*worker

	// Round-robin index of the next worker to nudge after a submission
	cursor atomic.Uint64
	taskID atomic.Int64

	// mu orders submissions against teardown: Submit holds it for reading while it
	// checks the flags and pushes, teardown takes it for writing to flip them.
	mu      sync.RWMutex
	closing bool
	stopped bool

	g      errgroup.Group
	cancel context.CancelFunc
	done   chan struct{}

	startedAt                               time.Time
	submitted, completed, failed, abandoned atomic.Int64
}

// NewWorkStealing creates the workers and starts one goroutine per worker.
// It fails with ErrInvalidWorkerCount when conf.WorkerCount < 1.
func NewWorkStealing(conf *Config) (*WorkStealing, error) {
	if conf.WorkerCount < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidWorkerCount, conf.WorkerCount)
	}
	if conf.Clock == nil {
		conf.Clock = quartz.NewReal()
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &WorkStealing{
		conf:      conf,
		workers:   make([]*worker, conf.WorkerCount),
		cancel:    cancel,
		done:      make(chan struct{}),
		startedAt: conf.Clock.Now(),
	}

	for i := range conf.WorkerCount {
		s.workers[i] = newWorker(i, s)
	}

	for _, w := range s.workers {
		s.g.Go(func() error {
			w.run(ctx)
			return nil
		})
	}

	return s, nil
}

// NextTaskID returns a fresh task id, unique within this scheduler.
func (s *WorkStealing) NextTaskID() int64 {
	return s.taskID.Add(1)
}

// WorkerCount returns the fixed number of workers.
func (s *WorkStealing) WorkerCount() int {
	return len(s.workers)
}

// Submit routes t to a worker queue and wakes it. It never waits for t to run.
//
// ctx is only used for routing: if it was handed to a task by one of this
// scheduler's workers, t goes to that worker's queue. Once teardown has begun only
// such nested submissions are accepted (they are still drained); anything else gets
// ErrPoolClosed.
func (s *WorkStealing) Submit(ctx context.Context, t types.Runnable) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	local, isLocal := s.localWorker(ctx)
	if s.stopped || (s.closing && !isLocal) {
		return ErrPoolClosed
	}

	target := s.workers[0]
	if isLocal {
		target = local
	}

	s.submitted.Add(1)
	target.push(t)
	s.nudge()
	return nil
}

// localWorker returns the worker of this scheduler that ctx belongs to, if any.
func (s *WorkStealing) localWorker(ctx context.Context) (*worker, bool) {
	w, ok := workerFrom(ctx)
	if !ok || w.sched != s {
		return nil, false
	}
	return w, true
}

// nudge advances the rotation cursor and wakes the worker it lands on.
func (s *WorkStealing) nudge() {
	idx := s.cursor.Add(1) % uint64(len(s.workers)) // #nosec G115 -- worker count is always positive
	s.workers[idx].signal.wake()
}

// stealFrom scans every worker except thiefID in id order and takes the newest task
// from the first queue that has one. Worker counts are small, so a linear scan is fine.
func (s *WorkStealing) stealFrom(thiefID int) (types.Runnable, bool) {
	for _, victim := range s.workers {
		if victim.id == thiefID {
			continue
		}
		if t, ok := victim.queue.steal(); ok {
			return t, true
		}
	}
	return nil, false
}

// Shutdown stops accepting submissions, tells every worker to exit, and waits for
// all of them to return. A timeout of 0 waits forever; otherwise ErrShutdownTimeout
// is returned when the workers are still busy after timeout, and they keep shutting
// down in the background.
func (s *WorkStealing) Shutdown(timeout time.Duration) error {
	s.mu.Lock()
	if s.closing {
		s.mu.Unlock()
		return ErrAlreadyClosed
	}
	s.closing = true
	s.mu.Unlock()

	// Exit flags go up before the context is cancelled, so a worker woken by the
	// cancellation already sees that it must stop.
	for _, w := range s.workers {
		w.signal.requestExit()
	}

	if s.conf.AbandonOnClose {
		s.cancel()
	}

	go func() {
		_ = s.g.Wait()
		s.finish()
		close(s.done)
	}()

	return s.waitUntil(timeout)
}

// finish runs after every worker has returned. Whatever is still queued at this
// point can never run, so its futures are failed with ErrTaskAbandoned.
func (s *WorkStealing) finish() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopped = true
	s.cancel()

	for _, w := range s.workers {
		for _, t := range w.queue.drain() {
			t.Fail(ErrTaskAbandoned)
			s.abandoned.Add(1)
			debugLog("abandoned task %d queued on worker %d", t.ID(), w.id)
		}
	}
}

// waitUntil blocks until either the done channel is closed or the timeout is reached.
func (s *WorkStealing) waitUntil(timeout time.Duration) error {
	if timeout <= 0 {
		<-s.done
		return nil
	}

	timer := s.conf.Clock.NewTimer(timeout, "scheduler", "shutdown")
	defer timer.Stop()

	select {
	case <-s.done:
		return nil
	case <-timer.C:
		return ErrShutdownTimeout
	}
}

// Done returns a channel that is closed once every worker has exited.
func (s *WorkStealing) Done() <-chan struct{} {
	return s.done
}

func (s *WorkStealing) record(abandoned bool, err error) {
	if abandoned {
		s.abandoned.Add(1)
		return
	}
	if err != nil {
		s.failed.Add(1)
		return
	}
	s.completed.Add(1)
}
