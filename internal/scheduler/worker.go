package scheduler

import (
	"context"
	"sync/atomic"

	"github.com/utkarsh5026/stealpool/internal/cpu"
	"github.com/utkarsh5026/stealpool/internal/types"
)

// worker owns one task queue and runs on one goroutine locked to one OS thread.
// sched is a non-owning back-reference used for stealing and accounting; the
// scheduler joins every worker before its teardown returns, so it always outlives them.
type worker struct {
	id     int
	queue  *taskQueue
	signal *wakeSignal
	sched  *WorkStealing
	state  atomic.Int32

	executed atomic.Int64
	stolen   atomic.Int64
}

func newWorker(id int, s *WorkStealing) *worker {
	return &worker{
		id:     id,
		queue:  newTaskQueue(defaultQueueCapacity),
		signal: newWakeSignal(),
		sched:  s,
	}
}

// push queues t on this worker and wakes it.
func (w *worker) push(t types.Runnable) {
	w.queue.push(t)
	w.signal.wake()
}

// run is the worker loop: own queue, then siblings, then park.
//
// With drain-on-close the loop only exits once it has seen the exit flag and
// found no work anywhere. With abandon-on-close it exits at the first iteration
// after the flag is set; a task already running is allowed to finish.
func (w *worker) run(ctx context.Context) {
	defer cpu.SetupWorkerAffinity(w.id, w.sched.conf.PinWorkers)()

	ctx = withWorker(ctx, w)
	debugLog("worker %d: started", w.id)

	for {
		if w.sched.conf.AbandonOnClose && w.signal.exiting() {
			break
		}

		if t, ok := w.queue.pop(); ok {
			w.execute(ctx, t, false)
			continue
		}

		if t, ok := w.sched.stealFrom(w.id); ok {
			w.execute(ctx, t, true)
			continue
		}

		if w.signal.exiting() {
			break
		}

		w.state.Store(int32(StateParked))
		w.signal.park()
		w.state.Store(int32(StateRunning))
	}

	w.state.Store(int32(StateExiting))
	debugLog("worker %d: exiting after %d tasks (%d stolen)", w.id, w.executed.Load(), w.stolen.Load())
}

func (w *worker) execute(ctx context.Context, t types.Runnable, stolen bool) {
	if stolen {
		w.stolen.Add(1)
		debugLog("worker %d: stole task %d", w.id, t.ID())
	}

	abandoned, err := executeTask(ctx, w.sched.conf, w.id, t)
	if abandoned {
		debugLog("worker %d: abandoned task %d waiting for the rate limiter", w.id, t.ID())
	} else {
		w.executed.Add(1)
	}
	w.sched.record(abandoned, err)
}
