package scheduler

import "sync"

// WorkerState is the observable state of a worker.
type WorkerState int32

const (
	// StateRunning means the worker is looking for or executing work.
	StateRunning WorkerState = iota
	// StateParked means the worker found no work anywhere and is blocked on its wake signal.
	StateParked
	// StateExiting means the worker has observed its exit flag and is leaving its loop.
	StateExiting
)

func (s WorkerState) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateParked:
		return "parked"
	case StateExiting:
		return "exiting"
	default:
		return "unknown"
	}
}

// wakeSignal is the per-worker park/wake primitive.
//
// A wake that arrives while the worker is still scanning queues is remembered in
// pending, so the following park returns immediately instead of sleeping through
// it. park re-checks its predicate in a loop, which makes spurious wakeups harmless.
type wakeSignal struct {
	mu      sync.Mutex
	cond    *sync.Cond
	pending bool
	exit    bool
}

func newWakeSignal() *wakeSignal {
	s := &wakeSignal{}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// wake releases a parked worker, or makes its next park return at once.
func (s *wakeSignal) wake() {
	s.mu.Lock()
	s.pending = true
	s.mu.Unlock()
	s.cond.Signal()
}

// requestExit sets the exit flag and wakes the worker.
func (s *wakeSignal) requestExit() {
	s.mu.Lock()
	s.exit = true
	s.mu.Unlock()
	s.cond.Broadcast()
}

func (s *wakeSignal) exiting() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.exit
}

// park blocks until wake or requestExit is called and reports the exit flag.
func (s *wakeSignal) park() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for !s.pending && !s.exit {
		s.cond.Wait()
	}
	s.pending = false
	return s.exit
}
