package scheduler

import "time"

// WorkerStats is a point-in-time view of one worker.
type WorkerStats struct {
	ID       int
	State    WorkerState
	Queued   int
	Executed int64
	Stolen   int64
}

// Stats is a point-in-time view of the whole scheduler. Counters are read one by
// one without a global lock, so they may be slightly inconsistent with each other
// while tasks are running.
type Stats struct {
	Workers   []WorkerStats
	Submitted int64
	Completed int64
	Failed    int64
	Abandoned int64
	Uptime    time.Duration
}

// Stats returns a snapshot of the scheduler's counters.
func (s *WorkStealing) Stats() Stats {
	st := Stats{
		Workers:   make([]WorkerStats, len(s.workers)),
		Submitted: s.submitted.Load(),
		Completed: s.completed.Load(),
		Failed:    s.failed.Load(),
		Abandoned: s.abandoned.Load(),
		Uptime:    s.conf.Clock.Since(s.startedAt),
	}

	for i, w := range s.workers {
		st.Workers[i] = WorkerStats{
			ID:       w.id,
			State:    WorkerState(w.state.Load()),
			Queued:   w.queue.len(),
			Executed: w.executed.Load(),
			Stolen:   w.stolen.Load(),
		}
	}

	return st
}
