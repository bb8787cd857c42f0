package pool

import (
	"github.com/utkarsh5026/stealpool/internal/scheduler"
	"github.com/utkarsh5026/stealpool/internal/types"
)

// Future holds the eventual result of a submitted task. See Submit.
type Future[R any] = types.Future[R]

// Stats is a point-in-time view of a pool's counters.
type Stats = scheduler.Stats

// WorkerStats is a point-in-time view of one worker.
type WorkerStats = scheduler.WorkerStats

// WorkerState is what a worker is doing when Stats is taken.
type WorkerState = scheduler.WorkerState

const (
	StateRunning = scheduler.StateRunning
	StateParked  = scheduler.StateParked
	StateExiting = scheduler.StateExiting
)
