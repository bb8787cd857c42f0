package pool

import (
	"errors"

	"github.com/utkarsh5026/stealpool/internal/scheduler"
	"github.com/utkarsh5026/stealpool/internal/types"
)

var (
	// ErrInvalidWorkerCount is returned by New when asked for fewer than one worker.
	ErrInvalidWorkerCount = scheduler.ErrInvalidWorkerCount

	// ErrPoolClosed is returned when submitting to a pool that is closing or closed.
	ErrPoolClosed = scheduler.ErrPoolClosed

	// ErrAlreadyClosed is returned by a second Close or Shutdown.
	ErrAlreadyClosed = scheduler.ErrAlreadyClosed

	// ErrShutdownTimeout is returned by Shutdown when the workers did not exit in time.
	ErrShutdownTimeout = scheduler.ErrShutdownTimeout

	// ErrTaskAbandoned is stored in the future of a task that was still queued when
	// the pool stopped its workers.
	ErrTaskAbandoned = scheduler.ErrTaskAbandoned

	// ErrNilTask is returned when submitting a nil function.
	ErrNilTask = errors.New("task function is nil")
)

// PanicError is stored in a task's future when the task panicked.
type PanicError = types.PanicError
