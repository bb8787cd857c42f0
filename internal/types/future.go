package types

import (
	"context"
	"sync"
	"time"
)

// Result carries the outcome of a single submitted task.
//
// Fields:
//   - Value: The value returned by the task (zero if Error is non-nil)
//   - Error: The error returned by the task, a *PanicError, or a pool error such as an abandonment
//   - Id: The id the pool assigned to the task at submit time
type Result[R any] struct {
	Value R
	Error error
	Id    int64
}

// NewResult creates a Result for the task with the given id.
func NewResult[R any](value R, id int64, err error) *Result[R] {
	return &Result[R]{
		Value: value,
		Error: err,
		Id:    id,
	}
}

// Future is a one-shot result slot shared between the worker that runs a task (the
// producer) and whoever holds the future (the consumer).
//
// The slot is written at most once. Every read after the write returns the same
// value and error, no matter how many goroutines call Get concurrently.
type Future[R any] struct {
	id     int64
	result Result[R]
	done   chan struct{}
	once   sync.Once
}

// NewFuture creates an empty future for the task with the given id.
func NewFuture[R any](id int64) *Future[R] {
	return &Future[R]{
		id:   id,
		done: make(chan struct{}),
	}
}

// Complete stores r and releases every waiter.
// Only the first call has any effect; it reports whether this call wrote the slot.
func (f *Future[R]) Complete(r Result[R]) bool {
	written := false
	f.once.Do(func() {
		f.result = r
		close(f.done)
		written = true
	})
	return written
}

// Get blocks until the task has finished and returns its value and error.
func (f *Future[R]) Get() (R, error) {
	<-f.done
	return f.result.Value, f.result.Error
}

// GetWithContext is like Get but gives up when ctx is done, returning ctx.Err().
// Giving up does not affect the task; a later Get still observes its result.
func (f *Future[R]) GetWithContext(ctx context.Context) (R, error) {
	select {
	case <-f.done:
		return f.result.Value, f.result.Error
	case <-ctx.Done():
		var zero R
		return zero, ctx.Err()
	}
}

// GetWithTimeout waits at most timeout for the result.
// It returns context.DeadlineExceeded when the result is not ready in time.
func (f *Future[R]) GetWithTimeout(timeout time.Duration) (R, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return f.GetWithContext(ctx)
}

// TryGet returns the result without blocking.
// ready is false (and value and err are zero) while the task is still pending.
func (f *Future[R]) TryGet() (value R, err error, ready bool) {
	select {
	case <-f.done:
		return f.result.Value, f.result.Error, true
	default:
		return value, nil, false
	}
}

// Done returns a channel that is closed once the result is available.
func (f *Future[R]) Done() <-chan struct{} {
	return f.done
}

// IsReady reports whether the result is available.
func (f *Future[R]) IsReady() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// ID returns the id of the task this future belongs to.
func (f *Future[R]) ID() int64 {
	return f.id
}
