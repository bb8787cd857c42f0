package types

import "context"

// Runnable is a type-erased unit of work as seen by the scheduler.
// It hides the result type of the task behind Run and Fail so that workers can
// hold tasks of any result type in one queue.
type Runnable interface {
	// ID returns the id assigned at submit time.
	ID() int64

	// Run executes the task and delivers its outcome to the paired future.
	// It never panics; a panic raised by the task is stored and returned as a
	// *PanicError with recovered set. An error the task merely returns, even one
	// wrapping a *PanicError from another task, leaves recovered false.
	Run(ctx context.Context) (recovered bool, err error)

	// Fail completes the paired future with err without running the task.
	Fail(err error)
}

// TaskFunc is a zero-input callable with every argument already bound.
type TaskFunc[R any] func(ctx context.Context) (R, error)

// SubmittedTask pairs a bound callable with the future its result is delivered to.
type SubmittedTask[R any] struct {
	Id     int64
	Fn     TaskFunc[R]
	Future *Future[R]
}

// NewSubmittedTask wraps fn together with a fresh future.
func NewSubmittedTask[R any](id int64, fn TaskFunc[R]) *SubmittedTask[R] {
	return &SubmittedTask[R]{
		Id:     id,
		Fn:     fn,
		Future: NewFuture[R](id),
	}
}

func (s *SubmittedTask[R]) ID() int64 {
	return s.Id
}

// Run calls the bound function and stores its outcome in the future.
// A panic is recovered, converted to a *PanicError and stored like any other error.
func (s *SubmittedTask[R]) Run(ctx context.Context) (recovered bool, err error) {
	var value R
	defer func() {
		if r := recover(); r != nil {
			recovered = true
			err = NewPanicError(r)
		}
		s.Future.Complete(Result[R]{Value: value, Error: err, Id: s.Id})
	}()

	value, err = s.Fn(ctx)
	return false, err
}

func (s *SubmittedTask[R]) Fail(err error) {
	var zero R
	s.Future.Complete(Result[R]{Value: zero, Error: err, Id: s.Id})
}

var _ Runnable = (*SubmittedTask[struct{}])(nil)
