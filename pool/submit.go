package pool

import (
	"context"

	"github.com/utkarsh5026/stealpool/internal/types"
)

// Submit queues fn for execution and returns a future for its result. It never
// waits for fn to run.
//
// Arguments are bound by closing over them. fn receives a context that identifies
// the worker running it: passing that context to Submit from inside fn queues the
// child on the same worker, which keeps related work local.
//
// A task that submits a child and then blocks on the child's future can deadlock a
// pool whose every worker is blocked the same way (trivially so with one worker).
//
// Parameters:
//   - ctx: Routing context; use the task's ctx for nested submissions, anything else otherwise
//   - p: The pool to run on
//   - fn: The callable; its error, or a panic converted to *PanicError, is stored in the future
//
// Returns:
//   - *Future[R]: Completed once fn returns
//   - error: ErrNilTask, or ErrPoolClosed once Close or Shutdown has been called
//
// Example:
//
//	f, err := pool.Submit(ctx, p, func(ctx context.Context) (int, error) {
//	    return expensive(n), nil
//	})
//	if err != nil {
//	    return err
//	}
//	v, err := f.Get()
func Submit[R any](ctx context.Context, p *Pool, fn func(ctx context.Context) (R, error)) (*Future[R], error) {
	if fn == nil {
		return nil, ErrNilTask
	}

	task := types.NewSubmittedTask(p.sched.NextTaskID(), types.TaskFunc[R](fn))
	if err := p.sched.Submit(ctx, task); err != nil {
		return nil, err
	}
	return task.Future, nil
}

// Run is Submit for callables that produce no value.
func Run(ctx context.Context, p *Pool, fn func(ctx context.Context) error) (*Future[struct{}], error) {
	if fn == nil {
		return nil, ErrNilTask
	}

	return Submit(ctx, p, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
}

// Call1 submits fn(a). a is copied at submit time.
func Call1[A, R any](ctx context.Context, p *Pool, fn func(ctx context.Context, a A) (R, error), a A) (*Future[R], error) {
	if fn == nil {
		return nil, ErrNilTask
	}

	return Submit(ctx, p, func(ctx context.Context) (R, error) {
		return fn(ctx, a)
	})
}

// Call2 submits fn(a, b). The arguments are copied at submit time.
func Call2[A, B, R any](ctx context.Context, p *Pool, fn func(ctx context.Context, a A, b B) (R, error), a A, b B) (*Future[R], error) {
	if fn == nil {
		return nil, ErrNilTask
	}

	return Submit(ctx, p, func(ctx context.Context) (R, error) {
		return fn(ctx, a, b)
	})
}

// Call3 submits fn(a, b, c). The arguments are copied at submit time.
func Call3[A, B, C, R any](ctx context.Context, p *Pool, fn func(ctx context.Context, a A, b B, c C) (R, error), a A, b B, c C) (*Future[R], error) {
	if fn == nil {
		return nil, ErrNilTask
	}

	return Submit(ctx, p, func(ctx context.Context) (R, error) {
		return fn(ctx, a, b, c)
	})
}
