package scheduler

import "context"

type workerKey struct{}

// withWorker returns a context that identifies w as the executing worker.
// Every task a worker runs receives this context, which is how a task that
// submits more work gets routed back to its own worker.
func withWorker(ctx context.Context, w *worker) context.Context {
	return context.WithValue(ctx, workerKey{}, w)
}

func workerFrom(ctx context.Context) (*worker, bool) {
	if ctx == nil {
		return nil, false
	}
	w, ok := ctx.Value(workerKey{}).(*worker)
	return w, ok
}

// WorkerID returns the id of the worker running the task that received ctx.
// It reports false when ctx did not come from a worker.
func WorkerID(ctx context.Context) (int, bool) {
	w, ok := workerFrom(ctx)
	if !ok {
		return 0, false
	}
	return w.id, true
}
