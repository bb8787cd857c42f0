package benchmarks

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
)

// cpuBoundWork simulates a CPU-intensive operation
func cpuBoundWork(iterations int) func(ctx context.Context, task int) (int, error) {
	return func(ctx context.Context, task int) (int, error) {
		result := 0
		for i := 0; i < iterations; i++ {
			result += i * task
		}
		return result, nil
	}
}

// ioBoundWork simulates an I/O operation with a delay
func ioBoundWork(delay time.Duration) func(ctx context.Context, task int) (int, error) {
	return func(ctx context.Context, task int) (int, error) {
		select {
		case <-time.After(delay):
			return task * 2, nil
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	}
}

// skewedWork makes one task in every ten a hundred times more expensive than the rest.
func skewedWork(base int) func(ctx context.Context, task int) (int, error) {
	heavy := cpuBoundWork(base * 100)
	light := cpuBoundWork(base)
	return func(ctx context.Context, task int) (int, error) {
		if task%10 == 0 {
			return heavy(ctx, task)
		}
		return light(ctx, task)
	}
}

// channelPool is the baseline: N goroutines draining one shared channel.
func channelPool(ctx context.Context, workers int, tasks []int, fn func(context.Context, int) (int, error)) ([]int, error) {
	results := make([]int, len(tasks))
	taskCh := make(chan int, workers)

	g, ctx := errgroup.WithContext(ctx)
	for range workers {
		g.Go(func() error {
			for idx := range taskCh {
				r, err := fn(ctx, tasks[idx])
				if err != nil {
					return err
				}
				results[idx] = r
			}
			return nil
		})
	}

	g.Go(func() error {
		defer close(taskCh)
		for idx := range tasks {
			select {
			case taskCh <- idx:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})

	return results, g.Wait()
}

func makeTasks(n int) []int {
	tasks := make([]int, n)
	for i := range tasks {
		tasks[i] = i
	}
	return tasks
}
