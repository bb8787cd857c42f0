package pool

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPool(t *testing.T, opts ...Option) *Pool {
	t.Helper()

	p, err := New(opts...)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = p.Shutdown(5 * time.Second)
	})
	return p
}

func isPrime(n int) bool {
	if n < 2 {
		return false
	}
	for d := 2; d*d <= n; d++ {
		if n%d == 0 {
			return false
		}
	}
	return true
}

func TestNew_WorkerCount(t *testing.T) {
	tests := []struct {
		name    string
		opts    []Option
		want    int
		wantErr error
	}{
		{name: "default", want: runtime.GOMAXPROCS(0)},
		{name: "explicit", opts: []Option{WithWorkerCount(3)}, want: 3},
		{name: "single worker", opts: []Option{WithWorkerCount(1)}, want: 1},
		{name: "zero", opts: []Option{WithWorkerCount(0)}, wantErr: ErrInvalidWorkerCount},
		{name: "negative", opts: []Option{WithWorkerCount(-2)}, wantErr: ErrInvalidWorkerCount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := New(tt.opts...)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, p)
				return
			}

			require.NoError(t, err)
			defer p.Close()
			assert.Equal(t, tt.want, p.WorkerCount())
		})
	}
}

func TestSubmit_ExactlyOnce(t *testing.T) {
	for _, workers := range []int{1, 2, 3, 8} {
		p := newTestPool(t, WithWorkerCount(workers))

		const tasks = 1000
		var runs [tasks]atomic.Int32
		futures := make([]*Future[int], tasks)

		for i := range tasks {
			f, err := Submit(context.Background(), p, func(ctx context.Context) (int, error) {
				runs[i].Add(1)
				return i * i, nil
			})
			require.NoError(t, err)
			futures[i] = f
		}

		for i, f := range futures {
			v, err := f.Get()
			require.NoError(t, err)
			require.Equal(t, i*i, v)
		}

		for i := range runs {
			require.Equalf(t, int32(1), runs[i].Load(), "workers=%d task %d", workers, i)
		}
	}
}

func TestFuture_GetIsIdempotent(t *testing.T) {
	p := newTestPool(t, WithWorkerCount(2))

	f, err := Submit(context.Background(), p, func(ctx context.Context) (string, error) {
		return "answer", nil
	})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := f.Get()
			assert.NoError(t, err)
			assert.Equal(t, "answer", v)
		}()
	}
	wg.Wait()

	v, err, ready := f.TryGet()
	assert.True(t, ready)
	assert.NoError(t, err)
	assert.Equal(t, "answer", v)
}

func TestSubmit_Nested(t *testing.T) {
	p := newTestPool(t, WithWorkerCount(4))

	f, err := Submit(context.Background(), p, func(ctx context.Context) (int, error) {
		child, err := Submit(ctx, p, func(ctx context.Context) (int, error) {
			return 41, nil
		})
		if err != nil {
			return 0, err
		}
		v, err := child.Get()
		return v + 1, err
	})
	require.NoError(t, err)

	v, err := f.GetWithTimeout(5 * time.Second)
	require.NoError(t, err)
	assert.Equal(t, 42, v)
}

func TestSubmit_TwoWorkersShareWork(t *testing.T) {
	p := newTestPool(t, WithWorkerCount(2))

	var counter atomic.Int32
	var byWorker [2]atomic.Int32
	futures := make([]*Future[struct{}], 10)

	for i := range futures {
		f, err := Run(context.Background(), p, func(ctx context.Context) error {
			id, ok := WorkerID(ctx)
			if !ok {
				return errors.New("no worker in task context")
			}
			byWorker[id].Add(1)
			counter.Add(1)
			time.Sleep(20 * time.Millisecond)
			return nil
		})
		require.NoError(t, err)
		futures[i] = f
	}

	for _, f := range futures {
		_, err := f.Get()
		require.NoError(t, err)
	}

	assert.Equal(t, int32(10), counter.Load())
	assert.NotZero(t, byWorker[1].Load(), "worker 1 should have stolen some tasks")
}

func TestSubmit_FailureIsContained(t *testing.T) {
	p := newTestPool(t, WithWorkerCount(2))
	errBad := errors.New("bad input")

	failed, err := Submit(context.Background(), p, func(ctx context.Context) (int, error) {
		return 0, errBad
	})
	require.NoError(t, err)

	panicked, err := Submit(context.Background(), p, func(ctx context.Context) (int, error) {
		var m map[string]int
		m["boom"] = 1
		return 0, nil
	})
	require.NoError(t, err)

	_, err = failed.Get()
	assert.ErrorIs(t, err, errBad)

	_, err = panicked.Get()
	var pe *PanicError
	require.ErrorAs(t, err, &pe)
	assert.Contains(t, pe.Error(), "worker panic")

	after, err := Submit(context.Background(), p, func(ctx context.Context) (int, error) {
		return 5, nil
	})
	require.NoError(t, err)

	v, err := after.Get()
	require.NoError(t, err)
	assert.Equal(t, 5, v)
}

func TestSubmit_PrimesBelow1000(t *testing.T) {
	p := newTestPool(t, WithWorkerCount(8))

	futures := make([]*Future[bool], 1000)
	for n := range futures {
		f, err := Call1(context.Background(), p, func(ctx context.Context, n int) (bool, error) {
			return isPrime(n), nil
		}, n)
		require.NoError(t, err)
		futures[n] = f
	}

	var primes []int
	for n, f := range futures {
		ok, err := f.Get()
		require.NoError(t, err)
		if ok {
			primes = append(primes, n)
		}
	}

	require.Len(t, primes, 168)
	assert.Equal(t, []int{2, 3, 5, 7, 11}, primes[:5])
	assert.Equal(t, 997, primes[len(primes)-1])
}

func TestCallHelpers(t *testing.T) {
	p := newTestPool(t, WithWorkerCount(2))
	ctx := context.Background()

	f1, err := Call1(ctx, p, func(ctx context.Context, s string) (int, error) {
		return len(s), nil
	}, "four")
	require.NoError(t, err)

	f2, err := Call2(ctx, p, func(ctx context.Context, a, b int) (int, error) {
		return a * b, nil
	}, 6, 7)
	require.NoError(t, err)

	f3, err := Call3(ctx, p, func(ctx context.Context, a string, n int, sep string) (string, error) {
		out := ""
		for i := range n {
			if i > 0 {
				out += sep
			}
			out += a
		}
		return out, nil
	}, "ab", 3, "-")
	require.NoError(t, err)

	v1, err := f1.Get()
	require.NoError(t, err)
	assert.Equal(t, 4, v1)

	v2, err := f2.Get()
	require.NoError(t, err)
	assert.Equal(t, 42, v2)

	v3, err := f3.Get()
	require.NoError(t, err)
	assert.Equal(t, "ab-ab-ab", v3)
}

func TestCallHelpers_BindAtSubmitTime(t *testing.T) {
	p := newTestPool(t, WithWorkerCount(1))

	type point struct{ X, Y int }

	release := make(chan struct{})
	_, err := Run(context.Background(), p, func(ctx context.Context) error {
		<-release
		return nil
	})
	require.NoError(t, err)

	pt := point{X: 1, Y: 2}
	f, err := Call1(context.Background(), p, func(ctx context.Context, pt point) (int, error) {
		return pt.X + pt.Y, nil
	}, pt)
	require.NoError(t, err)

	pt.X = 100
	close(release)

	v, err := f.Get()
	require.NoError(t, err)
	assert.Equal(t, 3, v)
	assert.Equal(t, 100, pt.X)
}

func TestSubmit_NilTask(t *testing.T) {
	p := newTestPool(t, WithWorkerCount(1))
	ctx := context.Background()

	_, err := Submit[int](ctx, p, nil)
	assert.ErrorIs(t, err, ErrNilTask)

	_, err = Run(ctx, p, nil)
	assert.ErrorIs(t, err, ErrNilTask)

	_, err = Call1[int, int](ctx, p, nil, 1)
	assert.ErrorIs(t, err, ErrNilTask)

	_, err = Call2[int, int, int](ctx, p, nil, 1, 2)
	assert.ErrorIs(t, err, ErrNilTask)

	_, err = Call3[int, int, int, int](ctx, p, nil, 1, 2, 3)
	assert.ErrorIs(t, err, ErrNilTask)
}

func TestClose(t *testing.T) {
	t.Run("empty pool closes promptly", func(t *testing.T) {
		p, err := New(WithWorkerCount(4))
		require.NoError(t, err)

		start := time.Now()
		require.NoError(t, p.Shutdown(2*time.Second))
		assert.Less(t, time.Since(start), time.Second)

		for _, w := range p.Stats().Workers {
			assert.Equal(t, StateExiting, w.State)
		}
	})

	t.Run("submit after close", func(t *testing.T) {
		p, err := New(WithWorkerCount(2))
		require.NoError(t, err)
		require.NoError(t, p.Close())

		_, err = Submit(context.Background(), p, func(ctx context.Context) (int, error) { return 1, nil })
		assert.ErrorIs(t, err, ErrPoolClosed)

		_, err = Run(context.Background(), p, func(ctx context.Context) error { return nil })
		assert.ErrorIs(t, err, ErrPoolClosed)
	})

	t.Run("second close", func(t *testing.T) {
		p, err := New(WithWorkerCount(2))
		require.NoError(t, err)
		require.NoError(t, p.Close())

		assert.ErrorIs(t, p.Close(), ErrAlreadyClosed)
		assert.ErrorIs(t, p.Shutdown(time.Second), ErrAlreadyClosed)
	})

	t.Run("drains queued work", func(t *testing.T) {
		p, err := New(WithWorkerCount(2))
		require.NoError(t, err)

		var ran atomic.Int32
		futures := make([]*Future[struct{}], 50)
		for i := range futures {
			futures[i], err = Run(context.Background(), p, func(ctx context.Context) error {
				time.Sleep(time.Millisecond)
				ran.Add(1)
				return nil
			})
			require.NoError(t, err)
		}

		require.NoError(t, p.Close())
		assert.Equal(t, int32(50), ran.Load())
		for _, f := range futures {
			assert.True(t, f.IsReady())
		}
	})

	t.Run("abandons queued work", func(t *testing.T) {
		p, err := New(WithWorkerCount(1), WithAbandonOnClose())
		require.NoError(t, err)

		started := make(chan struct{})
		blocker, err := Run(context.Background(), p, func(ctx context.Context) error {
			close(started)
			<-ctx.Done()
			return ctx.Err()
		})
		require.NoError(t, err)
		<-started

		queued := make([]*Future[int], 10)
		for i := range queued {
			queued[i], err = Submit(context.Background(), p, func(ctx context.Context) (int, error) {
				return i, nil
			})
			require.NoError(t, err)
		}

		require.NoError(t, p.Shutdown(2*time.Second))

		_, err = blocker.Get()
		assert.ErrorIs(t, err, context.Canceled)
		for _, f := range queued {
			_, err := f.Get()
			assert.ErrorIs(t, err, ErrTaskAbandoned)
		}
		assert.Equal(t, int64(10), p.Stats().Abandoned)
	})

	t.Run("abandons tasks waiting for the rate limiter", func(t *testing.T) {
		p, err := New(WithWorkerCount(1), WithAbandonOnClose(), WithRateLimit(0.5, 1))
		require.NoError(t, err)

		// Uses up the only token, so the next task blocks in the limiter for 2s.
		first, err := Submit(context.Background(), p, func(ctx context.Context) (int, error) { return 0, nil })
		require.NoError(t, err)
		_, err = first.Get()
		require.NoError(t, err)

		var ran atomic.Int32
		queued := make([]*Future[int], 3)
		for i := range queued {
			queued[i], err = Submit(context.Background(), p, func(ctx context.Context) (int, error) {
				ran.Add(1)
				return i, nil
			})
			require.NoError(t, err)
		}
		time.Sleep(20 * time.Millisecond)

		require.NoError(t, p.Shutdown(2*time.Second))

		for i, f := range queued {
			_, err := f.Get()
			assert.ErrorIs(t, err, ErrTaskAbandoned, "task %d", i)
		}
		assert.Zero(t, ran.Load())

		stats := p.Stats()
		assert.Equal(t, int64(1), stats.Completed)
		assert.Equal(t, int64(0), stats.Failed)
		assert.Equal(t, int64(3), stats.Abandoned)
	})

	t.Run("shutdown from inside a task", func(t *testing.T) {
		p, err := New(WithWorkerCount(2))
		require.NoError(t, err)

		f, err := Run(context.Background(), p, func(ctx context.Context) error {
			// This worker cannot exit while it waits, so only a bounded wait returns.
			return p.Shutdown(20 * time.Millisecond)
		})
		require.NoError(t, err)

		_, err = f.GetWithTimeout(5 * time.Second)
		assert.ErrorIs(t, err, ErrShutdownTimeout)

		select {
		case <-p.Done():
		case <-time.After(5 * time.Second):
			t.Fatal("pool never finished shutting down")
		}
	})

	t.Run("timeout", func(t *testing.T) {
		p, err := New(WithWorkerCount(1))
		require.NoError(t, err)

		release := make(chan struct{})
		started := make(chan struct{})
		f, err := Run(context.Background(), p, func(ctx context.Context) error {
			close(started)
			<-release
			return nil
		})
		require.NoError(t, err)
		<-started

		assert.ErrorIs(t, p.Shutdown(20*time.Millisecond), ErrShutdownTimeout)

		close(release)
		_, err = f.Get()
		require.NoError(t, err)

		select {
		case <-p.Done():
		case <-time.After(5 * time.Second):
			t.Fatal("pool never finished shutting down")
		}
	})
}

func TestHooks(t *testing.T) {
	var mu sync.Mutex
	started := map[int64]int{}
	ended := map[int64]error{}
	var panics atomic.Int32

	p, err := New(
		WithWorkerCount(3),
		WithBeforeTaskStart(func(workerID int, taskID int64) {
			mu.Lock()
			started[taskID] = workerID
			mu.Unlock()
		}),
		WithOnTaskEnd(func(workerID int, taskID int64, err error) {
			mu.Lock()
			ended[taskID] = err
			mu.Unlock()
		}),
		WithPanicHandler(func(workerID int, recovered any) {
			panics.Add(1)
		}),
	)
	require.NoError(t, err)

	errOdd := errors.New("odd")
	for i := range 6 {
		_, err := Submit(context.Background(), p, func(ctx context.Context) (int, error) {
			switch {
			case i == 5:
				panic("five")
			case i%2 == 1:
				return 0, errOdd
			}
			return i, nil
		})
		require.NoError(t, err)
	}

	require.NoError(t, p.Close())

	mu.Lock()
	defer mu.Unlock()

	assert.Len(t, started, 6)
	assert.Len(t, ended, 6)
	assert.Equal(t, int32(1), panics.Load())

	var failures int
	for _, err := range ended {
		if err != nil {
			failures++
		}
	}
	assert.Equal(t, 3, failures)

	stats := p.Stats()
	assert.Equal(t, int64(6), stats.Submitted)
	assert.Equal(t, int64(3), stats.Completed)
	assert.Equal(t, int64(3), stats.Failed)
}

func TestHooks_NestedPanicReportedOnce(t *testing.T) {
	var panics atomic.Int32
	p := newTestPool(t,
		WithWorkerCount(2),
		WithPanicHandler(func(workerID int, recovered any) {
			panics.Add(1)
		}),
	)

	parent, err := Submit(context.Background(), p, func(ctx context.Context) (int, error) {
		child, err := Submit(ctx, p, func(ctx context.Context) (int, error) {
			panic("child failed")
		})
		if err != nil {
			return 0, err
		}
		return child.Get()
	})
	require.NoError(t, err)

	_, err = parent.Get()
	var pe *PanicError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "child failed", pe.Value)

	require.NoError(t, p.Shutdown(2*time.Second))
	assert.Equal(t, int32(1), panics.Load())
}

func TestRateLimit(t *testing.T) {
	p := newTestPool(t, WithWorkerCount(4), WithRateLimit(20, 2))

	start := time.Now()
	futures := make([]*Future[struct{}], 8)
	for i := range futures {
		f, err := Run(context.Background(), p, func(ctx context.Context) error { return nil })
		require.NoError(t, err)
		futures[i] = f
	}
	for _, f := range futures {
		_, err := f.Get()
		require.NoError(t, err)
	}

	// Two tasks start from the burst, the other six wait 50ms each.
	assert.GreaterOrEqual(t, time.Since(start), 250*time.Millisecond)
}

func TestStats(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	mClock := quartz.NewMock(t)
	p := newTestPool(t, WithWorkerCount(3), WithClock(mClock))

	require.Eventually(t, func() bool {
		for _, w := range p.Stats().Workers {
			if w.State != StateParked {
				return false
			}
		}
		return true
	}, 5*time.Second, 5*time.Millisecond, "idle workers should park")

	mClock.Advance(90 * time.Second).MustWait(ctx)

	stats := p.Stats()
	assert.Equal(t, 90*time.Second, stats.Uptime)
	require.Len(t, stats.Workers, 3)
	for i, w := range stats.Workers {
		assert.Equal(t, i, w.ID)
		assert.Zero(t, w.Queued)
	}
}

func TestWorkerID_OutsidePool(t *testing.T) {
	_, ok := WorkerID(context.Background())
	assert.False(t, ok)
}
