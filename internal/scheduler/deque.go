package scheduler

import (
	"sync"

	"github.com/utkarsh5026/stealpool/internal/types"
)

const defaultQueueCapacity = 64

// taskQueue is an unbounded double-ended queue of tasks guarded by a mutex.
//
// The owning worker consumes from the head (oldest first), so work it queued for
// itself runs in submission order. Thieves take from the tail (newest first). Any
// goroutine may push, because submitters outside the pool push into worker queues too.
//
// The lock is held only across a single mutation, never while a task runs. A task
// leaves the ring under the lock, so exactly one of pop and steal can hand it out.
type taskQueue struct {
	mu sync.Mutex

	// Ring buffer of tasks; len(ring) is always a power of 2
	ring []types.Runnable

	// Index of the oldest task
	head int

	// Number of queued tasks
	size int
}

func newTaskQueue(capacity int) *taskQueue {
	if capacity <= 0 {
		capacity = defaultQueueCapacity
	}

	return &taskQueue{
		ring: make([]types.Runnable, nextPowerOfTwo(capacity)),
	}
}

// push appends t at the tail, growing the ring when it is full.
func (q *taskQueue) push(t types.Runnable) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.size == len(q.ring) {
		q.grow()
	}

	q.ring[(q.head+q.size)&(len(q.ring)-1)] = t
	q.size++
}

// pop removes and returns the oldest task. It reports false when the queue is empty.
func (q *taskQueue) pop() (types.Runnable, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.size == 0 {
		return nil, false
	}

	return q.popHead(), true
}

// steal removes and returns the newest task. It reports false when the queue is empty.
func (q *taskQueue) steal() (types.Runnable, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.size == 0 {
		return nil, false
	}

	idx := (q.head + q.size - 1) & (len(q.ring) - 1)
	t := q.ring[idx]
	q.ring[idx] = nil
	q.size--
	return t, true
}

// len returns the number of queued tasks. The value may be stale by the time it is used.
func (q *taskQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.size
}

// drain removes every queued task and returns them oldest first.
func (q *taskQueue) drain() []types.Runnable {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]types.Runnable, 0, q.size)
	for q.size > 0 {
		out = append(out, q.popHead())
	}
	return out
}

// popHead must be called with mu held and size > 0.
func (q *taskQueue) popHead() types.Runnable {
	t := q.ring[q.head]
	q.ring[q.head] = nil
	q.head = (q.head + 1) & (len(q.ring) - 1)
	q.size--
	return t
}

// grow doubles the ring and unwraps the queued tasks to start at index 0.
// Must be called with mu held.
func (q *taskQueue) grow() {
	newRing := make([]types.Runnable, len(q.ring)<<1)
	mask := len(q.ring) - 1

	for i := range q.size {
		newRing[i] = q.ring[(q.head+i)&mask]
	}

	q.ring = newRing
	q.head = 0
}
