package work

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
)

// workQueue is the queue of pending items owned by one worker. Items are
// handed out last in, first out. Other workers may steal from it, but only
// with non-blocking pops, so no goroutine ever holds two queue locks.
type workQueue[T any] struct {
	mutex sync.Mutex
	cond  *sync.Cond
	items []T
	done  atomic.Bool
}

func newWorkQueue[T any]() *workQueue[T] {
	q := &workQueue[T]{}
	q.cond = sync.NewCond(&q.mutex)
	return q
}

// Removes and returns the most recently pushed item.
//
// A blocking pop waits until an item is available or the queue is finished.
// A non-blocking pop gives up at once if the lock is held by someone else or
// the queue is empty. The second return value is false when nothing was
// popped.
func (q *workQueue[T]) pop(nonBlocking bool) (T, bool) {
	var zero T
	if nonBlocking {
		if !q.mutex.TryLock() {
			return zero, false
		}
	} else {
		q.mutex.Lock()
	}
	defer q.mutex.Unlock()

	if !nonBlocking {
		for len(q.items) == 0 && !q.done.Load() {
			q.cond.Wait()
		}
	}
	if len(q.items) == 0 {
		return zero, false
	}

	last := len(q.items) - 1
	item := q.items[last]
	q.items[last] = zero
	q.items = q.items[:last]
	return item, true
}

// Appends an item and wakes one waiting pop. A non-blocking push fails,
// returning false, if the lock is held by someone else.
func (q *workQueue[T]) push(item T, nonBlocking bool) bool {
	if nonBlocking {
		if !q.mutex.TryLock() {
			return false
		}
	} else {
		q.mutex.Lock()
	}
	q.items = append(q.items, item)
	q.mutex.Unlock()
	q.cond.Signal()
	return true
}

// Marks the queue as done and wakes every waiting pop. Pops never block on a
// finished queue. Must be called exactly once.
func (q *workQueue[T]) finish() {
	q.mutex.Lock()
	if q.done.Load() {
		q.mutex.Unlock()
		panic(errors.New("This queue was already finished"))
	}
	q.done.Store(true)
	q.mutex.Unlock()
	q.cond.Broadcast()
}

func (q *workQueue[T]) isDone() bool {
	return q.done.Load()
}

// Returns the number of pending items.
func (q *workQueue[T]) len() int {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	return len(q.items)
}

// Checks that the queue may be thrown away: it must be finished and empty.
func (q *workQueue[T]) release() {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	if !q.done.Load() || len(q.items) != 0 {
		panic(fmt.Errorf("%w: done=%t, %d items left",
			ErrQueueNotDrained, q.done.Load(), len(q.items)))
	}
}
