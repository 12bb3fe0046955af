package work

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestQueueLIFO(t *testing.T) {
	q := newWorkQueue[int]()
	for i := 0; i < 10; i++ {
		assert.True(t, q.push(i, false))
	}
	assert.Equal(t, 10, q.len())

	for i := 9; i >= 0; i-- {
		item, ok := q.pop(false)
		assert.True(t, ok)
		assert.Equal(t, i, item)
	}
	assert.Equal(t, 0, q.len())

	q.finish()
	q.release()
}

func TestQueueNonBlocking(t *testing.T) {
	q := newWorkQueue[int]()

	_, ok := q.pop(true)
	assert.False(t, ok, "an empty queue does not block a non-blocking pop")

	q.mutex.Lock()
	assert.False(t, q.push(1, true))
	_, ok = q.pop(true)
	assert.False(t, ok)
	q.mutex.Unlock()

	assert.True(t, q.push(1, true))
	item, ok := q.pop(true)
	assert.True(t, ok)
	assert.Equal(t, 1, item)

	q.finish()
	q.release()
}

func TestQueueFinishWakesPops(t *testing.T) {
	q := newWorkQueue[int]()

	results := make(chan bool, 3)
	for i := 0; i < 3; i++ {
		go func() {
			_, ok := q.pop(false)
			results <- ok
		}()
	}

	time.Sleep(20 * time.Millisecond)
	q.finish()

	for i := 0; i < 3; i++ {
		select {
		case ok := <-results:
			assert.False(t, ok)
		case <-time.After(time.Second):
			t.Fatal("pop still blocked after finish")
		}
	}

	_, ok := q.pop(false)
	assert.False(t, ok, "pops on a finished queue never block")
	assert.True(t, q.isDone())
	q.release()
}

func TestQueuePushWakesPop(t *testing.T) {
	q := newWorkQueue[int]()

	results := make(chan int, 1)
	go func() {
		item, ok := q.pop(false)
		if ok {
			results <- item
		}
	}()

	time.Sleep(20 * time.Millisecond)
	q.push(7, false)

	select {
	case item := <-results:
		assert.Equal(t, 7, item)
	case <-time.After(time.Second):
		t.Fatal("pop not woken by push")
	}

	q.finish()
	q.release()
}

func TestQueueFinishTwice(t *testing.T) {
	q := newWorkQueue[int]()
	q.finish()
	assert.Panics(t, func() {
		q.finish()
	})
}

func TestQueueRelease(t *testing.T) {
	q := newWorkQueue[int]()
	err := recoverErr(q.release)
	assert.True(t, errors.Is(err, ErrQueueNotDrained), "queue still open")

	q.push(1, false)
	q.finish()
	err = recoverErr(q.release)
	assert.True(t, errors.Is(err, ErrQueueNotDrained), "queue still holds an item")

	q.pop(false)
	assert.NoError(t, recoverErr(q.release))
}

func TestArena(t *testing.T) {
	var a arena[string]
	assert.Equal(t, 0, a.append("a"))
	assert.Equal(t, 1, a.append("b"))
	assert.Equal(t, 2, a.append("c"))
	assert.Equal(t, 3, a.len())
	assert.Equal(t, "b", a.at(1))

	snap := a.snapshot()
	a.append("d")
	assert.Equal(t, []string{"a", "b", "c"}, snap)

	a.reset()
	assert.Equal(t, 0, a.len())
	assert.Equal(t, 0, a.append("e"))
}
