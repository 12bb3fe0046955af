package work

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGlobalPool(t *testing.T) {
	Start()
	r := Go(func() int {
		return 7
	})
	Wait()

	result, err := Result[int](r)
	assert.NoError(t, err)
	assert.Equal(t, 7, result)

	Shutdown()
	Shutdown()

	// A new pool is started on demand after a shutdown.
	r = Go(func() string {
		return "again"
	})
	Wait()
	s, err := Result[string](r)
	assert.NoError(t, err)
	assert.Equal(t, "again", s)
	Shutdown()
}

func TestGlobalGoDuringShutdown(t *testing.T) {
	const (
		submitters = 4
		tasks      = 50
	)

	var wg sync.WaitGroup
	runnables := make([][]*Runnable, submitters)
	for s := range runnables {
		wg.Add(1)
		go func(s int) {
			defer wg.Done()
			for i := 0; i < tasks; i++ {
				runnables[s] = append(runnables[s], Go(func() int {
					return i
				}))
			}
		}(s)
	}

	stop := make(chan struct{})
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		for {
			select {
			case <-stop:
				return
			default:
				Shutdown()
			}
		}
	}()

	wg.Wait()
	close(stop)
	<-stopped
	Shutdown()

	for _, rs := range runnables {
		for i, r := range rs {
			assert.True(t, r.IsFinished())
			result, err := Result[int](r)
			assert.NoError(t, err)
			assert.Equal(t, i, result)
		}
	}
}
