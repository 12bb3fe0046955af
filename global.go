package work

import "sync"

var (
	globalMutex sync.Mutex
	globalPool  *Pool[Nothing, Nothing]
)

func ensurePool() *Pool[Nothing, Nothing] {
	globalMutex.Lock()
	defer globalMutex.Unlock()
	return ensurePoolLocked()
}

// Like ensurePool, with globalMutex held by the caller.
func ensurePoolLocked() *Pool[Nothing, Nothing] {
	if globalPool == nil {
		globalPool = NewPool[Nothing, Nothing](nil, Options{})
	}
	return globalPool
}

// Ensures that the global pool is started
func Start() {
	ensurePool()
}

// Runs fn on the global pool. Safe to call while Shutdown runs: the task goes
// either to the pool being shut down, which waits for it, or to a new one.
func Go[R any](fn func() R) *Runnable {
	globalMutex.Lock()
	defer globalMutex.Unlock()
	return AddFunc(ensurePoolLocked(), func(Nothing, Nothing) R {
		return fn()
	}, Nothing{})
}

// Blocks until every task submitted to the global pool has finished.
func Wait() {
	ensurePool().Wait()
}

// Waits for every task on the global pool, then stops its workers. The next
// call to Start or Go starts a new pool.
func Shutdown() {
	globalMutex.Lock()
	p := globalPool
	globalPool = nil
	globalMutex.Unlock()
	if p == nil {
		return
	}
	p.Wait()
	p.Close()
}
