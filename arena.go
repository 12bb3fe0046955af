package work

import "sync"

// arena is an append-only store handing out stable slot indices. The queues
// carry these indices rather than the items themselves.
type arena[T any] struct {
	mutex sync.RWMutex
	slots []T
}

// Stores v and returns its slot.
func (a *arena[T]) append(v T) int {
	a.mutex.Lock()
	defer a.mutex.Unlock()
	a.slots = append(a.slots, v)
	return len(a.slots) - 1
}

// Returns the value stored in slot i.
func (a *arena[T]) at(i int) T {
	a.mutex.RLock()
	defer a.mutex.RUnlock()
	return a.slots[i]
}

func (a *arena[T]) len() int {
	a.mutex.RLock()
	defer a.mutex.RUnlock()
	return len(a.slots)
}

// Returns a copy of every stored value, in slot order.
func (a *arena[T]) snapshot() []T {
	a.mutex.RLock()
	defer a.mutex.RUnlock()
	out := make([]T, len(a.slots))
	copy(out, a.slots)
	return out
}

// Drops every stored value. Slots handed out before are no longer valid.
func (a *arena[T]) reset() {
	a.mutex.Lock()
	defer a.mutex.Unlock()
	a.slots = nil
}
