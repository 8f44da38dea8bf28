package lifecycle

import (
	"sync"

	"golang.org/x/sync/semaphore"
)

// inflight allows one running status change per order id.
type inflight struct {
	mu     sync.Mutex
	orders map[int]*semaphore.Weighted
}

func newInflight() *inflight {
	return &inflight{orders: make(map[int]*semaphore.Weighted)}
}

// acquire reserves orderID. ok is false when a change for it is already running.
func (f *inflight) acquire(orderID int) (release func(), ok bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	sem, exists := f.orders[orderID]
	if !exists {
		sem = semaphore.NewWeighted(1)
		f.orders[orderID] = sem
	}
	if !sem.TryAcquire(1) {
		return nil, false
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			f.mu.Lock()
			defer f.mu.Unlock()
			sem.Release(1)
			delete(f.orders, orderID)
		})
	}, true
}
