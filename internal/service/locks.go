package service

import "sync"

// lockTable hands out one mutex per key so operations on the same entity are
// serialized while different entities proceed in parallel. Mutexes are never
// evicted; the key space (ingredients, active orders) is small.
type lockTable struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newLockTable() *lockTable {
	return &lockTable{locks: make(map[string]*sync.Mutex)}
}

func (t *lockTable) get(key string) *sync.Mutex {
	t.mu.Lock()
	defer t.mu.Unlock()

	if lock, ok := t.locks[key]; ok {
		return lock
	}
	lock := &sync.Mutex{}
	t.locks[key] = lock
	return lock
}

// OrderLocks serializes mutations per order. The order service and the
// production service must share one instance so status and stage transitions
// on the same order never interleave.
type OrderLocks struct {
	table *lockTable
}

// NewOrderLocks creates a shared per-order lock table
func NewOrderLocks() *OrderLocks {
	return &OrderLocks{table: newLockTable()}
}

func (l *OrderLocks) get(orderID string) *sync.Mutex {
	return l.table.get(orderID)
}
