package cache

import (
	"context"
	"sync"
	"time"

	"github.com/ComunidadDecidida/mayoristas/internal/domain/supplier"
)

// InMemoryRunLock implements supplier.RunLock for single-instance
// deployments and tests. Entries expire after the TTL so a crashed run
// cannot wedge syncing forever.
type InMemoryRunLock struct {
	mu    sync.Mutex
	held  map[supplier.Code]time.Time
	ttl   time.Duration
	clock func() time.Time
}

// NewInMemoryRunLock creates an in-process run lock
func NewInMemoryRunLock(ttl time.Duration) *InMemoryRunLock {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &InMemoryRunLock{
		held:  make(map[supplier.Code]time.Time),
		ttl:   ttl,
		clock: time.Now,
	}
}

// TryAcquire attempts to take the per-supplier lock
func (l *InMemoryRunLock) TryAcquire(_ context.Context, code supplier.Code) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock()
	if expiry, ok := l.held[code]; ok && now.Before(expiry) {
		return false, nil
	}
	l.held[code] = now.Add(l.ttl)
	return true, nil
}

// Release frees the lock
func (l *InMemoryRunLock) Release(_ context.Context, code supplier.Code) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.held, code)
	return nil
}

var _ supplier.RunLock = (*InMemoryRunLock)(nil)
