// Package lock provides in-process, TTL-bounded named locks used to
// serialize concurrent pack/unpack operations that target the same output
// path, plus a no-op variant for callers that don't need the guarantee.
package lock

import (
	"context"
	"sync"
	"time"

	"github.com/aarant/nescient/internal/repository"
)

type heldLock struct {
	expires time.Time
}

func (h heldLock) expired(now time.Time) bool {
	return now.After(h.expires)
}

// MemoryLocker is a mutex-guarded map of named, TTL-bounded locks.
type MemoryLocker struct {
	mu    sync.Mutex
	locks map[string]heldLock
}

// NewMemoryLocker creates an empty MemoryLocker.
func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{locks: make(map[string]heldLock)}
}

// Acquire attempts to take key for ttl, returning false (not an error) if
// another caller already holds it.
func (l *MemoryLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	now := time.Now()
	l.mu.Lock()
	defer l.mu.Unlock()

	if existing, ok := l.locks[key]; ok && !existing.expired(now) {
		return false, nil
	}
	l.locks[key] = heldLock{expires: now.Add(ttl)}
	return true, nil
}

// Release drops key if held, reporting whether it was held.
func (l *MemoryLocker) Release(ctx context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	existing, ok := l.locks[key]
	if !ok || existing.expired(time.Now()) {
		return false, nil
	}
	delete(l.locks, key)
	return true, nil
}

// Extend pushes out key's expiration by ttl from now, reporting whether it
// was held.
func (l *MemoryLocker) Extend(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	existing, ok := l.locks[key]
	if !ok || existing.expired(time.Now()) {
		return false, nil
	}
	l.locks[key] = heldLock{expires: time.Now().Add(ttl)}
	return true, nil
}

// IsHeld reports whether key is currently held and unexpired.
func (l *MemoryLocker) IsHeld(ctx context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	existing, ok := l.locks[key]
	return ok && !existing.expired(time.Now()), nil
}

// AcquireWithRetry calls Acquire up to maxRetries+1 times, sleeping
// retryInterval between attempts, until it succeeds, the context is
// cancelled, or retries are exhausted.
func (l *MemoryLocker) AcquireWithRetry(ctx context.Context, key string, ttl time.Duration, maxRetries int, retryInterval time.Duration) (bool, error) {
	for attempt := 0; ; attempt++ {
		acquired, err := l.Acquire(ctx, key, ttl)
		if err != nil {
			return false, err
		}
		if acquired {
			return true, nil
		}
		if attempt >= maxRetries {
			return false, nil
		}

		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-time.After(retryInterval):
		}
	}
}

var (
	_ repository.Locker = (*MemoryLocker)(nil)
	_ repository.Locker = (*NoOpLocker)(nil)
)
