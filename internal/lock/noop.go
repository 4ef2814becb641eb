package lock

import (
	"context"
	"time"
)

// NoOpLocker satisfies the same interface as MemoryLocker but never
// actually serializes anything; every Acquire succeeds and IsHeld always
// reports false. It exists for callers that want the locker-shaped API
// (e.g. command-line single-shot invocations) without the bookkeeping cost.
type NoOpLocker struct{}

// NewNoOpLocker returns a NoOpLocker.
func NewNoOpLocker() *NoOpLocker {
	return &NoOpLocker{}
}

func (NoOpLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return true, nil
}

func (NoOpLocker) Release(ctx context.Context, key string) (bool, error) {
	return true, nil
}

func (NoOpLocker) Extend(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return true, nil
}

func (NoOpLocker) IsHeld(ctx context.Context, key string) (bool, error) {
	return false, nil
}

func (NoOpLocker) AcquireWithRetry(ctx context.Context, key string, ttl time.Duration, maxRetries int, retryInterval time.Duration) (bool, error) {
	return true, nil
}
