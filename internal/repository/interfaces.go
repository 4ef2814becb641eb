// Package repository defines the storage-agnostic interfaces satisfied by
// the in-process cache and lock implementations used to speed up and
// serialize repeated container operations (e.g. caching parsed header
// metadata, or guarding concurrent writes to the same output path).
package repository

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss is returned by Cache.Get when key is absent or has expired.
var ErrCacheMiss = errors.New("repository: cache miss")

// ErrLockNotHeld names the "lock not held" condition. The in-process
// lockers in internal/lock do not return it: their Extend and Release
// report a key that is not held as (false, nil).
var ErrLockNotHeld = errors.New("repository: lock not held")

// Cache is a byte-oriented key/value store with per-entry TTLs. A zero TTL
// passed to Set means the entry never expires on its own.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	Stop()
}

// Locker provides named, TTL-bounded mutual exclusion, used to serialize
// concurrent pack/unpack operations that target the same output path.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) (bool, error)
	Extend(ctx context.Context, key string, ttl time.Duration) (bool, error)
	IsHeld(ctx context.Context, key string) (bool, error)
	AcquireWithRetry(ctx context.Context, key string, ttl time.Duration, maxRetries int, retryInterval time.Duration) (bool, error)
}
