// Package sqlite provides a modernc.org/sqlite-backed implementation of
// repository.Cache, used to persist parsed header metadata (algorithm,
// mode, auth scheme, container length) across CLI invocations so a bulk
// `nescient info` scan over many files doesn't re-open and re-parse
// containers it has already seen. It never stores anything
// password-derived or secret: values are the caller's already-serialized,
// non-secret metadata blobs.
package sqlite

import (
	"context"
	"database/sql"
	"time"

	_ "modernc.org/sqlite"

	"github.com/aarant/nescient/internal/repository"
)

// Cache is a SQLite-backed cache keyed by container path.
type Cache struct {
	db *sql.DB
}

// NewCache opens (creating if necessary) a SQLite database at path and
// prepares its schema.
func NewCache(path string) (*Cache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS cache_entries (
			key TEXT PRIMARY KEY,
			value BLOB NOT NULL,
			expires_at INTEGER NOT NULL
		)
	`); err != nil {
		db.Close()
		return nil, err
	}
	return &Cache{db: db}, nil
}

// noExpiry is stored as the expires_at sentinel for entries with no TTL.
const noExpiry int64 = 0

// Get returns the cached value for key, or repository.ErrCacheMiss if
// absent or expired.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	var expiresAt int64
	row := c.db.QueryRowContext(ctx, `SELECT value, expires_at FROM cache_entries WHERE key = ?`, key)
	if err := row.Scan(&value, &expiresAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, repository.ErrCacheMiss
		}
		return nil, err
	}
	if expiresAt != noExpiry && time.Now().UnixNano() > expiresAt {
		_, _ = c.db.ExecContext(ctx, `DELETE FROM cache_entries WHERE key = ?`, key)
		return nil, repository.ErrCacheMiss
	}
	return value, nil
}

// Set stores value under key with the given TTL. A zero TTL means no
// expiry.
func (c *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	expiresAt := noExpiry
	if ttl > 0 {
		expiresAt = time.Now().Add(ttl).UnixNano()
	}
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO cache_entries (key, value, expires_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, expires_at = excluded.expires_at
	`, key, value, expiresAt)
	return err
}

// Delete removes key if present.
func (c *Cache) Delete(ctx context.Context, key string) error {
	_, err := c.db.ExecContext(ctx, `DELETE FROM cache_entries WHERE key = ?`, key)
	return err
}

// Exists reports whether key is present and unexpired.
func (c *Cache) Exists(ctx context.Context, key string) (bool, error) {
	_, err := c.Get(ctx, key)
	if err == repository.ErrCacheMiss {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Stop closes the underlying database handle.
func (c *Cache) Stop() {
	c.db.Close()
}

var _ repository.Cache = (*Cache)(nil)
