// Package store persists small JSON records with a time to live.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"lobby/config"
)

// ErrNotFound is returned for keys that were never set, were deleted or have
// expired.
var ErrNotFound = errors.New("store: key not found")

// Store is a key-value store with per-entry expiry. A zero ttl keeps the entry
// until it is deleted.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock replaces time.Now for expiry checks of the memory and sqlite
// backends.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

func newOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Open returns the backend selected by cfg.Store.
func Open(ctx context.Context, cfg config.Config) (Store, error) {
	switch cfg.Store {
	case config.StoreMemory:
		return NewMemoryStore(), nil
	case config.StoreSQLite:
		return OpenSQLite(ctx, cfg.SQLitePath)
	case config.StoreRedis:
		return OpenRedis(ctx, cfg.RedisAddr)
	}
	return nil, fmt.Errorf("unknown store %q", cfg.Store)
}
