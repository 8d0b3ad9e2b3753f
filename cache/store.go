package cache

import (
	"context"
	"time"
)

// Store is a byte-oriented key-value store with expiry.
//
// Implementations are safe for concurrent use. Get returns errs.ErrCacheMiss
// for absent or expired keys.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	// Set stores value under key. ttl <= 0 means no expiry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	// DeletePrefix removes every key starting with prefix and returns how many were removed.
	DeletePrefix(ctx context.Context, prefix string) (int, error)
	Close() error
}
