// Package interfaces defines the service and storage contracts for StockPulse
package interfaces

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by store reads when the key or field is absent.
var ErrNotFound = errors.New("not found")

// ErrStoreUnavailable is returned when no persistent store is configured or
// the connection probe failed. Callers treat it the same as a miss.
var ErrStoreUnavailable = errors.New("store unavailable")

// KeyedStore is the uniform adapter over the remote key-value store.
// Single-key operations are atomic at the store level. Multi-key sequences
// (e.g. user record + username index) are not transactional; a crash between
// the two leaves them inconsistent. Known risk, accepted.
type KeyedStore interface {
	// Available reports whether a store connection is configured and the
	// startup probe succeeded. When false, all operations return
	// ErrStoreUnavailable and the service degrades to recompute-always.
	Available() bool

	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error

	// Hash-record operations for per-user records.
	HGet(ctx context.Context, key, field string) ([]byte, error)
	HSet(ctx context.Context, key, field string, value []byte) error
	HDel(ctx context.Context, key string, fields ...string) error
	HGetAll(ctx context.Context, key string) (map[string][]byte, error)

	// Set-membership operations for registration and uniqueness indexes.
	SAdd(ctx context.Context, key string, members ...string) error
	SRem(ctx context.Context, key string, members ...string) error
	SMembers(ctx context.Context, key string) ([]string, error)
	SIsMember(ctx context.Context, key, member string) (bool, error)

	Close() error
}
