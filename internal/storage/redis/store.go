// Package redis implements the KeyedStore adapter over a Redis instance.
package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/bobmcallan/stockpulse/internal/common"
	"github.com/bobmcallan/stockpulse/internal/interfaces"
)

const probeTimeout = 2 * time.Second

// Store adapts go-redis to the KeyedStore contract. When no address is
// configured or the startup probe fails, the store stays in unavailable
// mode and every operation returns ErrStoreUnavailable so callers degrade
// to recompute-always.
type Store struct {
	client    *redis.Client
	available bool
	logger    *common.Logger
}

// New creates a store from config and probes the connection once.
func New(cfg common.RedisConfig, logger *common.Logger) *Store {
	s := &Store{logger: logger}

	if cfg.Addr == "" {
		logger.Warn().Msg("No Redis address configured, running without persistent cache")
		return s
	}

	s.client = redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()
	if err := s.client.Ping(ctx).Err(); err != nil {
		logger.Warn().Err(err).Str("addr", cfg.Addr).Msg("Redis probe failed, running without persistent cache")
		return s
	}

	s.available = true
	logger.Info().Str("addr", cfg.Addr).Int("db", cfg.DB).Msg("Connected to Redis")
	return s
}

// Available reports whether the startup probe succeeded.
func (s *Store) Available() bool {
	return s.available
}

// Get returns the value at key, or ErrNotFound.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	if !s.available {
		return nil, interfaces.ErrStoreUnavailable
	}
	b, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, mapErr(err)
	}
	return b, nil
}

// Set stores value at key with an expiry. A zero ttl means no expiry.
func (s *Store) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if !s.available {
		return interfaces.ErrStoreUnavailable
	}
	return s.client.Set(ctx, key, value, ttl).Err()
}

// Delete removes key.
func (s *Store) Delete(ctx context.Context, key string) error {
	if !s.available {
		return interfaces.ErrStoreUnavailable
	}
	return s.client.Del(ctx, key).Err()
}

// HGet returns a hash field, or ErrNotFound.
func (s *Store) HGet(ctx context.Context, key, field string) ([]byte, error) {
	if !s.available {
		return nil, interfaces.ErrStoreUnavailable
	}
	b, err := s.client.HGet(ctx, key, field).Bytes()
	if err != nil {
		return nil, mapErr(err)
	}
	return b, nil
}

// HSet writes a hash field.
func (s *Store) HSet(ctx context.Context, key, field string, value []byte) error {
	if !s.available {
		return interfaces.ErrStoreUnavailable
	}
	return s.client.HSet(ctx, key, field, value).Err()
}

// HDel removes hash fields.
func (s *Store) HDel(ctx context.Context, key string, fields ...string) error {
	if !s.available {
		return interfaces.ErrStoreUnavailable
	}
	return s.client.HDel(ctx, key, fields...).Err()
}

// HGetAll returns all fields of a hash. An absent key yields an empty map.
func (s *Store) HGetAll(ctx context.Context, key string) (map[string][]byte, error) {
	if !s.available {
		return nil, interfaces.ErrStoreUnavailable
	}
	m, err := s.client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, mapErr(err)
	}
	out := make(map[string][]byte, len(m))
	for k, v := range m {
		out[k] = []byte(v)
	}
	return out, nil
}

// SAdd adds members to a set.
func (s *Store) SAdd(ctx context.Context, key string, members ...string) error {
	if !s.available {
		return interfaces.ErrStoreUnavailable
	}
	args := make([]interface{}, len(members))
	for i, m := range members {
		args[i] = m
	}
	return s.client.SAdd(ctx, key, args...).Err()
}

// SRem removes members from a set.
func (s *Store) SRem(ctx context.Context, key string, members ...string) error {
	if !s.available {
		return interfaces.ErrStoreUnavailable
	}
	args := make([]interface{}, len(members))
	for i, m := range members {
		args[i] = m
	}
	return s.client.SRem(ctx, key, args...).Err()
}

// SMembers returns all members of a set.
func (s *Store) SMembers(ctx context.Context, key string) ([]string, error) {
	if !s.available {
		return nil, interfaces.ErrStoreUnavailable
	}
	members, err := s.client.SMembers(ctx, key).Result()
	if err != nil {
		return nil, mapErr(err)
	}
	return members, nil
}

// SIsMember reports set membership.
func (s *Store) SIsMember(ctx context.Context, key, member string) (bool, error) {
	if !s.available {
		return false, interfaces.ErrStoreUnavailable
	}
	ok, err := s.client.SIsMember(ctx, key, member).Result()
	if err != nil {
		return false, mapErr(err)
	}
	return ok, nil
}

// Close releases the underlying connection.
func (s *Store) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Close()
}

func mapErr(err error) error {
	if errors.Is(err, redis.Nil) {
		return interfaces.ErrNotFound
	}
	return err
}

// Ensure Store implements KeyedStore
var _ interfaces.KeyedStore = (*Store)(nil)
