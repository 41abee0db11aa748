// Package cache implements the multi-tier cache envelope for StockPulse
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/bobmcallan/stockpulse/internal/common"
	"github.com/bobmcallan/stockpulse/internal/interfaces"
)

// Status classifies a cache lookup.
type Status int

const (
	Miss Status = iota
	Fresh
	Stale
)

// Entry wraps a payload with its storage time and freshness policy.
// Created on every successful upstream fetch, read-only after creation,
// superseded (never mutated) by a newer entry under the same key.
type Entry struct {
	Payload    json.RawMessage `json:"payload"`
	StoredAtMs int64           `json:"stored_at_epoch_ms"`
	TTLSeconds int             `json:"ttl_seconds"`
}

// Lookup is the result of a cache read.
type Lookup struct {
	Status  Status
	Payload json.RawMessage
	Age     time.Duration
}

// Decode unmarshals the looked-up payload into v.
func (l Lookup) Decode(v any) error {
	if l.Status == Miss {
		return fmt.Errorf("decode on cache miss")
	}
	return json.Unmarshal(l.Payload, v)
}

// Envelope reads and writes cache entries through the keyed store. Store
// errors are logged and treated as misses; cache availability is a
// courtesy, not a dependency.
type Envelope struct {
	store  interfaces.KeyedStore
	logger *common.Logger
	now    func() time.Time // injectable clock for testing
}

// NewEnvelope creates a cache envelope over the given store.
func NewEnvelope(store interfaces.KeyedStore, logger *common.Logger) *Envelope {
	return &Envelope{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// Read looks up key and classifies the entry as fresh or stale against its
// own TTL. Any store error, absent key, or undecodable entry is a miss.
func (e *Envelope) Read(ctx context.Context, key string) Lookup {
	raw, err := e.store.Get(ctx, key)
	if err != nil {
		if err != interfaces.ErrNotFound && err != interfaces.ErrStoreUnavailable {
			e.logger.Warn().Err(err).Str("key", key).Msg("Cache read failed, treating as miss")
		}
		return Lookup{Status: Miss}
	}

	var entry Entry
	if err := json.Unmarshal(raw, &entry); err != nil {
		e.logger.Warn().Err(err).Str("key", key).Msg("Undecodable cache entry, treating as miss")
		return Lookup{Status: Miss}
	}
	if entry.TTLSeconds <= 0 {
		return Lookup{Status: Miss}
	}

	age := e.now().Sub(time.UnixMilli(entry.StoredAtMs))
	status := Fresh
	if age >= time.Duration(entry.TTLSeconds)*time.Second {
		status = Stale
	}
	return Lookup{Status: status, Payload: entry.Payload, Age: age}
}

// Write stores v under key with the given freshness TTL. The entry is
// retained in the store past its TTL (StaleServeFactor) so the error path
// can still serve it stale. Store failures are logged and swallowed.
func (e *Envelope) Write(ctx context.Context, key string, v any, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("cache write requires ttl > 0, got %s", ttl)
	}

	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal cache payload for %s: %w", key, err)
	}

	entry := Entry{
		Payload:    payload,
		StoredAtMs: e.now().UnixMilli(),
		TTLSeconds: int(ttl.Seconds()),
	}
	raw, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry for %s: %w", key, err)
	}

	retention := ttl * common.StaleServeFactor
	if err := e.store.Set(ctx, key, raw, retention); err != nil {
		if err != interfaces.ErrStoreUnavailable {
			e.logger.Warn().Err(err).Str("key", key).Msg("Cache write failed")
		}
	}
	return nil
}

// Delete removes the entry under key. Used by portfolio mutations to
// invalidate derived history.
func (e *Envelope) Delete(ctx context.Context, key string) {
	if err := e.store.Delete(ctx, key); err != nil && err != interfaces.ErrStoreUnavailable {
		e.logger.Warn().Err(err).Str("key", key).Msg("Cache delete failed")
	}
}
