package cache

import (
	"context"
	"time"
)

// ServeStale attempts the last known entry under key regardless of TTL.
// Used by the error path after an upstream or compute failure: degradation
// order is fresh, stale, static default, explicit error. The store's
// retention window bounds how old a stale entry can get.
func (e *Envelope) ServeStale(ctx context.Context, key string) (Lookup, bool) {
	l := e.Read(ctx, key)
	if l.Status == Miss {
		return Lookup{Status: Miss}, false
	}
	return l, true
}

// ServeStaleWithin behaves like ServeStale but rejects entries older than
// the given window. Sentiment uses a 4-hour stale-serve window over its
// 2-hour freshness TTL.
func (e *Envelope) ServeStaleWithin(ctx context.Context, key string, window time.Duration) (Lookup, bool) {
	l, ok := e.ServeStale(ctx, key)
	if !ok || l.Age >= window {
		return Lookup{Status: Miss}, false
	}
	return l, true
}
