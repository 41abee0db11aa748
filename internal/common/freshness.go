// Package common provides shared utilities for StockPulse
package common

import "time"

// Freshness TTLs per cached data kind
const (
	FreshnessHeatmap   = 10 * time.Minute
	FreshnessSentiment = 2 * time.Hour
	FreshnessDividends = 24 * time.Hour
	FreshnessPERatio   = 24 * time.Hour
	FreshnessRevenue   = 24 * time.Hour
	FreshnessSP500PE   = 1 * time.Hour
	FreshnessHistory   = 1 * time.Hour
	FreshnessTrending  = 5 * time.Minute
	FreshnessMemory    = 5 * time.Minute // in-process fallback tier
)

// StaleServeSentiment is the window during which an expired sentiment entry
// may still be served on the error path. Other kinds use StaleServeFactor.
const StaleServeSentiment = 4 * time.Hour

// StaleServeFactor scales a freshness TTL into a store retention window so
// expired entries remain readable for stale-on-error serving.
const StaleServeFactor = 4

// IsFresh returns true if the given timestamp is within the TTL
func IsFresh(updated time.Time, ttl time.Duration) bool {
	if updated.IsZero() {
		return false
	}
	return time.Since(updated) < ttl
}
