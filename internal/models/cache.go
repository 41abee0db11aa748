package models

// CacheMeta describes how a response payload was produced. Attached to every
// cached derived-metric response envelope.
type CacheMeta struct {
	Cached     bool `json:"cached"`
	AgeSeconds int  `json:"cache_age_seconds,omitempty"`
	Stale      bool `json:"stale,omitempty"`
}
