// Package cachestore holds aggregated responses between requests so repeat
// requests can short-circuit before re-running aggregation. The transport
// layer owns the choice of backend; both an in-process map and a Redis
// implementation are provided.
package cachestore

import (
	"context"
	"encoding/json"
	"time"
)

// Entry is one stored response. It is constructed fresh per response and
// only ever replayed verbatim.
type Entry struct {
	Key                  string          `json:"key"`
	ETag                 string          `json:"etag"`
	Payload              json.RawMessage `json:"payload"`
	MaxAgeSeconds        int             `json:"max_age_seconds"`
	StaleWhileRevalidate int             `json:"stale_while_revalidate_seconds"`
	Private              bool            `json:"private"`
	StoredAt             time.Time       `json:"stored_at"`
}

// Store is a TTL-bounded key/value store for response entries.
type Store interface {
	// Get returns the entry under key, or nil when absent or expired.
	Get(ctx context.Context, key string) (*Entry, error)
	// Set stores the entry under key for at most ttl.
	Set(ctx context.Context, key string, entry *Entry, ttl time.Duration) error
}
