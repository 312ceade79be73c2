package cache

import (
	"context"
	"time"
)

// Cache stores opaque byte values under string keys
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	// Set stores value until ttl elapses; a non-positive ttl uses DefaultTTL
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
	Has(ctx context.Context, key string) bool
}

// Stats is a point-in-time snapshot of cache counters
type Stats struct {
	Hits      int64 `json:"hits"`
	Misses    int64 `json:"misses"`
	Sets      int64 `json:"sets"`
	Deletes   int64 `json:"deletes"`
	Evictions int64 `json:"evictions"`
	Entries   int   `json:"entries"`
	Size      int64 `json:"sizeBytes"`
	MaxSize   int64 `json:"maxSizeBytes"`
}

// StatsProvider is implemented by caches that keep counters
type StatsProvider interface {
	Stats() Stats
}
