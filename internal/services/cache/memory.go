package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"
)

const (
	DefaultTTL           = 30 * time.Minute
	defaultSweepInterval = time.Minute
)

// MemoryCache is a size-bounded in-memory cache. When full it drops expired
// entries first, then the least recently read ones.
type MemoryCache struct {
	mu       sync.Mutex
	items    map[string]*cacheItem
	maxBytes int64
	size     int64

	hits      atomic.Int64
	misses    atomic.Int64
	sets      atomic.Int64
	deletes   atomic.Int64
	evictions atomic.Int64

	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

type cacheItem struct {
	value    []byte
	expiry   time.Time
	lastUsed time.Time
	size     int64
}

// NewMemoryCache creates a cache holding at most maxSizeMB megabytes; zero
// means unbounded. A background sweep drops expired entries until Stop.
func NewMemoryCache(maxSizeMB int64) *MemoryCache {
	return newMemoryCache(maxSizeMB*1024*1024, defaultSweepInterval)
}

func newMemoryCache(maxBytes int64, sweepInterval time.Duration) *MemoryCache {
	mc := &MemoryCache{
		items:    make(map[string]*cacheItem),
		maxBytes: maxBytes,
		stopCh:   make(chan struct{}),
	}

	mc.wg.Add(1)
	go mc.sweep(sweepInterval)
	return mc
}

func (mc *MemoryCache) Get(ctx context.Context, key string) ([]byte, bool) {
	now := time.Now()

	mc.mu.Lock()
	item, ok := mc.items[key]
	if ok && now.After(item.expiry) {
		mc.removeLocked(key, item)
		mc.evictions.Add(1)
		ok = false
	}
	if ok {
		item.lastUsed = now
	}
	mc.mu.Unlock()

	if !ok {
		mc.misses.Add(1)
		return nil, false
	}
	mc.hits.Add(1)
	return item.value, true
}

func (mc *MemoryCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	now := time.Now()
	item := &cacheItem{
		value:    value,
		expiry:   now.Add(ttl),
		lastUsed: now,
		size:     int64(len(key) + len(value)),
	}

	mc.mu.Lock()
	defer mc.mu.Unlock()

	if mc.maxBytes > 0 && item.size > mc.maxBytes {
		log.Debugf("Cache entry %s is larger than the cache, not storing", key)
		return nil
	}
	if old, exists := mc.items[key]; exists {
		mc.removeLocked(key, old)
	}
	mc.makeRoomLocked(item.size, now)

	mc.items[key] = item
	mc.size += item.size
	mc.sets.Add(1)
	return nil
}

func (mc *MemoryCache) Delete(ctx context.Context, key string) error {
	mc.mu.Lock()
	if item, exists := mc.items[key]; exists {
		mc.removeLocked(key, item)
		mc.deletes.Add(1)
	}
	mc.mu.Unlock()
	return nil
}

func (mc *MemoryCache) Clear(ctx context.Context) error {
	mc.mu.Lock()
	mc.items = make(map[string]*cacheItem)
	mc.size = 0
	mc.mu.Unlock()
	return nil
}

func (mc *MemoryCache) Has(ctx context.Context, key string) bool {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	item, exists := mc.items[key]
	return exists && time.Now().Before(item.expiry)
}

func (mc *MemoryCache) Stats() Stats {
	mc.mu.Lock()
	entries, size := len(mc.items), mc.size
	mc.mu.Unlock()

	return Stats{
		Hits:      mc.hits.Load(),
		Misses:    mc.misses.Load(),
		Sets:      mc.sets.Load(),
		Deletes:   mc.deletes.Load(),
		Evictions: mc.evictions.Load(),
		Entries:   entries,
		Size:      size,
		MaxSize:   mc.maxBytes,
	}
}

// Stop ends the background sweep; it is safe to call more than once
func (mc *MemoryCache) Stop() {
	mc.stopOnce.Do(func() {
		close(mc.stopCh)
	})
	mc.wg.Wait()
}

func (mc *MemoryCache) sweep(interval time.Duration) {
	defer mc.wg.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			mc.mu.Lock()
			mc.removeExpiredLocked(time.Now())
			mc.mu.Unlock()
		case <-mc.stopCh:
			return
		}
	}
}

func (mc *MemoryCache) removeLocked(key string, item *cacheItem) {
	delete(mc.items, key)
	mc.size -= item.size
}

func (mc *MemoryCache) removeExpiredLocked(now time.Time) {
	for key, item := range mc.items {
		if now.After(item.expiry) {
			mc.removeLocked(key, item)
			mc.evictions.Add(1)
		}
	}
}

// makeRoomLocked frees space for needed bytes
func (mc *MemoryCache) makeRoomLocked(needed int64, now time.Time) {
	if mc.maxBytes <= 0 || mc.size+needed <= mc.maxBytes {
		return
	}
	mc.removeExpiredLocked(now)

	for mc.size+needed > mc.maxBytes && len(mc.items) > 0 {
		var oldestKey string
		var oldest *cacheItem
		for key, item := range mc.items {
			if oldest == nil || item.lastUsed.Before(oldest.lastUsed) {
				oldestKey, oldest = key, item
			}
		}
		mc.removeLocked(oldestKey, oldest)
		mc.evictions.Add(1)
	}
}
