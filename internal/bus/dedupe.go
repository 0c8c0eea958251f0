package bus

import (
	"sync"
	"time"
)

// DedupeCache is a TTL-based duplicate suppressor. The agent uses one to avoid
// announcing the same deleted post twice when the page re-renders before the
// node is actually gone.
//
// IsDuplicate returns true if the key has been seen within the TTL window.
// Entries expire after the TTL and are pruned lazily on each check.
type DedupeCache struct {
	mu      sync.Mutex
	entries map[string]int64 // key → unix millis
	ttl     time.Duration
	maxSize int
}

// NewDedupeCache creates a dedup cache with the given TTL and size cap.
func NewDedupeCache(ttl time.Duration, maxSize int) *DedupeCache {
	return &DedupeCache{
		entries: make(map[string]int64, 64),
		ttl:     ttl,
		maxSize: maxSize,
	}
}

// IsDuplicate returns true if key was already seen within the TTL window.
// If not a duplicate, records the key for future checks.
func (d *DedupeCache) IsDuplicate(key string) bool {
	now := time.Now().UnixMilli()
	cutoff := now - d.ttl.Milliseconds()

	d.mu.Lock()
	defer d.mu.Unlock()

	if ts, ok := d.entries[key]; ok && ts >= cutoff {
		return true
	}

	// Prune expired entries before inserting
	for k, ts := range d.entries {
		if ts < cutoff {
			delete(d.entries, k)
		}
	}

	// Size cap: evict the oldest entry
	if len(d.entries) >= d.maxSize {
		var oldestKey string
		oldest := int64(1<<63 - 1)
		for k, ts := range d.entries {
			if ts < oldest {
				oldest = ts
				oldestKey = k
			}
		}
		delete(d.entries, oldestKey)
	}

	d.entries[key] = now
	return false
}

// Len returns the number of live entries (including not-yet-pruned expired ones).
func (d *DedupeCache) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.entries)
}
