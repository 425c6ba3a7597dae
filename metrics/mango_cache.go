package metrics

import (
	"sync/atomic"
	"time"

	"github.com/goburrow/cache"
)

// statsCounter forwards cache statistics to a Client while keeping running
// totals for Snapshot.
type statsCounter struct {
	c    Client
	tags []string

	hits          uint64
	misses        uint64
	loadSuccesses uint64
	loadErrors    uint64
	loadTime      int64
	evictions     uint64
}

// NewMangoStatsCounter provides an adapter for github.com/goburrow/cache.StatsCounter
// over this packages Client.
func NewMangoStatsCounter(c Client, tags ...string) cache.StatsCounter {
	return &statsCounter{
		c:    c,
		tags: tags,
	}
}

// RecordHits records cache hits.
func (s *statsCounter) RecordHits(count uint64) {
	atomic.AddUint64(&s.hits, count)
	_ = s.c.Count("cache_hits", int64(count), s.tags)
}

// RecordMisses records cache misses.
func (s *statsCounter) RecordMisses(count uint64) {
	atomic.AddUint64(&s.misses, count)
	_ = s.c.Count("cache_misses", int64(count), s.tags)
}

// RecordLoadSuccess records successful load of a new entry.
func (s *statsCounter) RecordLoadSuccess(loadTime time.Duration) {
	atomic.AddUint64(&s.loadSuccesses, 1)
	atomic.AddInt64(&s.loadTime, int64(loadTime))
	_ = s.c.Timing("cache_loads", loadTime, s.tags)
}

// RecordLoadError records failed load of a new entry. Patterns that fail to
// compile end up here.
func (s *statsCounter) RecordLoadError(loadTime time.Duration) {
	atomic.AddUint64(&s.loadErrors, 1)
	atomic.AddInt64(&s.loadTime, int64(loadTime))
	_ = s.c.Timing("cache_load_errors", loadTime, s.tags)
}

// RecordEviction records eviction of an entry from the cache.
func (s *statsCounter) RecordEviction() {
	atomic.AddUint64(&s.evictions, 1)
	_ = s.c.Count("cache_evictions", 1, s.tags)
}

// Snapshot writes snapshot of this counter values to the given Stats pointer.
func (s *statsCounter) Snapshot(t *cache.Stats) {
	t.HitCount = atomic.LoadUint64(&s.hits)
	t.MissCount = atomic.LoadUint64(&s.misses)
	t.LoadSuccessCount = atomic.LoadUint64(&s.loadSuccesses)
	t.LoadErrorCount = atomic.LoadUint64(&s.loadErrors)
	t.TotalLoadTime = time.Duration(atomic.LoadInt64(&s.loadTime))
	t.EvictionCount = atomic.LoadUint64(&s.evictions)
}
