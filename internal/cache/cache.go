// Package cache is a namespaced TTL store on top of a raw key/value backend.
// Expired entries are evicted lazily on Get; there is no background sweeper.
package cache

import (
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/matheuskafuri/folio/internal/fault"
	"github.com/matheuskafuri/folio/internal/metrics"
)

// DefaultNamespace prefixes every key owned by a Cache.
const DefaultNamespace = "portfolio_cache_"

type Cache struct {
	backend   Backend
	namespace string
	now       func() time.Time
	logger    *zap.Logger
}

type Option func(*Cache)

// WithClock replaces time.Now, mainly for simulated-time tests.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

func WithNamespace(ns string) Option {
	return func(c *Cache) { c.namespace = ns }
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *Cache) { c.logger = logger }
}

func New(backend Backend, opts ...Option) *Cache {
	c := &Cache{
		backend:   backend,
		namespace: DefaultNamespace,
		now:       time.Now,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Cache) Close() error {
	return c.backend.Close()
}

func (c *Cache) Backend() Backend {
	return c.backend
}

func (c *Cache) key(k string) string {
	return c.namespace + k
}

// Set stores data under key for ttl. Write failures are logged and dropped:
// the cache is an optimisation and never fails its caller.
func (c *Cache) Set(key string, data any, ttl time.Duration) {
	payload, err := json.Marshal(Entry[any]{Data: data, StoredAt: c.now(), TTL: ttl})
	if err != nil {
		c.logger.Warn("Failed to encode cache entry", zap.String("key", key), zap.Error(err))
		metrics.RecordCacheWriteError("encode")
		return
	}
	if err := c.backend.Store(c.key(key), payload); err != nil {
		c.logger.Warn("Failed to write cache entry", zap.String("key", key), zap.Error(err))
		metrics.RecordCacheWriteError("backend")
	}
}

// Get decodes the fresh entry for key into out. Expired and malformed
// entries are deleted and reported as absent.
func (c *Cache) Get(key string, out any) bool {
	switch c.lookup(key, out, true) {
	case Fresh:
		return true
	default:
		return false
	}
}

// Lookup is Get without evicting expired entries, which stay available as
// the stale-if-error tier.
func (c *Cache) Lookup(key string, out any) Status {
	return c.lookup(key, out, false)
}

// Peek decodes the stored entry for key regardless of its freshness.
func (c *Cache) Peek(key string, out any) bool {
	return c.lookup(key, out, false) != Miss
}

func (c *Cache) lookup(key string, out any, evictExpired bool) Status {
	entry, state := c.read(key)
	if state != readOK {
		metrics.RecordCacheLookup("miss")
		return Miss
	}

	if !entry.Fresh(c.now()) {
		if evictExpired {
			c.Clear(key)
			metrics.RecordCacheLookup("expired")
			return Miss
		}
	}

	if err := json.Unmarshal(entry.Data, out); err != nil {
		c.purge(key, fault.Malformed(err, key))
		return Miss
	}

	if entry.Fresh(c.now()) {
		metrics.RecordCacheLookup("fresh")
		return Fresh
	}
	metrics.RecordCacheLookup("stale")
	return Stale
}

type readState int

const (
	readOK readState = iota
	// readAbsent covers missing keys and backend errors; nothing was removed.
	readAbsent
	// readPurged means a malformed entry was found and removed.
	readPurged
)

// read loads and decodes the raw entry, purging it when it cannot be decoded.
func (c *Cache) read(key string) (Entry[json.RawMessage], readState) {
	var entry Entry[json.RawMessage]

	raw, ok, err := c.backend.Load(c.key(key))
	if err != nil {
		c.logger.Warn("Failed to read cache entry", zap.String("key", key), zap.Error(err))
		return entry, readAbsent
	}
	if !ok {
		return entry, readAbsent
	}

	if err := json.Unmarshal(raw, &entry); err != nil {
		return entry, c.purge(key, fault.Malformed(err, key))
	}
	if entry.StoredAt.IsZero() || len(entry.Data) == 0 {
		return entry, c.purge(key, fault.Malformed(fmt.Errorf("missing data or timestamp"), key))
	}
	return entry, readOK
}

func (c *Cache) purge(key string, err error) readState {
	c.logger.Warn("Dropping malformed cache entry", zap.String("key", key), zap.Error(err))
	metrics.RecordCacheLookup("malformed")
	if err := c.backend.Remove(c.key(key)); err != nil {
		c.logger.Warn("Failed to clear cache entry", zap.String("key", key), zap.Error(err))
		return readAbsent
	}
	return readPurged
}

func (c *Cache) Clear(key string) {
	if err := c.backend.Remove(c.key(key)); err != nil {
		c.logger.Warn("Failed to clear cache entry", zap.String("key", key), zap.Error(err))
	}
}

// ClearAll removes every entry in this cache's namespace and nothing else.
func (c *Cache) ClearAll() int {
	keys, err := c.backend.Keys(c.namespace)
	if err != nil {
		c.logger.Warn("Failed to list cache entries", zap.Error(err))
		return 0
	}
	removed := 0
	for _, k := range keys {
		if err := c.backend.Remove(k); err != nil {
			c.logger.Warn("Failed to clear cache entry", zap.String("key", k), zap.Error(err))
			continue
		}
		removed++
	}
	return removed
}

// Prune deletes expired and malformed entries. With olderThan > 0 it also
// deletes entries stored more than olderThan ago, fresh or not.
func (c *Cache) Prune(olderThan time.Duration) (int, error) {
	keys, err := c.backend.Keys(c.namespace)
	if err != nil {
		return 0, fmt.Errorf("listing entries: %w", err)
	}

	now := c.now()
	removed := 0
	for _, full := range keys {
		key := full[len(c.namespace):]
		entry, state := c.read(key)
		switch state {
		case readPurged:
			removed++
			continue
		case readAbsent:
			continue
		}
		expired := !entry.Fresh(now)
		tooOld := olderThan > 0 && now.Sub(entry.StoredAt) > olderThan
		if expired || tooOld {
			if err := c.backend.Remove(full); err != nil {
				return removed, fmt.Errorf("removing %s: %w", key, err)
			}
			removed++
		}
	}
	return removed, nil
}

func (c *Cache) Stats() (Stats, error) {
	keys, err := c.backend.Keys(c.namespace)
	if err != nil {
		return Stats{}, fmt.Errorf("listing entries: %w", err)
	}

	now := c.now()
	var s Stats
	for _, full := range keys {
		raw, ok, err := c.backend.Load(full)
		if err != nil || !ok {
			continue
		}
		s.Entries++
		var entry Entry[json.RawMessage]
		if err := json.Unmarshal(raw, &entry); err != nil || entry.StoredAt.IsZero() {
			s.Malformed++
			continue
		}
		if entry.Fresh(now) {
			s.Fresh++
		} else {
			s.Stale++
		}
	}
	return s, nil
}
