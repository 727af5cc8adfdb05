package cache

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// DefaultTTL is the entry lifetime used when a call does not override it.
const DefaultTTL = 1800 * time.Second

// Cache memoizes expensive computations behind a Store. Backend failures are
// logged and treated as misses or no-ops: caching is an optimization, never a
// correctness requirement, so the only errors that surface to callers are
// producer failures from GetOrCompute.
type Cache struct {
	store  Store
	ttl    time.Duration
	logger *zap.Logger

	hits   atomic.Int64
	misses atomic.Int64
}

// Option configures a Cache.
type Option func(*Cache)

// WithLogger sets the logger for backend failure reporting.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Cache) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithDefaultTTL overrides the default entry lifetime.
func WithDefaultTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// New creates a Cache over the given store.
func New(store Store, opts ...Option) *Cache {
	c := &Cache{
		store:  store,
		ttl:    DefaultTTL,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the cached value for key. Never-set, expired, and backend
// failure all come back as a miss.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool) {
	value, ok, err := c.store.Get(ctx, key)
	if err != nil {
		c.logger.Warn("cache get failed", zap.String("key", key), zap.Error(err))
		c.misses.Add(1)
		return nil, false
	}
	if !ok {
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	return value, true
}

// Set stores value under key for ttl (the default when ttl <= 0) and reports
// whether the store accepted it. Failures are logged, not propagated.
func (c *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) bool {
	if ttl <= 0 {
		ttl = c.ttl
	}
	if err := c.store.Set(ctx, key, value, ttl); err != nil {
		c.logger.Warn("cache set failed", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

// Delete removes the entry for key, best effort.
func (c *Cache) Delete(ctx context.Context, key string) bool {
	if err := c.store.Delete(ctx, key); err != nil {
		c.logger.Warn("cache delete failed", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

// Clear removes all entries, best effort.
func (c *Cache) Clear(ctx context.Context) bool {
	if err := c.store.Clear(ctx); err != nil {
		c.logger.Warn("cache clear failed", zap.Error(err))
		return false
	}
	c.logger.Info("cache cleared")
	return true
}

// GetOrCompute returns the cached value for key when present; otherwise it
// invokes producer once, stores the result (failure to store is swallowed),
// and returns it. A failing backend degrades to computing directly. Producer
// errors are the only errors that propagate.
func (c *Cache) GetOrCompute(ctx context.Context, key string, ttl time.Duration, producer func() ([]byte, error)) ([]byte, error) {
	if value, ok := c.Get(ctx, key); ok {
		return value, nil
	}

	c.logger.Debug("cache miss, computing", zap.String("key", key))
	value, err := producer()
	if err != nil {
		return nil, err
	}
	c.Set(ctx, key, value, ttl)
	return value, nil
}

// Stats is a snapshot of cache effectiveness counters.
type Stats struct {
	Hits       int64         `json:"hits"`
	Misses     int64         `json:"misses"`
	DefaultTTL time.Duration `json:"default_ttl"`
}

// Stats returns hit/miss counters accumulated since the cache was created.
func (c *Cache) Stats() Stats {
	return Stats{
		Hits:       c.hits.Load(),
		Misses:     c.misses.Load(),
		DefaultTTL: c.ttl,
	}
}

// CheckHealth verifies the backend with a set/get/delete round trip.
func (c *Cache) CheckHealth(ctx context.Context) bool {
	const key = "health:probe"
	if !c.Set(ctx, key, []byte("ok"), time.Minute) {
		return false
	}
	value, ok := c.Get(ctx, key)
	c.Delete(ctx, key)
	return ok && string(value) == "ok"
}

// Memoize is GetOrCompute with JSON encoding of the produced value. The
// second return reports whether the value came from the cache. A cached entry
// that no longer decodes is treated as a miss and recomputed.
func Memoize[T any](ctx context.Context, c *Cache, key string, ttl time.Duration, producer func() (T, error)) (T, bool, error) {
	var value T

	if encoded, ok := c.Get(ctx, key); ok {
		if err := json.Unmarshal(encoded, &value); err == nil {
			return value, true, nil
		}
		c.logger.Warn("cache entry undecodable, recomputing", zap.String("key", key))
	}

	value, err := producer()
	if err != nil {
		return value, false, err
	}

	if encoded, err := json.Marshal(value); err == nil {
		c.Set(ctx, key, encoded, ttl)
	} else {
		c.logger.Warn("cache value not serializable", zap.String("key", key), zap.Error(err))
	}
	return value, false, nil
}
