package deps

import (
	"context"
	"encoding/json"
	"time"

	"github.com/matzehuels/stacksolve/pkg/cache"
	"github.com/matzehuels/stacksolve/pkg/observability"
)

// Cached wraps a Store and remembers successful lookups in a cache.Cache.
// Failures are never cached, so a transient error is retried on the next
// call.
type Cached struct {
	inner  Store
	cache  cache.Cache
	keyer  cache.Keyer
	ttl    time.Duration
	source string
}

// NewCached decorates inner. A nil keyer uses cache.NewDefaultKeyer and a
// zero ttl uses [DefaultCacheTTL].
func NewCached(inner Store, c cache.Cache, keyer cache.Keyer, ttl time.Duration) *Cached {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Cached{inner: inner, cache: c, keyer: keyer, ttl: ttl, source: SourceName(inner)}
}

// Name reports the wrapped store's name.
func (c *Cached) Name() string { return c.source }

// Metadata returns cached metadata or fetches and caches it.
func (c *Cached) Metadata(ctx context.Context, name string) (*Metadata, error) {
	var m Metadata
	key := c.keyer.MetadataKey(c.source, name)
	if c.load(ctx, key, "metadata", &m) {
		return &m, nil
	}
	fresh, err := c.inner.Metadata(ctx, name)
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, "metadata", fresh)
	return fresh, nil
}

// Dependencies returns cached dependencies or fetches and caches them.
func (c *Cached) Dependencies(ctx context.Context, name string) ([]string, error) {
	var deps []string
	key := c.keyer.DependenciesKey(c.source, name)
	if c.load(ctx, key, "dependencies", &deps) {
		return deps, nil
	}
	fresh, err := c.inner.Dependencies(ctx, name)
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, "dependencies", fresh)
	return fresh, nil
}

func (c *Cached) load(ctx context.Context, key, keyType string, v any) bool {
	data, hit, err := c.cache.Get(ctx, key)
	if err != nil || !hit || json.Unmarshal(data, v) != nil {
		observability.Cache().OnCacheMiss(ctx, keyType)
		return false
	}
	observability.Cache().OnCacheHit(ctx, keyType)
	return true
}

func (c *Cached) store(ctx context.Context, key, keyType string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if c.cache.Set(ctx, key, data, c.ttl) == nil {
		observability.Cache().OnCacheSet(ctx, keyType, len(data))
	}
}

var _ Store = (*Cached)(nil)
