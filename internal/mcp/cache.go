package mcp

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

const (
	defaultCacheMaxSize = 256
	defaultCacheTTL     = 5 * time.Minute
)

// CacheConfig configures the retrieval result cache.
type CacheConfig struct {
	// MaxSize is the maximum number of entries in the LRU cache.
	MaxSize int
	// TTL is how long a cached retrieval remains valid.
	TTL time.Duration
}

// DefaultCacheConfig returns sensible defaults for retrieval caching.
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		MaxSize: defaultCacheMaxSize,
		TTL:     defaultCacheTTL,
	}
}

type cachedRetrieval struct {
	result  *Context
	expires time.Time
}

// retrievalCache memoizes per-domain fetches so repeated prompts on the same
// topic do not hammer the external sources.
type retrievalCache struct {
	entries *lru.Cache[string, cachedRetrieval]
	ttl     time.Duration
	now     func() time.Time
}

func newRetrievalCache(cfg CacheConfig) *retrievalCache {
	if cfg.MaxSize <= 0 {
		cfg.MaxSize = defaultCacheMaxSize
	}
	if cfg.TTL <= 0 {
		cfg.TTL = defaultCacheTTL
	}

	entries, err := lru.New[string, cachedRetrieval](cfg.MaxSize)
	if err != nil {
		// lru.New only fails on a non-positive size, which is normalized above.
		panic(err)
	}
	return &retrievalCache{
		entries: entries,
		ttl:     cfg.TTL,
		now:     time.Now,
	}
}

func cacheKey(domainID, query string) string {
	return domainID + "\x00" + query
}

func (c *retrievalCache) get(domainID, query string) (*Context, bool) {
	key := cacheKey(domainID, query)
	entry, ok := c.entries.Get(key)
	if !ok {
		return nil, false
	}
	if c.now().After(entry.expires) {
		c.entries.Remove(key)
		return nil, false
	}

	// Copy so callers cannot mutate the cached result.
	result := *entry.result
	return &result, true
}

func (c *retrievalCache) put(domainID, query string, result *Context) {
	stored := *result
	c.entries.Add(cacheKey(domainID, query), cachedRetrieval{
		result:  &stored,
		expires: c.now().Add(c.ttl),
	})
}
