package metadata

import (
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// cachedExtraction is one cached processor read.
type cachedExtraction struct {
	values map[string]any
	built  time.Time
}

// ExtractCache memoizes processor reads by blob digest for a fixed TTL.
// Identical concurrent reads are collapsed into one processor invocation.
type ExtractCache struct {
	ttl     time.Duration
	mu      sync.RWMutex
	entries map[string]*cachedExtraction
	sf      singleflight.Group
	now     func() time.Time
}

// NewExtractCache creates a cache. It returns nil when ttl is not positive,
// which disables caching in the Invoker.
func NewExtractCache(ttl time.Duration) *ExtractCache {
	if ttl <= 0 {
		return nil
	}
	return &ExtractCache{
		ttl:     ttl,
		entries: make(map[string]*cachedExtraction),
		now:     time.Now,
	}
}

func (c *ExtractCache) expired(e *cachedExtraction) bool {
	return c.now().Sub(e.built) > c.ttl
}

// GetOrLoad returns the cached values for key or calls load to build them.
// The returned map is a copy owned by the caller.
func (c *ExtractCache) GetOrLoad(key string, load func() (map[string]any, error)) (map[string]any, error) {
	c.mu.RLock()
	entry, exists := c.entries[key]
	c.mu.RUnlock()

	if exists && !c.expired(entry) {
		return copyValues(entry.values), nil
	}

	result, err, _ := c.sf.Do(key, func() (interface{}, error) {
		// Another caller may have filled the entry while we waited.
		c.mu.RLock()
		entry, exists := c.entries[key]
		c.mu.RUnlock()
		if exists && !c.expired(entry) {
			return entry.values, nil
		}

		values, err := load()
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.entries[key] = &cachedExtraction{values: values, built: c.now()}
		c.mu.Unlock()
		return values, nil
	})
	if err != nil {
		return nil, err
	}
	return copyValues(result.(map[string]any)), nil
}

// Invalidate drops every entry.
func (c *ExtractCache) Invalidate() {
	c.mu.Lock()
	c.entries = make(map[string]*cachedExtraction)
	c.mu.Unlock()
}

// Len returns the number of entries, expired ones included.
func (c *ExtractCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func cacheKey(processorID string, blob *Blob, keys []string, ignorePrefix bool) string {
	sorted := append([]string(nil), keys...)
	sort.Strings(sorted)
	return processorID + "|" + blob.Digest() + "|" + strconv.FormatBool(ignorePrefix) + "|" + strings.Join(sorted, ",")
}

func copyValues(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
