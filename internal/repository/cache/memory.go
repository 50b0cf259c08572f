package cache

import "sync"

// MemoryCache is a bounded in-process tile cache. Eviction is by insertion
// order, not access order: once the entry count exceeds maxTiles the
// oldest-inserted entries are dropped until the cache is back at the limit.
// Contents are lost on process restart.
type MemoryCache struct {
	mu       sync.Mutex
	maxTiles int
	items    map[string]TileCacheValue
	order    []string
}

var _ TileCache = (*MemoryCache)(nil)

func NewMemoryCache(maxTiles int) *MemoryCache {
	if maxTiles < 1 {
		maxTiles = 1
	}
	return &MemoryCache{
		maxTiles: maxTiles,
		items:    make(map[string]TileCacheValue),
	}
}

func (c *MemoryCache) Get(key string) (TileCacheValue, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	v, exists := c.items[key]
	return v, exists, nil
}

func (c *MemoryCache) Set(key string, v TileCacheValue) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.items[key]; !exists {
		c.order = append(c.order, key)
	}
	c.items[key] = v

	for len(c.items) > c.maxTiles {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.items, oldest)
	}

	return nil
}

func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}
