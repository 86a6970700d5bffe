package model3d

import "sync"

// Cache memoizes loaded models by path. A loaded Model is an
// immutable snapshot, so one cached instance can be shared by any
// number of readers.
type Cache struct {
	mu     sync.Mutex
	models map[string]*Model

	// Stats
	hits   int
	misses int
}

// NewCache creates an empty model cache.
func NewCache() *Cache {
	return &Cache{
		models: make(map[string]*Model),
	}
}

// Load returns the cached model for path, loading and caching it on
// first use. Load failures are never cached, a later call retries.
// Concurrent first loads of the same path may parse it more than
// once; the last result wins.
func (c *Cache) Load(path string) (*Model, error) {
	if model, ok := c.Get(path); ok {
		return model, nil
	}

	model, err := Load(path)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.models[path] = model
	c.mu.Unlock()
	return model, nil
}

// Get retrieves a cached model without loading.
func (c *Cache) Get(path string) (*Model, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	model, ok := c.models[path]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return model, ok
}

// Purge empties the cache and resets the statistics.
func (c *Cache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.models = make(map[string]*Model)
	c.hits = 0
	c.misses = 0
}

// Len returns the number of cached models.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.models)
}

// Stats returns cache hit and miss counts.
func (c *Cache) Stats() (hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}
