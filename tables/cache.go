package tables

import (
	"sync"

	"github.com/accountrms/forecasting/forecast"
)

// =============================================================================
// CACHE - Read-through, keyed by table kind and path
// =============================================================================

// Cache loads each table once and serves the same immutable slice to every
// caller until invalidated. Failed loads are not cached.
type Cache struct {
	mu      sync.Mutex
	entries map[cacheKey]any
	loads   int
}

type cacheKey struct {
	kind string
	path string
}

func NewCache() *Cache {
	return &Cache{entries: make(map[cacheKey]any)}
}

func load[T any](c *Cache, kind, path string, fn func(string) (T, error)) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := cacheKey{kind: kind, path: path}
	if v, ok := c.entries[key]; ok {
		return v.(T), nil
	}

	v, err := fn(path)
	if err != nil {
		var zero T
		return zero, err
	}
	c.entries[key] = v
	c.loads++
	return v, nil
}

func (c *Cache) Yearly(path string) ([]forecast.MaterialYearlyRecord, error) {
	return load(c, "yearly", path, LoadYearly)
}

func (c *Cache) Reliability(path string) ([]forecast.ReliabilityRecord, error) {
	return load(c, "reliability", path, LoadReliability)
}

func (c *Cache) LeadTimes(path string) ([]forecast.LeadTimeBreakdown, error) {
	return load(c, "leadtime", path, LoadLeadTimes)
}

func (c *Cache) MaterialMaster(path string) ([]forecast.MaterialMaster, error) {
	return load(c, "master", path, LoadMaterialMaster)
}

func (c *Cache) StockValue(path string) (forecast.StockValue, error) {
	return load(c, "stockvalue", path, LoadStockValue)
}

// Invalidate drops every table loaded from path.
func (c *Cache) Invalidate(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.entries {
		if k.path == path {
			delete(c.entries, k)
		}
	}
}

func (c *Cache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[cacheKey]any)
}

// Loads counts successful file reads since creation.
func (c *Cache) Loads() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loads
}
