package memstore

import (
	"sort"
	"sync"

	"fngroup/internal/domain"
	"fngroup/internal/port"
)

// MemoryCache is a GenCache that lives for one process.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]domain.CacheEntry
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]domain.CacheEntry)}
}

func (c *MemoryCache) Get(sourcePath string) (domain.CacheEntry, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[sourcePath]
	return entry, ok, nil
}

func (c *MemoryCache) Put(entry domain.CacheEntry) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[entry.SourcePath] = entry
	return nil
}

func (c *MemoryCache) Delete(sourcePath string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, sourcePath)
	return nil
}

func (c *MemoryCache) List() ([]domain.CacheEntry, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entries := make([]domain.CacheEntry, 0, len(c.entries))
	for _, e := range c.entries {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].SourcePath < entries[j].SourcePath })
	return entries, nil
}

func (c *MemoryCache) Close() error {
	return nil
}

var _ port.GenCache = (*MemoryCache)(nil)
