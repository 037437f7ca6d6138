package imageio

import (
	"context"
	"fmt"
	"os"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Stamp identifies one version of a file on disk. The zero Stamp means
// the file could not be read.
type Stamp struct {
	Size    int64
	ModTime int64
}

// StampFile stats path. Missing or unreadable files give the zero Stamp.
func StampFile(path string) Stamp {
	if path == "" {
		return Stamp{}
	}
	info, err := os.Stat(path)
	if err != nil {
		return Stamp{}
	}
	return Stamp{Size: info.Size(), ModTime: info.ModTime().UnixNano()}
}

type cacheEntry struct {
	data  *ImageData
	stamp Stamp
}

// Cache keeps decoded images keyed by path, invalidating an entry when
// the file's size or modification time changes. It holds at most limit
// entries and evicts the least recently used.
type Cache struct {
	entries *lru.Cache[string, *cacheEntry]

	mu     sync.Mutex
	hits   int
	misses int
}

// NewCache creates a cache holding up to limit decoded images.
func NewCache(limit int) *Cache {
	if limit < 1 {
		limit = 1
	}
	entries, err := lru.New[string, *cacheEntry](limit)
	if err != nil {
		// lru.New only fails for a non-positive size.
		panic(err)
	}
	return &Cache{entries: entries}
}

// Stamp reports the current on-disk version of path without decoding it.
func (c *Cache) Stamp(path string) Stamp {
	return StampFile(path)
}

// Load returns the cached image for path, decoding it when the file is
// new or has changed on disk.
func (c *Cache) Load(ctx context.Context, path string) (*ImageData, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat image: %w", err)
	}
	current := Stamp{Size: info.Size(), ModTime: info.ModTime().UnixNano()}

	if e, ok := c.entries.Get(path); ok && e.stamp == current {
		c.count(true)
		return e.data, nil
	}
	c.count(false)

	data, err := Load(ctx, path)
	if err != nil {
		return nil, err
	}

	c.entries.Add(path, &cacheEntry{
		data:  data,
		stamp: Stamp{Size: data.FileSize, ModTime: data.ModTime.UnixNano()},
	})
	return data, nil
}

func (c *Cache) count(hit bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if hit {
		c.hits++
	} else {
		c.misses++
	}
}

// Forget drops path from the cache.
func (c *Cache) Forget(path string) {
	c.entries.Remove(path)
}

// Clear drops every cached image.
func (c *Cache) Clear() {
	c.entries.Purge()
}

// CacheStats counts cache lookups since creation.
type CacheStats struct {
	Entries int
	Hits    int
	Misses  int
}

// Stats returns the current entry count and lookup counters.
func (c *Cache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return CacheStats{Entries: c.entries.Len(), Hits: c.hits, Misses: c.misses}
}
