package bitmapcache

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"linkcard/internal/metrics"
	"linkcard/internal/preview"
)

// Cache is an in-memory LRU of decoded bitmaps keyed by preview cache keys.
// The preview layer hands out identity only; holding onto the decoded
// pixels is the renderer's job, and this is that renderer-side store.
type Cache struct {
	lru *lru.Cache[preview.CacheKey, preview.Bitmap]
}

// New creates a Cache holding at most size bitmaps.
func New(size int) (*Cache, error) {
	if size <= 0 {
		return nil, fmt.Errorf("cache size must be positive, got %d", size)
	}
	inner, err := lru.NewWithEvict(size, func(preview.CacheKey, preview.Bitmap) {
		metrics.BitmapCacheEvictions.Inc()
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create bitmap cache: %w", err)
	}
	return &Cache{lru: inner}, nil
}

// Get returns the cached bitmap for key, if present.
func (c *Cache) Get(key preview.CacheKey) (preview.Bitmap, bool) {
	bitmap, ok := c.lru.Get(key)
	if ok {
		metrics.BitmapCacheHits.Inc()
	} else {
		metrics.BitmapCacheMisses.Inc()
	}
	return bitmap, ok
}

// Add stores a bitmap under key, evicting the least recently used entry if
// the cache is full.
func (c *Cache) Add(key preview.CacheKey, bitmap preview.Bitmap) {
	c.lru.Add(key, bitmap)
}

// Len returns the number of cached bitmaps.
func (c *Cache) Len() int {
	return c.lru.Len()
}

// Purge drops every cached bitmap.
func (c *Cache) Purge() {
	c.lru.Purge()
}
