package bitmapcache

import (
	"fmt"
	"image"
	"testing"

	"linkcard/internal/attachment"
	"linkcard/internal/preview"
)

func testBitmap() preview.Bitmap {
	return preview.Bitmap{Image: image.NewRGBA(image.Rect(0, 0, 2, 2))}
}

func TestCacheAddGet(t *testing.T) {
	cache, err := New(4)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	key := preview.CacheKey{ResourceID: "r1", Quality: attachment.QualityMedium}
	if _, ok := cache.Get(key); ok {
		t.Fatal("empty cache should miss")
	}

	bitmap := testBitmap()
	cache.Add(key, bitmap)

	got, ok := cache.Get(key)
	if !ok {
		t.Fatal("expected a hit after Add")
	}
	if got.Image != bitmap.Image {
		t.Error("cached bitmap differs from stored bitmap")
	}
	if cache.Len() != 1 {
		t.Errorf("Len = %d, want 1", cache.Len())
	}
}

func TestCacheQualityKeysAreDistinct(t *testing.T) {
	cache, err := New(4)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	cache.Add(preview.CacheKey{ResourceID: "r1", Quality: attachment.QualitySmall}, testBitmap())

	if _, ok := cache.Get(preview.CacheKey{ResourceID: "r1", Quality: attachment.QualityLarge}); ok {
		t.Error("a different quality must be a different cache entry")
	}
}

func TestCacheEvictsOldest(t *testing.T) {
	cache, err := New(2)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	for i := 0; i < 3; i++ {
		key := preview.CacheKey{ResourceID: fmt.Sprintf("r%d", i)}
		cache.Add(key, testBitmap())
	}

	if cache.Len() != 2 {
		t.Errorf("Len = %d, want 2 after eviction", cache.Len())
	}
	if _, ok := cache.Get(preview.CacheKey{ResourceID: "r0"}); ok {
		t.Error("oldest entry should have been evicted")
	}
	if _, ok := cache.Get(preview.CacheKey{ResourceID: "r2"}); !ok {
		t.Error("newest entry should still be cached")
	}
}

func TestCachePurge(t *testing.T) {
	cache, err := New(4)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	cache.Add(preview.CacheKey{ResourceID: "r1"}, testBitmap())
	cache.Purge()
	if cache.Len() != 0 {
		t.Errorf("Len = %d after Purge, want 0", cache.Len())
	}
}

func TestCacheInvalidSize(t *testing.T) {
	for _, size := range []int{0, -1} {
		if _, err := New(size); err == nil {
			t.Errorf("New(%d) should fail", size)
		}
	}
}
