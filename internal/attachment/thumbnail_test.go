package attachment

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestThumbnailBoundsLargeImage(t *testing.T) {
	store := newTestStore(t)

	ref, err := store.CreateFromBytes(context.Background(), encodePNG(t, 1000, 600), "")
	if err != nil {
		t.Fatalf("CreateFromBytes failed: %v", err)
	}
	stream, ok := ref.Stream()
	if !ok {
		t.Fatal("stored attachment should resolve immediately")
	}

	img, err := stream.Thumbnail(QualitySmall)
	if err != nil {
		t.Fatalf("Thumbnail failed: %v", err)
	}

	bounds := img.Bounds()
	if bounds.Dx() > 256 || bounds.Dy() > 256 {
		t.Errorf("thumbnail = %dx%d, want both edges <= 256", bounds.Dx(), bounds.Dy())
	}
	// Fit preserves aspect ratio: 1000x600 bounded by 256 lands on 256x153.
	if bounds.Dx() != 256 {
		t.Errorf("thumbnail width = %d, want 256", bounds.Dx())
	}
}

func TestThumbnailNeverUpscales(t *testing.T) {
	store := newTestStore(t)

	ref, err := store.CreateFromBytes(context.Background(), encodePNG(t, 40, 30), "")
	if err != nil {
		t.Fatalf("CreateFromBytes failed: %v", err)
	}
	stream, ok := ref.Stream()
	if !ok {
		t.Fatal("stored attachment should resolve immediately")
	}

	img, err := stream.Thumbnail(QualityLarge)
	if err != nil {
		t.Fatalf("Thumbnail failed: %v", err)
	}
	bounds := img.Bounds()
	if bounds.Dx() != 40 || bounds.Dy() != 30 {
		t.Errorf("thumbnail = %dx%d, want native 40x30", bounds.Dx(), bounds.Dy())
	}
}

func TestThumbnailCachedOnDisk(t *testing.T) {
	store := newTestStore(t)

	ref, err := store.CreateFromBytes(context.Background(), encodePNG(t, 800, 800), "")
	if err != nil {
		t.Fatalf("CreateFromBytes failed: %v", err)
	}
	stream, ok := ref.Stream()
	if !ok {
		t.Fatal("stored attachment should resolve immediately")
	}

	if _, err := stream.Thumbnail(QualitySmall); err != nil {
		t.Fatalf("Thumbnail failed: %v", err)
	}

	cachePath := filepath.Join(store.thumbs.cacheDir, cacheName(stream.id, QualitySmall))
	if _, err := os.Stat(cachePath); err != nil {
		t.Fatalf("cache file missing after generation: %v", err)
	}

	// Second request must succeed from the cached encoding.
	img, err := stream.Thumbnail(QualitySmall)
	if err != nil {
		t.Fatalf("cached Thumbnail failed: %v", err)
	}
	if img.Bounds().Dx() > 256 || img.Bounds().Dy() > 256 {
		t.Errorf("cached thumbnail exceeds bound: %v", img.Bounds())
	}
}

func TestThumbnailDisabled(t *testing.T) {
	thumbs := NewThumbnailer(t.TempDir(), false)
	if thumbs.IsEnabled() {
		t.Fatal("thumbnailer should report disabled")
	}
	if _, err := thumbs.Generate(&Stream{id: "x", path: "nope"}, QualitySmall); err == nil {
		t.Error("disabled thumbnailer should return an error")
	}
}

func TestCacheNameDistinctPerQuality(t *testing.T) {
	a := cacheName("res-1", QualitySmall)
	b := cacheName("res-1", QualityLarge)
	c := cacheName("res-2", QualitySmall)
	if a == b || a == c {
		t.Errorf("cache names should differ: %q %q %q", a, b, c)
	}
	if filepath.Ext(a) != ".jpg" {
		t.Errorf("cache name extension = %q, want .jpg", filepath.Ext(a))
	}
}

func TestQualityMaxDimension(t *testing.T) {
	tests := []struct {
		quality ThumbnailQuality
		want    int
	}{
		{QualitySmall, 256},
		{QualityMedium, 512},
		{QualityMediumLarge, 1024},
		{QualityLarge, 2048},
		{ThumbnailQuality(99), 512},
	}
	for _, tt := range tests {
		if got := tt.quality.MaxDimension(); got != tt.want {
			t.Errorf("%v.MaxDimension() = %d, want %d", tt.quality, got, tt.want)
		}
	}
}

func TestParseQuality(t *testing.T) {
	tests := []struct {
		in   string
		want ThumbnailQuality
	}{
		{"small", QualitySmall},
		{"medium", QualityMedium},
		{"mediumLarge", QualityMediumLarge},
		{"medium-large", QualityMediumLarge},
		{"large", QualityLarge},
		{"", QualityMedium},
		{"bogus", QualityMedium},
	}
	for _, tt := range tests {
		if got := ParseQuality(tt.in); got != tt.want {
			t.Errorf("ParseQuality(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
