package attachment

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/sync/singleflight"

	"linkcard/internal/logging"
	"linkcard/internal/metrics"

	_ "image/gif"
	_ "image/png"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
)

// Thumbnailer generates bounded-size thumbnails for attachment payloads and
// caches the encoded results on disk. Concurrent requests for the same
// payload and quality are collapsed into a single generation.
type Thumbnailer struct {
	cacheDir string
	enabled  bool
	group    singleflight.Group
}

// NewThumbnailer creates a Thumbnailer writing its cache under cacheDir.
func NewThumbnailer(cacheDir string, enabled bool) *Thumbnailer {
	if enabled {
		logging.Debug("Thumbnailer: enabled, cache dir: %s", cacheDir)
		if err := os.MkdirAll(cacheDir, 0755); err != nil {
			logging.Warn("Thumbnailer: failed to create cache dir: %v", err)
		}
	} else {
		logging.Debug("Thumbnailer: disabled")
	}
	return &Thumbnailer{
		cacheDir: cacheDir,
		enabled:  enabled,
	}
}

// IsEnabled reports whether thumbnail generation is available.
func (t *Thumbnailer) IsEnabled() bool {
	return t.enabled
}

// cacheName derives the on-disk cache filename for a payload/quality pair.
func cacheName(resourceID string, quality ThumbnailQuality) string {
	sum := blake2b.Sum256([]byte(resourceID + "\x00" + quality.String()))
	return hex.EncodeToString(sum[:16]) + ".jpg"
}

// Generate produces a thumbnail for the stream bounded by the quality's
// maximum dimension. Payloads already smaller than the bound are returned
// at their native size.
func (t *Thumbnailer) Generate(s *Stream, quality ThumbnailQuality) (image.Image, error) {
	if !t.enabled {
		return nil, fmt.Errorf("thumbnails disabled")
	}

	if _, err := os.Stat(s.path); err != nil {
		return nil, fmt.Errorf("payload not accessible: %w", err)
	}

	cachePath := filepath.Join(t.cacheDir, cacheName(s.id, quality))
	if img, err := readCached(cachePath); err == nil {
		logging.Debug("Thumbnail cache hit: %s %s", s.id, quality)
		metrics.ThumbnailCacheHits.Inc()
		return img, nil
	}
	metrics.ThumbnailCacheMisses.Inc()

	v, err, _ := t.group.Do(cachePath, func() (interface{}, error) {
		// A concurrent caller may have populated the cache while we
		// waited on the flight group.
		if img, err := readCached(cachePath); err == nil {
			return img, nil
		}
		return t.generate(s, quality, cachePath)
	})
	if err != nil {
		return nil, err
	}
	return v.(image.Image), nil
}

func readCached(cachePath string) (image.Image, error) {
	data, err := os.ReadFile(cachePath)
	if err != nil {
		return nil, err
	}
	return imaging.Decode(bytes.NewReader(data))
}

func (t *Thumbnailer) generate(s *Stream, quality ThumbnailQuality, cachePath string) (image.Image, error) {
	start := time.Now()
	maxDim := quality.MaxDimension()
	logging.Debug("Thumbnail generating: %s (quality: %s, bound: %d)", s.id, quality, maxDim)

	var (
		img     image.Image
		err     error
		backend = "imaging"
	)

	if IsVipsAvailable() {
		img, err = vipsThumbnail(s.path, maxDim)
		if err == nil {
			backend = "vips"
		} else {
			logging.Debug("vips thumbnail failed for %s: %v, falling back to imaging", s.id, err)
		}
	}

	if img == nil {
		img, err = imaging.Open(s.path, imaging.AutoOrientation(true))
		if err != nil {
			return nil, fmt.Errorf("thumbnail decode failed: %w", err)
		}
		bounds := img.Bounds()
		if bounds.Dx() > maxDim || bounds.Dy() > maxDim {
			img = imaging.Fit(img, maxDim, maxDim, imaging.Lanczos)
		}
	}

	metrics.ThumbnailsGeneratedTotal.WithLabelValues(quality.String(), backend).Inc()
	metrics.ThumbnailDuration.WithLabelValues(quality.String()).Observe(time.Since(start).Seconds())

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 85}); err != nil {
		logging.Warn("Failed to encode thumbnail for cache %s: %v", cachePath, err)
		return img, nil
	}
	if err := os.WriteFile(cachePath, buf.Bytes(), 0644); err != nil {
		logging.Warn("Failed to cache thumbnail %s: %v", cachePath, err)
	} else {
		logging.Debug("Thumbnail cached: %s", cachePath)
	}

	return img, nil
}
