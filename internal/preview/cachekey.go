package preview

import (
	"encoding/hex"

	"golang.org/x/crypto/blake2b"

	"linkcard/internal/attachment"
)

// CacheKey identifies a decoded-image request for the rendering layer's
// bitmap cache. Exactly one of ResourceID (sent previews) or RawURL (draft
// previews) is populated. Keys are comparable: two keys are equal iff all
// three fields match, so a draft-origin key never collides with a
// sent-origin key even at the same quality.
//
// This package provides identity only; it never caches bitmaps itself.
type CacheKey struct {
	ResourceID string
	RawURL     string
	Quality    attachment.ThumbnailQuality
}

// IsZero reports whether the key carries no identity at all.
func (k CacheKey) IsZero() bool {
	return k.ResourceID == "" && k.RawURL == ""
}

// Digest returns a stable, filesystem-safe string form of the key for
// callers whose caches want string keys.
func (k CacheKey) Digest() string {
	sum := blake2b.Sum256([]byte(k.ResourceID + "\x00" + k.RawURL + "\x00" + k.Quality.String()))
	return hex.EncodeToString(sum[:16])
}
