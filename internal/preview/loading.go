package preview

import (
	"time"

	"linkcard/internal/attachment"
	"linkcard/internal/logging"
)

// LoadingState is a preview whose metadata has not arrived yet. It carries
// only the link type; every content field is empty, and asking it for image
// data is a contract violation.
type LoadingState struct {
	linkType LinkType
}

var _ State = (*LoadingState)(nil)

// NewLoading constructs a loading preview for the given link type.
func NewLoading(linkType LinkType) *LoadingState {
	return &LoadingState{linkType: linkType}
}

// LinkType returns the link type the preview was constructed with.
func (s *LoadingState) LinkType() LinkType {
	return s.linkType
}

// IsLoaded always returns false for a loading preview.
func (s *LoadingState) IsLoaded() bool { return false }

// URLString returns "": a loading preview has no metadata yet.
func (s *LoadingState) URLString() string { return "" }

// DisplayDomain returns "".
func (s *LoadingState) DisplayDomain() string { return "" }

// Title returns "".
func (s *LoadingState) Title() string { return "" }

// Description returns "".
func (s *LoadingState) Description() string { return "" }

// Date returns the zero time.
func (s *LoadingState) Date() time.Time { return time.Time{} }

// ImageState is always absent: there is no image data to classify yet.
func (s *LoadingState) ImageState() ImageState { return ImageStateAbsent }

// ImageAsync is a contract violation on a loading preview. The callback is
// never invoked.
func (s *LoadingState) ImageAsync(quality attachment.ThumbnailQuality, cb func(Bitmap)) {
	logging.DevError("image requested for a still-loading preview")
}

// ImageCacheKey returns no key: a loading preview has no identity to cache
// by.
func (s *LoadingState) ImageCacheKey(quality attachment.ThumbnailQuality) (CacheKey, bool) {
	return CacheKey{}, false
}

// ImagePixelSize is a contract violation on a loading preview; it returns
// the zero sentinel.
func (s *LoadingState) ImagePixelSize() Size {
	logging.DevError("pixel size requested for a still-loading preview")
	return Size{}
}

// IsGroupInviteLink reports whether the preview was constructed with one of
// the group-invite link types.
func (s *LoadingState) IsGroupInviteLink() bool {
	return s.linkType.isGroupInvite()
}

// IsCallLink returns false: a loading preview has no URL to classify.
func (s *LoadingState) IsCallLink() bool { return false }

// ActivityIndicatorStyle returns the muted indicator for group-invite
// loading states and the shared default otherwise.
func (s *LoadingState) ActivityIndicatorStyle() ActivityIndicatorStyle {
	if s.linkType.isGroupInvite() {
		return IndicatorGray
	}
	return IndicatorDefault
}

// ConversationStyle returns nil.
func (s *LoadingState) ConversationStyle() *ConversationStyle { return nil }
