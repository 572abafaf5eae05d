package preview

import (
	"sync/atomic"
	"time"

	"linkcard/internal/attachment"
	"linkcard/internal/contenttype"
	"linkcard/internal/logging"
	"linkcard/internal/metrics"
)

// Record is a link preview as persisted alongside a sent or received
// message. Optional fields are zero-valued when absent.
type Record struct {
	URL         string
	Title       string
	Description string
	Domain      string
	Date        time.Time
}

// SentState is a persisted preview whose image, if any, is a managed
// attachment resource that may itself still be downloading.
//
// The attachment's download state is snapshotted at construction: if it
// finishes downloading later, this instance keeps reporting loading and the
// caller reconstructs a fresh one to observe the change.
type SentState struct {
	record    Record
	image     ImageSource // nil when the preview has no image
	stream    ImageStream // nil until the attachment resolved at construction
	style     *ConversationStyle
	pixelSize atomic.Pointer[Size]
}

var _ State = (*SentState)(nil)

// NewSent wraps a persisted preview record and its optional image
// attachment. style is an opaque hint passed through to the renderer.
func NewSent(record Record, image ImageSource, style *ConversationStyle) *SentState {
	s := &SentState{
		record: record,
		image:  image,
		style:  style,
	}
	if image != nil {
		if stream, ok := image.Stream(); ok {
			s.stream = stream
		}
	}
	return s
}

// IsLoaded always returns true: persisted previews are complete by
// definition.
func (s *SentState) IsLoaded() bool { return true }

// URLString returns the persisted URL. A persisted preview without one is a
// contract violation.
func (s *SentState) URLString() string {
	if logging.DevErrorIf(s.record.URL == "", "sent preview is missing its url") {
		return ""
	}
	return s.record.URL
}

// DisplayDomain returns the persisted display domain, deriving it from the
// URL when the record did not store one.
func (s *SentState) DisplayDomain() string {
	if s.record.Domain != "" {
		return s.record.Domain
	}
	domain := displayDomainForURL(s.record.URL)
	logging.DevErrorIf(domain == "", "no display domain available for sent preview")
	return domain
}

// Title returns the persisted title, or "" when absent.
func (s *SentState) Title() string { return s.record.Title }

// Description returns the persisted description, or "" when absent.
func (s *SentState) Description() string { return s.record.Description }

// Date returns the persisted content date, or the zero time when absent.
func (s *SentState) Date() time.Time { return s.record.Date }

// ImageState derives the image's availability from the attachment snapshot:
// absent without a reference, loading until the reference resolved to a
// local stream, then loaded or invalid according to the stream's computed
// content type.
func (s *SentState) ImageState() ImageState {
	if s.image == nil {
		return ImageStateAbsent
	}
	if s.stream == nil {
		return ImageStateLoading
	}
	if s.stream.ComputeContentType().Kind.IsImage() {
		return ImageStateLoaded
	}
	return ImageStateInvalid
}

// ImagePixelSize converts the stream's stored dimension metadata to a Size.
// No decode happens here; the dimensions were recorded when the attachment
// was stored. The first conversion is kept with a compare-and-set so
// concurrent readers always observe one fully-formed value.
func (s *SentState) ImagePixelSize() Size {
	if s.ImageState() != ImageStateLoaded {
		logging.DevError("pixel size requested for sent preview without loaded image")
		return Size{}
	}
	if p := s.pixelSize.Load(); p != nil {
		return *p
	}

	ct := s.stream.ComputeContentType()
	if ct.Width <= 0 || ct.Height <= 0 {
		logging.Warn("attachment %s has degenerate stored dimensions %dx%d",
			s.image.ResourceID(), ct.Width, ct.Height)
		return Size{}
	}

	size := Size{Width: ct.Width, Height: ct.Height}
	if s.pixelSize.CompareAndSwap(nil, &size) {
		return size
	}
	return *s.pixelSize.Load()
}

// ImageAsync resolves a bitmap for the attachment on a background
// goroutine: animated content decodes in full at native resolution, static
// images go through the attachment's thumbnailer at the requested quality.
func (s *SentState) ImageAsync(quality attachment.ThumbnailQuality, cb func(Bitmap)) {
	if s.ImageState() != ImageStateLoaded {
		logging.DevError("image requested for sent preview without loaded image")
		return
	}
	stream := s.stream
	resourceID := s.image.ResourceID()
	dispatch(func() {
		start := time.Now()
		ct := stream.ComputeContentType()
		switch ct.Kind {
		case contenttype.KindAnimatedImage:
			g, err := stream.DecodeAnimated()
			metrics.ImageDecodeDuration.WithLabelValues("sent").Observe(time.Since(start).Seconds())
			if err != nil {
				metrics.ImageDecodesTotal.WithLabelValues("sent", "error").Inc()
				logging.Warn("failed to decode animated attachment %s: %v", resourceID, err)
				return
			}
			metrics.ImageDecodesTotal.WithLabelValues("sent", "success").Inc()
			cb(Bitmap{Image: g.Image[0], GIF: g})

		case contenttype.KindImage:
			img, err := stream.Thumbnail(quality)
			metrics.ImageDecodeDuration.WithLabelValues("sent").Observe(time.Since(start).Seconds())
			if err != nil {
				metrics.ImageDecodesTotal.WithLabelValues("sent", "error").Inc()
				logging.Warn("failed to thumbnail attachment %s at %s: %v", resourceID, quality, err)
				return
			}
			metrics.ImageDecodesTotal.WithLabelValues("sent", "success").Inc()
			cb(Bitmap{Image: img})

		default:
			logging.DevError("attachment %s resolved to non-image content type %s", resourceID, ct.Kind)
		}
	})
}

// ImageCacheKey keys sent lookups by the attachment's resource id. Returns
// no key when the preview has no attachment.
func (s *SentState) ImageCacheKey(quality attachment.ThumbnailQuality) (CacheKey, bool) {
	if s.image == nil {
		return CacheKey{}, false
	}
	return CacheKey{ResourceID: s.image.ResourceID(), Quality: quality}, true
}

// IsGroupInviteLink always returns false: persisted group-invite previews
// are represented at a higher layer.
func (s *SentState) IsGroupInviteLink() bool { return false }

// IsCallLink reports whether the persisted URL is a configured call link.
func (s *SentState) IsCallLink() bool {
	return IsCallLinkURL(s.record.URL)
}

// ActivityIndicatorStyle returns the shared default style.
func (s *SentState) ActivityIndicatorStyle() ActivityIndicatorStyle {
	return IndicatorDefault
}

// ConversationStyle returns the hint supplied at construction, possibly
// nil.
func (s *SentState) ConversationStyle() *ConversationStyle { return s.style }
