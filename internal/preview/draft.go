package preview

import (
	"bytes"
	"sync/atomic"
	"time"

	"github.com/disintegration/imaging"

	"linkcard/internal/attachment"
	"linkcard/internal/imagemeta"
	"linkcard/internal/logging"
	"linkcard/internal/metrics"
)

// Draft is the metadata record produced by the URL fetch subsystem for a
// preview attached to an unsent message. Optional fields are zero-valued
// when absent. ImageData, when present, holds the complete raw image bytes:
// drafts are only constructed after the fetch (image included) finishes, so
// a draft image is never mid-download.
type Draft struct {
	URL         string
	Title       string
	Description string
	Domain      string // display domain; derived from URL when empty
	Date        time.Time
	ImageData   []byte
	ImageMime   string
}

// DraftState is a locally-drafted preview: metadata has arrived and any
// image bytes are fully in memory.
type DraftState struct {
	draft     Draft
	pixelSize atomic.Pointer[Size]
}

var _ State = (*DraftState)(nil)

// NewDraft wraps a fetched draft record. The record is treated as an
// immutable snapshot; callers must not mutate it afterwards.
func NewDraft(draft Draft) *DraftState {
	return &DraftState{draft: draft}
}

// probeDraftImage reads dimensions from raw draft bytes. Indirected so
// tests can count probe invocations.
var probeDraftImage = imagemeta.FromBytes

// IsLoaded always returns true: a draft exists only after its fetch
// completed.
func (s *DraftState) IsLoaded() bool { return true }

// URLString returns the draft's URL. A draft without a URL is a contract
// violation (the fetch subsystem always records one).
func (s *DraftState) URLString() string {
	if logging.DevErrorIf(s.draft.URL == "", "draft preview is missing its url") {
		return ""
	}
	return s.draft.URL
}

// DisplayDomain returns the recorded display domain, deriving it from the
// URL when the fetcher did not set one.
func (s *DraftState) DisplayDomain() string {
	if s.draft.Domain != "" {
		return s.draft.Domain
	}
	domain := displayDomainForURL(s.draft.URL)
	logging.DevErrorIf(domain == "", "no display domain available for draft preview")
	return domain
}

// Title returns the draft title, or "" when absent.
func (s *DraftState) Title() string { return s.draft.Title }

// Description returns the draft description, or "" when absent.
func (s *DraftState) Description() string { return s.draft.Description }

// Date returns the draft's content date, or the zero time when absent.
func (s *DraftState) Date() time.Time { return s.draft.Date }

// ImageState is loaded iff the draft carries image bytes, absent otherwise.
// Drafts never report loading (the fetch already finished) or invalid (the
// fetcher drops non-image payloads before constructing the draft).
func (s *DraftState) ImageState() ImageState {
	if len(s.draft.ImageData) > 0 {
		return ImageStateLoaded
	}
	return ImageStateAbsent
}

// ImagePixelSize returns the image's intrinsic dimensions, reading only the
// header. The first successful probe is stored with a compare-and-set so
// every later call, from any goroutine, observes the identical value.
func (s *DraftState) ImagePixelSize() Size {
	if s.ImageState() != ImageStateLoaded {
		logging.DevError("pixel size requested for draft preview without image")
		return Size{}
	}
	if p := s.pixelSize.Load(); p != nil {
		return *p
	}

	dims, err := probeDraftImage(s.draft.ImageData)
	if err != nil {
		logging.Warn("draft image dimensions unreadable: %v", err)
		return Size{}
	}

	size := Size{Width: dims.Width, Height: dims.Height}
	if s.pixelSize.CompareAndSwap(nil, &size) {
		return size
	}
	// Another goroutine won the race; return its (identical) value.
	return *s.pixelSize.Load()
}

// ImageAsync decodes the draft's raw bytes into a static bitmap on a
// background goroutine. The quality parameter is accepted for interface
// uniformity but not applied: draft images are local and small, so they are
// never thumbnailed.
func (s *DraftState) ImageAsync(quality attachment.ThumbnailQuality, cb func(Bitmap)) {
	if s.ImageState() != ImageStateLoaded {
		logging.DevError("image requested for draft preview without image")
		return
	}
	data := s.draft.ImageData
	dispatch(func() {
		start := time.Now()
		img, err := imaging.Decode(bytes.NewReader(data))
		metrics.ImageDecodeDuration.WithLabelValues("draft").Observe(time.Since(start).Seconds())
		if err != nil {
			metrics.ImageDecodesTotal.WithLabelValues("draft", "error").Inc()
			logging.Warn("failed to decode draft preview image: %v", err)
			return
		}
		metrics.ImageDecodesTotal.WithLabelValues("draft", "success").Inc()
		cb(Bitmap{Image: img})
	})
}

// ImageCacheKey keys draft lookups by raw URL; a draft has no attachment
// resource id. Returns no key when the draft lacks a URL.
func (s *DraftState) ImageCacheKey(quality attachment.ThumbnailQuality) (CacheKey, bool) {
	if s.draft.URL == "" {
		return CacheKey{}, false
	}
	return CacheKey{RawURL: s.draft.URL, Quality: quality}, true
}

// IsGroupInviteLink always returns false: drafted group-invite previews are
// represented at a higher layer.
func (s *DraftState) IsGroupInviteLink() bool { return false }

// IsCallLink reports whether the draft's URL is a configured call link.
func (s *DraftState) IsCallLink() bool {
	return IsCallLinkURL(s.draft.URL)
}

// ActivityIndicatorStyle returns the shared default style.
func (s *DraftState) ActivityIndicatorStyle() ActivityIndicatorStyle {
	return IndicatorDefault
}

// ConversationStyle returns nil; the hint only travels with sent previews.
func (s *DraftState) ConversationStyle() *ConversationStyle { return nil }
