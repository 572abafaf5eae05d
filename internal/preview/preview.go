package preview

import (
	"image"
	"image/gif"
	"net/url"
	"strings"
	"sync"
	"time"

	"linkcard/internal/attachment"
	"linkcard/internal/contenttype"
	"linkcard/internal/workers"
)

// ImageState describes whether a preview's image is ready to decode.
type ImageState int

const (
	// ImageStateAbsent means no image is associated with the preview.
	ImageStateAbsent ImageState = iota
	// ImageStateLoading means an image is expected but its bytes are not
	// yet available.
	ImageStateLoading
	// ImageStateLoaded means bytes are available and decodable as an image.
	ImageStateLoaded
	// ImageStateInvalid means bytes are available but are not a decodable
	// image content type.
	ImageStateInvalid
)

// String returns the string representation of an image state.
func (s ImageState) String() string {
	switch s {
	case ImageStateAbsent:
		return "absent"
	case ImageStateLoading:
		return "loading"
	case ImageStateLoaded:
		return "loaded"
	case ImageStateInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// LinkType records why a loading preview exists. It is only meaningful for
// the loading variant, where it drives the group-invite flag and the
// activity indicator hint.
type LinkType int

const (
	// LinkTypePreview is a preview being composed.
	LinkTypePreview LinkType = iota
	// LinkTypeIncomingMessage is a preview on a received message.
	LinkTypeIncomingMessage
	// LinkTypeOutgoingMessage is a preview on an outgoing message.
	LinkTypeOutgoingMessage
	// LinkTypeIncomingMessageGroupInvite is a group invite link on a
	// received message.
	LinkTypeIncomingMessageGroupInvite
	// LinkTypeOutgoingMessageGroupInvite is a group invite link on an
	// outgoing message.
	LinkTypeOutgoingMessageGroupInvite
)

func (t LinkType) isGroupInvite() bool {
	return t == LinkTypeIncomingMessageGroupInvite || t == LinkTypeOutgoingMessageGroupInvite
}

// ActivityIndicatorStyle hints which spinner the rendering layer should show
// while a preview loads. The renderer owns the actual styles; these are just
// the two names it maps from.
type ActivityIndicatorStyle int

const (
	// IndicatorDefault is the renderer's shared default spinner.
	IndicatorDefault ActivityIndicatorStyle = iota
	// IndicatorGray is the muted spinner used for group-invite loading
	// states.
	IndicatorGray
)

// ConversationStyle is an opaque presentation hint handed to the renderer
// along with sent previews. This package only passes it through.
type ConversationStyle struct {
	MaxMessageWidth int
	DarkTheme       bool
}

// Size is a bitmap's intrinsic dimensions in pixels.
type Size struct {
	Width  int
	Height int
}

// IsZero reports whether the size is the zero sentinel.
func (s Size) IsZero() bool {
	return s.Width == 0 && s.Height == 0
}

// Bitmap is a decoded preview image. GIF is non-nil for animated content,
// in which case Image holds the first frame.
type Bitmap struct {
	Image image.Image
	GIF   *gif.GIF
}

// IsAnimated reports whether the bitmap carries animation frames.
func (b Bitmap) IsAnimated() bool {
	return b.GIF != nil
}

// ImageSource is a managed attachment resource that may still be
// downloading. *attachment.Reference satisfies it via a thin adapter (see
// Attachment).
type ImageSource interface {
	ResourceID() string
	Stream() (ImageStream, bool)
}

// ImageStream is a fully-downloaded attachment payload.
type ImageStream interface {
	ComputeContentType() contenttype.ContentType
	DecodeAnimated() (*gif.GIF, error)
	Thumbnail(quality attachment.ThumbnailQuality) (image.Image, error)
}

// State is the uniform, read-only surface the rendering layer sees over a
// link preview, regardless of whether it is still loading, drafted locally,
// or persisted with a message.
//
// Instances are immutable: state transitions happen by constructing a new
// instance (possibly of a different variant) and replacing the reference the
// caller holds. In particular, a sent preview does not observe its
// attachment's download progress after construction.
type State interface {
	// IsLoaded reports whether the preview's metadata has arrived.
	IsLoaded() bool
	// URLString returns the preview's URL, or "" when unavailable.
	URLString() string
	// DisplayDomain returns the human-facing domain for the URL, or ""
	// when it cannot be determined. Renderers omit the domain line in
	// that case.
	DisplayDomain() string
	// Title returns the preview title, or "" when absent.
	Title() string
	// Description returns the preview description, or "" when absent.
	Description() string
	// Date returns the content date, or the zero time when absent.
	Date() time.Time
	// ImageState classifies the preview's image availability.
	ImageState() ImageState
	// ImageAsync resolves a decoded bitmap on a background goroutine and
	// invokes cb at most once, only on success, from that goroutine.
	// Decode failures are logged and cb is never invoked; callers that
	// need a guaranteed response must apply their own timeout. No
	// ordering holds between overlapping calls.
	ImageAsync(quality attachment.ThumbnailQuality, cb func(Bitmap))
	// ImageCacheKey returns an identity the caller can key its own
	// bitmap cache by. ok is false when the variant has no identity
	// (no attachment, no URL) to key on.
	ImageCacheKey(quality attachment.ThumbnailQuality) (key CacheKey, ok bool)
	// ImagePixelSize returns the intrinsic dimensions of the loaded
	// image. Only meaningful when ImageState is loaded; otherwise it
	// reports a developer error and returns the zero sentinel. The
	// result is memoized per instance.
	ImagePixelSize() Size
	// IsGroupInviteLink reports whether this is a loading group-invite
	// preview. Always false for draft and sent variants.
	IsGroupInviteLink() bool
	// IsCallLink reports whether the preview's URL is a call link.
	IsCallLink() bool
	// ActivityIndicatorStyle returns the spinner hint for loading UI.
	ActivityIndicatorStyle() ActivityIndicatorStyle
	// ConversationStyle returns the presentation hint supplied when a
	// sent preview was constructed, nil otherwise.
	ConversationStyle() *ConversationStyle
}

// decodeSlots bounds the number of concurrent background decodes.
var decodeSlots = make(chan struct{}, workers.ForCPU(8))

// dispatch runs fn on a background goroutine, gated by the decode pool.
// ImageAsync never does work on the caller's goroutine.
func dispatch(fn func()) {
	go func() {
		decodeSlots <- struct{}{}
		defer func() { <-decodeSlots }()
		fn()
	}()
}

var (
	callLinkMu    sync.RWMutex
	callLinkHosts = map[string]bool{
		"call.linkcard.app": true,
	}
)

// SetCallLinkHosts replaces the set of hosts treated as call links.
// Configured at startup; safe for concurrent use with IsCallLinkURL.
func SetCallLinkHosts(hosts []string) {
	next := make(map[string]bool, len(hosts))
	for _, h := range hosts {
		h = strings.ToLower(strings.TrimSpace(h))
		if h != "" {
			next[h] = true
		}
	}
	callLinkMu.Lock()
	callLinkHosts = next
	callLinkMu.Unlock()
}

// IsCallLinkURL reports whether the URL's host is a configured call-link
// host. Unparseable URLs are not call links.
func IsCallLinkURL(raw string) bool {
	if raw == "" {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	callLinkMu.RLock()
	defer callLinkMu.RUnlock()
	return callLinkHosts[strings.ToLower(u.Hostname())]
}

// displayDomainForURL derives a human-facing domain from a URL: the host
// with any "www." prefix dropped. Returns "" when the URL has no usable
// host.
func displayDomainForURL(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	host := strings.ToLower(u.Hostname())
	return strings.TrimPrefix(host, "www.")
}
