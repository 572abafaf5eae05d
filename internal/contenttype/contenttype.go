package contenttype

import "strings"

// Kind classifies the payload of an attachment.
type Kind string

const (
	// KindImage is a static, decodable image.
	KindImage Kind = "image"
	// KindAnimatedImage is a decodable image with multiple frames.
	KindAnimatedImage Kind = "animatedImage"
	// KindAudio is an audio payload.
	KindAudio Kind = "audio"
	// KindVideo is a video payload.
	KindVideo Kind = "video"
	// KindFile is a generic, non-media payload.
	KindFile Kind = "file"
	// KindInvalid means the payload type could not be determined.
	KindInvalid Kind = "invalid"
)

// IsImage reports whether the kind is a decodable image (static or animated).
func (k Kind) IsImage() bool {
	return k == KindImage || k == KindAnimatedImage
}

// ContentType is a computed content type plus, for image kinds, the pixel
// dimensions recorded when the payload was stored.
type ContentType struct {
	Kind   Kind
	Width  int
	Height int
}

// StaticImageMimes maps MIME types to whether they are supported static
// image formats.
var StaticImageMimes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/bmp":  true,
	"image/tiff": true,
}

// AnimatedImageMimes maps MIME types to whether they are treated as animated
// image formats. GIF and APNG payloads are always classified as animated;
// frame counting happens at decode time, not here.
var AnimatedImageMimes = map[string]bool{
	"image/gif":  true,
	"image/apng": true,
}

// MimeExtensions maps supported image MIME types to the file extension used
// when persisting attachment payloads.
var MimeExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/apng": ".png",
	"image/webp": ".webp",
	"image/bmp":  ".bmp",
	"image/tiff": ".tiff",
}

// FromMime classifies a MIME type.
//
// Unrecognized image/* subtypes classify as KindFile rather than KindImage:
// claiming an image is decodable when no registered decoder handles it would
// surface later as a decode failure instead of an honest "not an image here".
func FromMime(mime string) Kind {
	mime = strings.ToLower(strings.TrimSpace(mime))
	if mime == "" {
		return KindInvalid
	}
	if AnimatedImageMimes[mime] {
		return KindAnimatedImage
	}
	if StaticImageMimes[mime] {
		return KindImage
	}
	switch {
	case strings.HasPrefix(mime, "audio/"):
		return KindAudio
	case strings.HasPrefix(mime, "video/"):
		return KindVideo
	}
	return KindFile
}

// ExtForMime returns the storage file extension for a MIME type, or ".bin"
// for anything unrecognized.
func ExtForMime(mime string) string {
	if ext, ok := MimeExtensions[strings.ToLower(mime)]; ok {
		return ext
	}
	return ".bin"
}
