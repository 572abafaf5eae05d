// Package attachment manages the image payloads behind persisted link
// previews.
//
// A Reference identifies a payload that may still be downloading; it
// resolves to a Stream only once the bytes are fully on local disk. A
// Stream exposes the payload's computed content type, full animated decode,
// and bounded thumbnail generation. Thumbnails are generated through
// libvips when available (with decode-time shrinking) and a pure-Go
// imaging fallback otherwise, cached as JPEG on disk, and deduplicated per
// payload/quality with a singleflight group.
package attachment
