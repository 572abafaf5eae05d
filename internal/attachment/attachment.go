package attachment

import (
	"context"
	"fmt"
	"image"
	"image/gif"
	"os"

	"linkcard/internal/contenttype"
	"linkcard/internal/database"
	"linkcard/internal/logging"
)

// Reference points at a managed attachment resource that may still be
// downloading. Resolving it to a Stream succeeds only once the payload is
// fully on local disk.
type Reference struct {
	id    string
	store *Store
}

// ResourceID returns the attachment's opaque identifier.
func (r *Reference) ResourceID() string {
	return r.id
}

// Stream resolves the reference to a readable local stream. The second
// return is false while the payload is pending, downloading, failed, or
// unknown. The result is a snapshot: a Stream stays valid even if the
// underlying row changes afterwards.
func (r *Reference) Stream() (*Stream, bool) {
	row, err := r.store.db.GetAttachment(context.Background(), r.id)
	if err != nil {
		logging.Warn("attachment %s could not be resolved: %v", r.id, err)
		return nil, false
	}
	if row.State != database.StateDone {
		return nil, false
	}
	return &Stream{
		id:     row.ID,
		path:   row.Path,
		mime:   row.MimeType,
		width:  row.Width,
		height: row.Height,
		thumbs: r.store.thumbs,
	}, true
}

// Stream is a resolved attachment: a fully-downloaded payload on local disk
// plus the metadata recorded when it was stored.
type Stream struct {
	id     string
	path   string
	mime   string
	width  int
	height int
	thumbs *Thumbnailer
}

// ResourceID returns the attachment's opaque identifier.
func (s *Stream) ResourceID() string {
	return s.id
}

// ComputeContentType classifies the payload. For image kinds the recorded
// pixel dimensions ride along; for everything else they are zero.
func (s *Stream) ComputeContentType() contenttype.ContentType {
	kind := contenttype.FromMime(s.mime)
	ct := contenttype.ContentType{Kind: kind}
	if kind.IsImage() {
		ct.Width = s.width
		ct.Height = s.height
	}
	return ct
}

// DecodeAnimated decodes the payload as an animated image with all frames.
// Only GIF payloads are supported; anything else is an error.
func (s *Stream) DecodeAnimated() (*gif.GIF, error) {
	if s.mime != "image/gif" {
		return nil, fmt.Errorf("cannot decode %s as animated image", s.mime)
	}
	file, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open attachment payload: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			logging.Warn("failed to close attachment payload %s: %v", s.path, err)
		}
	}()

	g, err := gif.DecodeAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode animated image: %w", err)
	}
	if len(g.Image) == 0 {
		return nil, fmt.Errorf("animated image has no frames")
	}
	return g, nil
}

// Thumbnail produces a thumbnail of the payload bounded by the quality's
// maximum dimension. It may block on decode or disk I/O; callers are
// expected to invoke it off the hot path.
func (s *Stream) Thumbnail(quality ThumbnailQuality) (image.Image, error) {
	return s.thumbs.Generate(s, quality)
}
