package attachment

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"linkcard/internal/contenttype"
	"linkcard/internal/database"
	"linkcard/internal/imagemeta"
	"linkcard/internal/logging"
)

// Store owns the attachment payload directory and the metadata rows that
// describe each payload's download state.
type Store struct {
	dir    string
	db     *database.Database
	thumbs *Thumbnailer
}

// NewStore creates a Store rooted at dir.
func NewStore(dir string, db *database.Database, thumbs *Thumbnailer) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create attachment directory: %w", err)
	}
	return &Store{dir: dir, db: db, thumbs: thumbs}, nil
}

// Reference returns a handle for an attachment id without touching the
// database. Resolution happens when the caller asks for the stream.
func (s *Store) Reference(id string) *Reference {
	return &Reference{id: id, store: s}
}

// CreateFromBytes stores a fully-available payload (a draft image being
// sent) and returns a reference that resolves immediately. The mime type is
// sniffed from the payload when empty. Non-image payloads are stored as-is;
// classification happens at read time.
func (s *Store) CreateFromBytes(ctx context.Context, data []byte, mimeType string) (*Reference, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty attachment payload")
	}
	if mimeType == "" {
		mimeType = contenttype.Sniff(data)
	}

	id := uuid.NewString()
	path := filepath.Join(s.dir, id+contenttype.ExtForMime(mimeType))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return nil, fmt.Errorf("failed to write attachment payload: %w", err)
	}

	var width, height int
	if contenttype.FromMime(mimeType).IsImage() {
		dims, err := imagemeta.FromBytes(data)
		if err != nil {
			// Stored with zero dimensions; readers see a degenerate size.
			logging.Warn("attachment %s: could not probe image dimensions: %v", id, err)
		} else {
			width, height = dims.Width, dims.Height
		}
	}

	row := &database.AttachmentRow{
		ID:       id,
		State:    database.StateDone,
		MimeType: mimeType,
		Width:    width,
		Height:   height,
		Path:     path,
	}
	if err := s.db.InsertAttachment(ctx, row); err != nil {
		if rmErr := os.Remove(path); rmErr != nil {
			logging.Warn("failed to remove orphaned payload %s: %v", path, rmErr)
		}
		return nil, err
	}

	logging.Debug("attachment %s stored (%s, %dx%d, %d bytes)", id, mimeType, width, height, len(data))
	return s.Reference(id), nil
}

// CreatePending records an attachment whose payload has not arrived yet and
// returns its reference. The reference will not resolve to a stream until
// CompleteDownload runs.
func (s *Store) CreatePending(ctx context.Context) (*Reference, error) {
	id := uuid.NewString()
	row := &database.AttachmentRow{
		ID:    id,
		State: database.StatePending,
	}
	if err := s.db.InsertAttachment(ctx, row); err != nil {
		return nil, err
	}
	logging.Debug("attachment %s created pending", id)
	return s.Reference(id), nil
}

// MarkDownloading flips a pending attachment into the downloading state.
func (s *Store) MarkDownloading(ctx context.Context, id string) error {
	return s.db.UpdateAttachmentState(ctx, id, database.StateDownloading)
}

// MarkFailed records a permanently failed download.
func (s *Store) MarkFailed(ctx context.Context, id string) error {
	return s.db.UpdateAttachmentState(ctx, id, database.StateFailed)
}

// CompleteDownload stores the payload for a previously pending attachment
// and marks it done.
func (s *Store) CompleteDownload(ctx context.Context, id string, data []byte, mimeType string) error {
	if len(data) == 0 {
		return fmt.Errorf("empty attachment payload")
	}
	if mimeType == "" {
		mimeType = contenttype.Sniff(data)
	}

	path := filepath.Join(s.dir, id+contenttype.ExtForMime(mimeType))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write attachment payload: %w", err)
	}

	var width, height int
	if contenttype.FromMime(mimeType).IsImage() {
		dims, err := imagemeta.FromBytes(data)
		if err != nil {
			logging.Warn("attachment %s: could not probe image dimensions: %v", id, err)
		} else {
			width, height = dims.Width, dims.Height
		}
	}

	if err := s.db.CompleteAttachment(ctx, id, mimeType, width, height, path); err != nil {
		return err
	}
	logging.Debug("attachment %s download complete (%s, %dx%d)", id, mimeType, width, height)
	return nil
}
