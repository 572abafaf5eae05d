package database

import "time"

// DownloadState tracks the lifecycle of a managed attachment payload.
type DownloadState string

const (
	// StatePending means the payload has been promised but no download
	// has started.
	StatePending DownloadState = "pending"
	// StateDownloading means a download is in progress.
	StateDownloading DownloadState = "downloading"
	// StateDone means the payload is fully available on local disk.
	StateDone DownloadState = "done"
	// StateFailed means the download failed permanently.
	StateFailed DownloadState = "failed"
)

// PreviewRow is a persisted link preview record. Absent optional fields are
// stored as empty strings; an absent date is stored as 0.
type PreviewRow struct {
	ID           int64
	URL          string
	Domain       string
	Title        string
	Description  string
	Date         time.Time // zero when absent
	AttachmentID string    // empty when the preview has no image
	CreatedAt    time.Time
}

// AttachmentRow is the metadata record for a managed attachment resource.
// Width, Height, MimeType, and Path are only meaningful once State is
// StateDone.
type AttachmentRow struct {
	ID        string
	State     DownloadState
	MimeType  string
	Width     int
	Height    int
	Path      string
	CreatedAt time.Time
}
