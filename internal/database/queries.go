package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"linkcard/internal/metrics"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

func observe(op string, start time.Time, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	metrics.DatabaseQueriesTotal.WithLabelValues(op, result).Inc()
	metrics.DatabaseQueryDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

// InsertPreview stores a preview record and returns its assigned id.
func (d *Database) InsertPreview(ctx context.Context, row *PreviewRow) (id int64, err error) {
	defer func(start time.Time) { observe("insert_preview", start, err) }(time.Now())

	execCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var dateMs int64
	if !row.Date.IsZero() {
		dateMs = row.Date.UnixMilli()
	}

	res, err := d.db.ExecContext(execCtx, `
		INSERT INTO previews (url, display_domain, title, description, date_ms, attachment_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		row.URL, row.Domain, row.Title, row.Description, dateMs, row.AttachmentID,
		time.Now().UnixMilli(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert preview: %w", err)
	}
	id, err = res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read preview id: %w", err)
	}
	return id, nil
}

// GetPreview loads a preview record by id.
func (d *Database) GetPreview(ctx context.Context, id int64) (row *PreviewRow, err error) {
	defer func(start time.Time) { observe("get_preview", start, err) }(time.Now())

	queryCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var (
		r         PreviewRow
		dateMs    int64
		createdMs int64
	)
	err = d.db.QueryRowContext(queryCtx, `
		SELECT id, url, display_domain, title, description, date_ms, attachment_id, created_at
		FROM previews WHERE id = ?`, id,
	).Scan(&r.ID, &r.URL, &r.Domain, &r.Title, &r.Description, &dateMs, &r.AttachmentID, &createdMs)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load preview %d: %w", id, err)
	}
	if dateMs > 0 {
		r.Date = time.UnixMilli(dateMs)
	}
	r.CreatedAt = time.UnixMilli(createdMs)
	return &r, nil
}

// InsertAttachment stores an attachment metadata record.
func (d *Database) InsertAttachment(ctx context.Context, row *AttachmentRow) (err error) {
	defer func(start time.Time) { observe("insert_attachment", start, err) }(time.Now())

	execCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err = d.db.ExecContext(execCtx, `
		INSERT INTO attachments (id, state, mime_type, width, height, path, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		row.ID, string(row.State), row.MimeType, row.Width, row.Height, row.Path,
		time.Now().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert attachment %s: %w", row.ID, err)
	}
	return nil
}

// GetAttachment loads an attachment metadata record by id.
func (d *Database) GetAttachment(ctx context.Context, id string) (row *AttachmentRow, err error) {
	defer func(start time.Time) { observe("get_attachment", start, err) }(time.Now())

	queryCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var (
		r         AttachmentRow
		state     string
		createdMs int64
	)
	err = d.db.QueryRowContext(queryCtx, `
		SELECT id, state, mime_type, width, height, path, created_at
		FROM attachments WHERE id = ?`, id,
	).Scan(&r.ID, &state, &r.MimeType, &r.Width, &r.Height, &r.Path, &createdMs)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load attachment %s: %w", id, err)
	}
	r.State = DownloadState(state)
	r.CreatedAt = time.UnixMilli(createdMs)
	return &r, nil
}

// UpdateAttachmentState transitions an attachment's download state without
// touching its payload metadata.
func (d *Database) UpdateAttachmentState(ctx context.Context, id string, state DownloadState) (err error) {
	defer func(start time.Time) { observe("update_attachment_state", start, err) }(time.Now())

	execCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := d.db.ExecContext(execCtx,
		`UPDATE attachments SET state = ? WHERE id = ?`, string(state), id)
	if err != nil {
		return fmt.Errorf("failed to update attachment %s state: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// CompleteAttachment records a finished download: payload location, mime
// type, and dimensions, and flips the state to done.
func (d *Database) CompleteAttachment(ctx context.Context, id, mimeType string, width, height int, path string) (err error) {
	defer func(start time.Time) { observe("complete_attachment", start, err) }(time.Now())

	execCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := d.db.ExecContext(execCtx, `
		UPDATE attachments SET state = ?, mime_type = ?, width = ?, height = ?, path = ?
		WHERE id = ?`,
		string(StateDone), mimeType, width, height, path, id)
	if err != nil {
		return fmt.Errorf("failed to complete attachment %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
