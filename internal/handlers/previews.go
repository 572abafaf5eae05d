package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"image/gif"
	"image/jpeg"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"linkcard/internal/attachment"
	"linkcard/internal/database"
	"linkcard/internal/logging"
	"linkcard/internal/preview"
)

type previewRequest struct {
	URL string `json:"url"`
	// AsyncImage stores the preview image as a pending attachment that
	// downloads in the background, instead of inline with the send.
	AsyncImage bool `json:"asyncImage,omitempty"`
}

type previewCreated struct {
	ID   int64 `json:"id"`
	Card Card  `json:"card"`
}

func qualityFromRequest(r *http.Request) attachment.ThumbnailQuality {
	return attachment.ParseQuality(r.URL.Query().Get("quality"))
}

func styleFromRequest(r *http.Request) *preview.ConversationStyle {
	return &preview.ConversationStyle{
		MaxMessageWidth: 480,
		DarkTheme:       r.URL.Query().Get("theme") == "dark",
	}
}

// CreateDraft fetches URL metadata and renders the resulting draft preview
// without persisting anything. This is the compose-time path.
func (h *Handlers) CreateDraft(w http.ResponseWriter, r *http.Request) {
	var req previewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.URL == "" {
		writeJSONError(w, "body must be JSON with a url field", http.StatusBadRequest)
		return
	}

	draft, err := h.fetcher.Fetch(r.Context(), req.URL)
	if err != nil {
		logging.Warn("draft fetch failed for %s: %v", req.URL, err)
		writeJSONError(w, "failed to fetch url metadata", http.StatusBadGateway)
		return
	}

	writeJSON(w, buildCard(preview.NewDraft(*draft), qualityFromRequest(r)))
}

// SendPreview fetches URL metadata and persists it as a sent preview,
// storing the image (if any) as a managed attachment. With asyncImage the
// attachment starts pending and downloads in the background, so the sent
// preview initially reports a loading image.
func (h *Handlers) SendPreview(w http.ResponseWriter, r *http.Request) {
	var req previewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.URL == "" {
		writeJSONError(w, "body must be JSON with a url field", http.StatusBadRequest)
		return
	}

	draft, err := h.fetcher.Fetch(r.Context(), req.URL)
	if err != nil {
		logging.Warn("send fetch failed for %s: %v", req.URL, err)
		writeJSONError(w, "failed to fetch url metadata", http.StatusBadGateway)
		return
	}

	var attachmentID string
	if len(draft.ImageData) > 0 {
		if req.AsyncImage {
			ref, err := h.store.CreatePending(r.Context())
			if err != nil {
				writeJSONError(w, "failed to create attachment", http.StatusInternalServerError)
				return
			}
			attachmentID = ref.ResourceID()
			go h.completeInBackground(ref.ResourceID(), draft.ImageData, draft.ImageMime)
		} else {
			ref, err := h.store.CreateFromBytes(r.Context(), draft.ImageData, draft.ImageMime)
			if err != nil {
				writeJSONError(w, "failed to store attachment", http.StatusInternalServerError)
				return
			}
			attachmentID = ref.ResourceID()
		}
	}

	row := &database.PreviewRow{
		URL:          draft.URL,
		Domain:       draft.Domain,
		Title:        draft.Title,
		Description:  draft.Description,
		Date:         draft.Date,
		AttachmentID: attachmentID,
	}
	id, err := h.db.InsertPreview(r.Context(), row)
	if err != nil {
		writeJSONError(w, "failed to persist preview", http.StatusInternalServerError)
		return
	}

	st := h.sentState(row, styleFromRequest(r))
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, previewCreated{ID: id, Card: buildCard(st, qualityFromRequest(r))})
}

// completeInBackground finishes a pending attachment's download off the
// request path.
func (h *Handlers) completeInBackground(id string, data []byte, mime string) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := h.store.MarkDownloading(ctx, id); err != nil {
		logging.Error("failed to mark attachment %s downloading: %v", id, err)
		return
	}
	if err := h.store.CompleteDownload(ctx, id, data, mime); err != nil {
		logging.Error("failed to complete attachment %s: %v", id, err)
		if err := h.store.MarkFailed(ctx, id); err != nil {
			logging.Error("failed to mark attachment %s failed: %v", id, err)
		}
	}
}

// sentState reconstructs the preview facade for a persisted row. Callers
// needing fresh attachment state build a new one per request; the facade
// itself never observes download progress.
func (h *Handlers) sentState(row *database.PreviewRow, style *preview.ConversationStyle) preview.State {
	record := preview.Record{
		URL:         row.URL,
		Title:       row.Title,
		Description: row.Description,
		Domain:      row.Domain,
		Date:        row.Date,
	}
	var source preview.ImageSource
	if row.AttachmentID != "" {
		source = preview.Attachment(h.store.Reference(row.AttachmentID))
	}
	return preview.NewSent(record, source, style)
}

func (h *Handlers) loadPreview(w http.ResponseWriter, r *http.Request) (*database.PreviewRow, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeJSONError(w, "invalid preview id", http.StatusBadRequest)
		return nil, false
	}
	row, err := h.db.GetPreview(r.Context(), id)
	if errors.Is(err, database.ErrNotFound) {
		writeJSONError(w, "preview not found", http.StatusNotFound)
		return nil, false
	}
	if err != nil {
		writeJSONError(w, "failed to load preview", http.StatusInternalServerError)
		return nil, false
	}
	return row, true
}

// GetPreview renders a persisted preview as a card.
func (h *Handlers) GetPreview(w http.ResponseWriter, r *http.Request) {
	row, ok := h.loadPreview(w, r)
	if !ok {
		return
	}
	st := h.sentState(row, styleFromRequest(r))
	writeJSON(w, buildCard(st, qualityFromRequest(r)))
}

// GetPreviewImage resolves and serves a persisted preview's image at the
// requested quality. Image resolution may legitimately never call back (a
// decode failure is logged, not surfaced), so the wait is bounded and a
// timeout maps to 504.
func (h *Handlers) GetPreviewImage(w http.ResponseWriter, r *http.Request) {
	row, ok := h.loadPreview(w, r)
	if !ok {
		return
	}
	st := h.sentState(row, styleFromRequest(r))
	quality := qualityFromRequest(r)

	switch st.ImageState() {
	case preview.ImageStateAbsent:
		writeJSONError(w, "preview has no image", http.StatusNotFound)
		return
	case preview.ImageStateLoading:
		writeJSONError(w, "preview image still downloading", http.StatusAccepted)
		return
	case preview.ImageStateInvalid:
		writeJSONError(w, "preview attachment is not an image", http.StatusUnsupportedMediaType)
		return
	}

	key, hasKey := st.ImageCacheKey(quality)
	if hasKey {
		if bitmap, ok := h.bitmaps.Get(key); ok {
			serveBitmap(w, bitmap)
			return
		}
	}

	done := make(chan preview.Bitmap, 1)
	st.ImageAsync(quality, func(b preview.Bitmap) {
		// Late callbacks after the timeout fires land in the buffered
		// channel and are dropped with it.
		done <- b
	})

	select {
	case bitmap := <-done:
		if hasKey {
			h.bitmaps.Add(key, bitmap)
		}
		serveBitmap(w, bitmap)
	case <-time.After(h.imageTimeout):
		writeJSONError(w, "image resolution timed out", http.StatusGatewayTimeout)
	}
}

func serveBitmap(w http.ResponseWriter, bitmap preview.Bitmap) {
	if bitmap.IsAnimated() {
		w.Header().Set("Content-Type", "image/gif")
		if err := gif.EncodeAll(w, bitmap.GIF); err != nil {
			logging.Error("failed to encode animated response: %v", err)
		}
		return
	}
	w.Header().Set("Content-Type", "image/jpeg")
	if err := jpeg.Encode(w, bitmap.Image, &jpeg.Options{Quality: 85}); err != nil {
		logging.Error("failed to encode image response: %v", err)
	}
}
