package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"

	"linkcard/internal/attachment"
	"linkcard/internal/bitmapcache"
	"linkcard/internal/database"
	"linkcard/internal/fetch"
	"linkcard/internal/preview"
	"linkcard/internal/startup"

	_ "image/jpeg"
)

// encodePNG builds an encoded test image of the given dimensions.
func encodePNG(t *testing.T, width, height int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: 80, B: uint8(y), A: 255})
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("Failed to encode test image: %v", err)
	}
	return buf.Bytes()
}

// newSiteServer serves article pages the fetcher can pull metadata from.
func newSiteServer(t *testing.T) *httptest.Server {
	t.Helper()

	imageData := encodePNG(t, 60, 40)
	siteMux := http.NewServeMux()
	siteMux.HandleFunc("/article", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, `<html><head>
  <title>fallback</title>
  <meta property="og:title" content="An Article" />
  <meta property="og:description" content="Something happened." />
  <meta property="og:site_name" content="Example News" />
  <meta property="og:image" content="/hero.png" />
</head></html>`)
	})
	siteMux.HandleFunc("/hero.png", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		if _, err := w.Write(imageData); err != nil {
			t.Errorf("Failed to write image response: %v", err)
		}
	})
	siteMux.HandleFunc("/bare", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, `<html><head><title>No Image Here</title></head></html>`)
	})

	srv := httptest.NewServer(siteMux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestRouter(t *testing.T) *mux.Router {
	t.Helper()

	dir := t.TempDir()
	db, err := database.New(context.Background(), filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("Failed to close test database: %v", err)
		}
	})

	thumbs := attachment.NewThumbnailer(filepath.Join(dir, "thumbs"), true)
	store, err := attachment.NewStore(filepath.Join(dir, "attachments"), db, thumbs)
	if err != nil {
		t.Fatalf("Failed to create test store: %v", err)
	}

	bitmaps, err := bitmapcache.New(16)
	if err != nil {
		t.Fatalf("Failed to create bitmap cache: %v", err)
	}

	h := New(db, store, fetch.New(5*time.Second), bitmaps, &startup.Config{
		ImageTimeout: 5 * time.Second,
	})

	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/drafts", h.CreateDraft).Methods("POST")
	api.HandleFunc("/previews", h.SendPreview).Methods("POST")
	api.HandleFunc("/previews/{id}", h.GetPreview).Methods("GET")
	api.HandleFunc("/previews/{id}/image", h.GetPreviewImage).Methods("GET")
	return r
}

func postJSON(t *testing.T, router *mux.Router, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("POST", path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func getPath(t *testing.T, router *mux.Router, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", path, nil))
	return rec
}

func decodeCard(t *testing.T, rec *httptest.ResponseRecorder) Card {
	t.Helper()
	var card Card
	if err := json.Unmarshal(rec.Body.Bytes(), &card); err != nil {
		t.Fatalf("Failed to decode card: %v (body: %s)", err, rec.Body.String())
	}
	return card
}

func TestCreateDraft(t *testing.T) {
	site := newSiteServer(t)
	router := newTestRouter(t)

	rec := postJSON(t, router, "/api/drafts", fmt.Sprintf(`{"url":%q}`, site.URL+"/article"))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	card := decodeCard(t, rec)
	if !card.IsLoaded {
		t.Error("draft card should be loaded")
	}
	if card.Title != "An Article" || card.DisplayDomain != "Example News" {
		t.Errorf("unexpected card metadata: %q / %q", card.Title, card.DisplayDomain)
	}
	if card.ImageState != "loaded" {
		t.Errorf("ImageState = %q, want loaded", card.ImageState)
	}
	if card.ImageWidth != 60 || card.ImageHeight != 40 {
		t.Errorf("image size = %dx%d, want 60x40", card.ImageWidth, card.ImageHeight)
	}
	if card.ImageCacheKey == "" {
		t.Error("draft card with an image should carry a cache key")
	}
}

func TestSendAndGetPreview(t *testing.T) {
	site := newSiteServer(t)
	router := newTestRouter(t)

	rec := postJSON(t, router, "/api/previews", fmt.Sprintf(`{"url":%q}`, site.URL+"/article"))
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var created previewCreated
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if created.ID == 0 {
		t.Fatal("created preview has id 0")
	}
	if created.Card.ImageState != "loaded" {
		t.Errorf("ImageState = %q, want loaded", created.Card.ImageState)
	}
	if created.Card.ImageWidth != 60 || created.Card.ImageHeight != 40 {
		t.Errorf("image size = %dx%d, want 60x40", created.Card.ImageWidth, created.Card.ImageHeight)
	}

	got := getPath(t, router, fmt.Sprintf("/api/previews/%d", created.ID))
	if got.Code != http.StatusOK {
		t.Fatalf("GET status = %d", got.Code)
	}
	card := decodeCard(t, got)
	if card.Title != "An Article" || card.ImageState != "loaded" {
		t.Errorf("reloaded card: title=%q imageState=%q", card.Title, card.ImageState)
	}
	// A persisted preview's image is keyed by attachment resource, not by
	// URL, so the key differs from the draft rendering of the same page.
	if card.ImageCacheKey == "" {
		t.Error("sent card with an image should carry a cache key")
	}
}

func TestGetPreviewImage(t *testing.T) {
	site := newSiteServer(t)
	router := newTestRouter(t)

	rec := postJSON(t, router, "/api/previews", fmt.Sprintf(`{"url":%q}`, site.URL+"/article"))
	var created previewCreated
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	for i := 0; i < 2; i++ {
		got := getPath(t, router, fmt.Sprintf("/api/previews/%d/image?quality=small", created.ID))
		if got.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, body = %s", i, got.Code, got.Body.String())
		}
		if ct := got.Header().Get("Content-Type"); ct != "image/jpeg" {
			t.Errorf("request %d: Content-Type = %q, want image/jpeg", i, ct)
		}
		img, _, err := image.Decode(bytes.NewReader(got.Body.Bytes()))
		if err != nil {
			t.Fatalf("request %d: response is not a decodable image: %v", i, err)
		}
		bounds := img.Bounds()
		if bounds.Dx() != 60 || bounds.Dy() != 40 {
			t.Errorf("request %d: served image = %dx%d, want 60x40", i, bounds.Dx(), bounds.Dy())
		}
	}
}

func TestPreviewWithoutImage(t *testing.T) {
	site := newSiteServer(t)
	router := newTestRouter(t)

	rec := postJSON(t, router, "/api/previews", fmt.Sprintf(`{"url":%q}`, site.URL+"/bare"))
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var created previewCreated
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if created.Card.ImageState != "absent" {
		t.Errorf("ImageState = %q, want absent", created.Card.ImageState)
	}
	if created.Card.ImageCacheKey != "" {
		t.Error("card without an image should carry no cache key")
	}

	got := getPath(t, router, fmt.Sprintf("/api/previews/%d/image", created.ID))
	if got.Code != http.StatusNotFound {
		t.Errorf("image status = %d, want 404", got.Code)
	}
}

func TestAsyncImageEventuallyLoads(t *testing.T) {
	site := newSiteServer(t)
	router := newTestRouter(t)

	rec := postJSON(t, router, "/api/previews",
		fmt.Sprintf(`{"url":%q,"asyncImage":true}`, site.URL+"/article"))
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var created previewCreated
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	// The background download races the send response, so the initial card
	// may report loading or already be loaded. Poll fresh cards until the
	// attachment lands; each GET rebuilds the facade and sees new state.
	deadline := time.Now().Add(5 * time.Second)
	for {
		card := decodeCard(t, getPath(t, router, fmt.Sprintf("/api/previews/%d", created.ID)))
		if card.ImageState == "loaded" {
			if card.ImageWidth != 60 || card.ImageHeight != 40 {
				t.Errorf("image size = %dx%d, want 60x40", card.ImageWidth, card.ImageHeight)
			}
			return
		}
		if card.ImageState != "loading" {
			t.Fatalf("ImageState = %q, want loading or loaded", card.ImageState)
		}
		if time.Now().After(deadline) {
			t.Fatal("attachment never finished downloading")
		}
		time.Sleep(50 * time.Millisecond)
	}
}

func TestGetPreviewErrors(t *testing.T) {
	router := newTestRouter(t)

	if rec := getPath(t, router, "/api/previews/not-a-number"); rec.Code != http.StatusBadRequest {
		t.Errorf("bad id status = %d, want 400", rec.Code)
	}
	if rec := getPath(t, router, "/api/previews/9999"); rec.Code != http.StatusNotFound {
		t.Errorf("missing preview status = %d, want 404", rec.Code)
	}
}

func TestSendPreviewBadBody(t *testing.T) {
	router := newTestRouter(t)

	tests := []struct {
		name string
		body string
	}{
		{"not json", "this is not json"},
		{"missing url", `{"asyncImage":true}`},
		{"empty url", `{"url":""}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rec := postJSON(t, router, "/api/previews", tt.body); rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestBuildCardLoading(t *testing.T) {
	card := buildCard(preview.NewLoading(preview.LinkTypeIncomingMessageGroupInvite), attachment.QualityMedium)

	if card.IsLoaded {
		t.Error("loading card should not be loaded")
	}
	if !card.IsGroupInviteLink {
		t.Error("group-invite loading card should set the flag")
	}
	if card.ActivityIndicator != "gray" {
		t.Errorf("ActivityIndicator = %q, want gray", card.ActivityIndicator)
	}
	if card.ImageState != "absent" {
		t.Errorf("ImageState = %q, want absent", card.ImageState)
	}
	if card.ImageCacheKey != "" || card.ImageWidth != 0 {
		t.Error("loading card should carry no image identity or size")
	}
}
