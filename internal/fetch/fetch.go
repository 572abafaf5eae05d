package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"linkcard/internal/contenttype"
	"linkcard/internal/logging"
	"linkcard/internal/metrics"
	"linkcard/internal/preview"
)

const (
	// maxHTMLBytes bounds how much of a page we read looking for metadata.
	maxHTMLBytes = 2 << 20
	// maxImageBytes bounds the size of a downloaded preview image.
	maxImageBytes = 5 << 20

	defaultUserAgent = "linkcard/1.0 (+link preview fetcher)"
)

// Fetcher retrieves URL metadata and produces draft preview records.
type Fetcher struct {
	client    *http.Client
	userAgent string
}

// New creates a Fetcher whose requests time out after timeout.
func New(timeout time.Duration) *Fetcher {
	return &Fetcher{
		client:    &http.Client{Timeout: timeout},
		userAgent: defaultUserAgent,
	}
}

// Fetch retrieves rawURL, extracts Open Graph / Twitter card metadata, and
// downloads the preview image when one is referenced. The returned draft is
// complete: by the time it exists, any image bytes are fully in memory,
// which is what lets the draft preview variant skip a loading image state.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (draft *preview.Draft, err error) {
	start := time.Now()
	defer func() {
		metrics.FetchDuration.Observe(time.Since(start).Seconds())
		result := "success"
		if err != nil {
			result = "error"
		}
		metrics.FetchesTotal.WithLabelValues(result).Inc()
	}()

	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported url scheme %q", u.Scheme)
	}

	body, err := f.get(ctx, rawURL, maxHTMLBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", rawURL, err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", rawURL, err)
	}

	d := &preview.Draft{URL: rawURL}

	d.Title = firstMeta(doc, "og:title", "twitter:title")
	if d.Title == "" {
		d.Title = strings.TrimSpace(doc.Find("title").First().Text())
	}
	d.Description = firstMeta(doc, "og:description", "twitter:description", "description")
	d.Domain = firstMeta(doc, "og:site_name")

	if published := firstMeta(doc, "article:published_time"); published != "" {
		if t, err := time.Parse(time.RFC3339, published); err == nil {
			d.Date = t
		} else {
			logging.Debug("unparseable published time %q for %s", published, rawURL)
		}
	}

	if imgURL := firstMeta(doc, "og:image", "twitter:image"); imgURL != "" {
		f.attachImage(ctx, d, u, imgURL)
	}

	logging.Debug("fetched %s: title=%q domain=%q image=%dB",
		rawURL, d.Title, d.Domain, len(d.ImageData))
	return d, nil
}

// attachImage downloads the referenced image and attaches it to the draft.
// Failures are logged and leave the draft without an image; a preview with
// no picture beats no preview at all.
func (f *Fetcher) attachImage(ctx context.Context, d *preview.Draft, base *url.URL, imgURL string) {
	ref, err := url.Parse(imgURL)
	if err != nil {
		logging.Warn("ignoring unparseable image url %q: %v", imgURL, err)
		return
	}
	resolved := base.ResolveReference(ref).String()

	data, mime, err := f.DownloadImage(ctx, resolved)
	if err != nil {
		logging.Warn("failed to download preview image %s: %v", resolved, err)
		return
	}

	d.ImageData = data
	d.ImageMime = mime
}

// DownloadImage fetches an image payload, bounded by the image size limit,
// and returns its bytes and sniffed MIME type. Payloads that do not sniff
// as a decodable image are rejected.
func (f *Fetcher) DownloadImage(ctx context.Context, rawURL string) ([]byte, string, error) {
	data, err := f.get(ctx, rawURL, maxImageBytes)
	if err != nil {
		return nil, "", err
	}
	mime := contenttype.Sniff(data)
	if !contenttype.FromMime(mime).IsImage() {
		return nil, "", fmt.Errorf("payload sniffed as %s, not an image", mime)
	}
	return data, mime, nil
}

// get performs a bounded GET and returns at most limit bytes of the body.
func (f *Fetcher) get(ctx context.Context, rawURL string, limit int64) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logging.Warn("failed to close response body for %s: %v", rawURL, err)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, limit))
	if err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}
	return data, nil
}

// firstMeta returns the content of the first matching meta tag, checking
// both property= and name= attributes, in the order given.
func firstMeta(doc *goquery.Document, keys ...string) string {
	for _, key := range keys {
		for _, attr := range []string{"property", "name"} {
			sel := fmt.Sprintf(`meta[%s=%q]`, attr, key)
			if content, ok := doc.Find(sel).First().Attr("content"); ok {
				if trimmed := strings.TrimSpace(content); trimmed != "" {
					return trimmed
				}
			}
		}
	}
	return ""
}
