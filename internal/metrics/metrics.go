package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "linkcard_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "linkcard_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "linkcard_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)
)

// Image decode metrics
var (
	ImageDecodesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "linkcard_image_decodes_total",
			Help: "Total number of image decode attempts",
		},
		[]string{"origin", "result"},
	)

	ImageDecodeDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "linkcard_image_decode_duration_seconds",
			Help:    "Image decode duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"origin"},
	)
)

// Thumbnail metrics
var (
	ThumbnailsGeneratedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "linkcard_thumbnails_generated_total",
			Help: "Total number of thumbnails generated",
		},
		[]string{"quality", "backend"},
	)

	ThumbnailCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "linkcard_thumbnail_cache_hits_total",
			Help: "Number of thumbnail requests served from the disk cache",
		},
	)

	ThumbnailCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "linkcard_thumbnail_cache_misses_total",
			Help: "Number of thumbnail requests that required generation",
		},
	)

	ThumbnailDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "linkcard_thumbnail_duration_seconds",
			Help:    "Thumbnail generation duration in seconds",
			Buckets: []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"quality"},
	)
)

// Metadata fetch metrics
var (
	FetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "linkcard_fetches_total",
			Help: "Total number of URL metadata fetches",
		},
		[]string{"result"},
	)

	FetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "linkcard_fetch_duration_seconds",
			Help:    "URL metadata fetch duration in seconds",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
	)
)

// Bitmap cache metrics (the rendering-side cache keyed by preview cache keys)
var (
	BitmapCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "linkcard_bitmap_cache_hits_total",
			Help: "Number of bitmap cache hits",
		},
	)

	BitmapCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "linkcard_bitmap_cache_misses_total",
			Help: "Number of bitmap cache misses",
		},
	)

	BitmapCacheEvictions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "linkcard_bitmap_cache_evictions_total",
			Help: "Number of bitmaps evicted from the cache",
		},
	)
)

// Developer error metrics
var (
	DeveloperErrorsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "linkcard_developer_errors_total",
			Help: "Number of contract violations logged as developer errors",
		},
	)
)

// Database metrics
var (
	DatabaseQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "linkcard_database_queries_total",
			Help: "Total number of database queries",
		},
		[]string{"operation", "result"},
	)

	DatabaseQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "linkcard_database_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: []float64{.001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"operation"},
	)
)
