package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"linkcard/internal/attachment"
	"linkcard/internal/bitmapcache"
	"linkcard/internal/database"
	"linkcard/internal/fetch"
	"linkcard/internal/handlers"
	"linkcard/internal/logging"
	"linkcard/internal/middleware"
	"linkcard/internal/preview"
	"linkcard/internal/startup"
)

func main() {
	startTime := time.Now()

	config, err := startup.LoadConfig()
	if err != nil {
		startup.LogFatal("Configuration error: %v", err)
	}

	preview.SetCallLinkHosts(config.CallLinkHosts)

	if config.VipsEnabled {
		if err := attachment.InitVips(); err != nil {
			logging.Warn("libvips unavailable, using pure-Go thumbnailing: %v", err)
		}
	}

	db, err := database.New(context.Background(), config.DatabasePath)
	if err != nil {
		startup.LogFatal("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Warn("failed to close database: %v", err)
		}
	}()

	thumbs := attachment.NewThumbnailer(config.ThumbnailDir, config.ThumbnailsEnabled)
	store, err := attachment.NewStore(config.AttachmentDir, db, thumbs)
	if err != nil {
		startup.LogFatal("Failed to initialize attachment store: %v", err)
	}

	bitmaps, err := bitmapcache.New(config.BitmapCacheSize)
	if err != nil {
		startup.LogFatal("Failed to initialize bitmap cache: %v", err)
	}

	fetcher := fetch.New(config.FetchTimeout)

	h := handlers.New(db, store, fetcher, bitmaps, config)
	router := setupRouter(h, config)

	loggingConfig := middleware.DefaultLoggingConfig()
	loggingConfig.LogHealthChecks = config.LogHealthChecks
	handler := middleware.Logger(loggingConfig)(router)

	srv := &http.Server{
		Addr:         ":" + config.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go handleShutdown(srv)

	startup.LogServerStarted(config.Port, time.Since(startTime))
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		startup.LogFatal("Server error: %v", err)
	}
}

func setupRouter(h *handlers.Handlers, config *startup.Config) *mux.Router {
	r := mux.NewRouter()

	if config.MetricsEnabled {
		r.Use(middleware.Metrics(middleware.DefaultMetricsConfig()))
		r.Handle("/metrics", promhttp.Handler()).Methods("GET")
	}

	r.HandleFunc("/health", h.HealthCheck).Methods("GET")
	r.HandleFunc("/healthz", h.HealthCheck).Methods("GET")
	r.HandleFunc("/livez", h.LivenessCheck).Methods("GET")
	r.HandleFunc("/readyz", h.ReadinessCheck).Methods("GET")
	r.HandleFunc("/version", h.GetVersion).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/drafts", h.CreateDraft).Methods("POST")
	api.HandleFunc("/previews", h.SendPreview).Methods("POST")
	api.HandleFunc("/previews/{id}", h.GetPreview).Methods("GET")
	api.HandleFunc("/previews/{id}/image", h.GetPreviewImage).Methods("GET")

	return r
}

func handleShutdown(srv *http.Server) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	startup.LogShutdownInitiated(sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	startup.LogShutdownStep("Shutting down HTTP server")
	if err := srv.Shutdown(ctx); err != nil {
		logging.Warn("Server shutdown error: %v", err)
	}

	startup.LogShutdownStep("Shutting down libvips")
	attachment.ShutdownVips()

	startup.LogShutdownComplete()
}
