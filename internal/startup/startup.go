package startup

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"linkcard/internal/logging"
)

// Build-time variables (injected via -ldflags)
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
	GoVersion = runtime.Version()
)

// BuildInfo contains version and build information
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"buildTime"`
	GoVersion string `json:"goVersion"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

// GetBuildInfo returns the current build information
func GetBuildInfo() BuildInfo {
	return BuildInfo{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: GoVersion,
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
}

// Config holds all application configuration
type Config struct {
	DataDir         string
	CacheDir        string
	Port            string
	FetchTimeout    time.Duration
	ImageTimeout    time.Duration
	BitmapCacheSize int
	CallLinkHosts   []string
	LogHealthChecks bool
	MetricsEnabled  bool
	VipsEnabled     bool

	// Derived paths
	DatabasePath  string
	AttachmentDir string
	ThumbnailDir  string

	// Feature flags based on directory availability
	ThumbnailsEnabled bool
}

// LoadConfig loads and validates configuration from environment variables
func LoadConfig() (*Config, error) {
	logging.Info("------------------------------------------------------------")
	logging.Info("linkcard %s (%s) %s/%s", Version, Commit, runtime.GOOS, runtime.GOARCH)
	logging.Info("------------------------------------------------------------")

	dataDir := getEnv("DATA_DIR", "/data")
	cacheDir := getEnv("CACHE_DIR", "/cache")
	port := getEnv("PORT", "8080")
	fetchTimeout := getEnvDuration("FETCH_TIMEOUT", 10*time.Second)
	imageTimeout := getEnvDuration("IMAGE_TIMEOUT", 15*time.Second)
	bitmapCacheSize := getEnvInt("BITMAP_CACHE_SIZE", 128)
	callLinkHosts := splitHosts(getEnv("CALL_LINK_HOSTS", "call.linkcard.app"))
	logHealthChecks := getEnvBool("LOG_HEALTH_CHECKS", false)
	metricsEnabled := getEnvBool("METRICS_ENABLED", true)
	vipsEnabled := getEnvBool("VIPS_ENABLED", false)

	logging.Info("  DATA_DIR:          %s", dataDir)
	logging.Info("  CACHE_DIR:         %s", cacheDir)
	logging.Info("  PORT:              %s", port)
	logging.Info("  FETCH_TIMEOUT:     %s", fetchTimeout)
	logging.Info("  IMAGE_TIMEOUT:     %s", imageTimeout)
	logging.Info("  BITMAP_CACHE_SIZE: %d", bitmapCacheSize)
	logging.Info("  CALL_LINK_HOSTS:   %s", strings.Join(callLinkHosts, ", "))
	logging.Info("  METRICS_ENABLED:   %v", metricsEnabled)
	logging.Info("  VIPS_ENABLED:      %v", vipsEnabled)
	logging.Info("  LOG_LEVEL:         %s", logging.GetLevel())

	var err error
	dataDir, err = filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}
	cacheDir, err = filepath.Abs(cacheDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve cache directory path: %w", err)
	}

	config := &Config{
		DataDir:         dataDir,
		CacheDir:        cacheDir,
		Port:            port,
		FetchTimeout:    fetchTimeout,
		ImageTimeout:    imageTimeout,
		BitmapCacheSize: bitmapCacheSize,
		CallLinkHosts:   callLinkHosts,
		LogHealthChecks: logHealthChecks,
		MetricsEnabled:  metricsEnabled,
		VipsEnabled:     vipsEnabled,
		DatabasePath:    filepath.Join(dataDir, "linkcard.db"),
		AttachmentDir:   filepath.Join(dataDir, "attachments"),
		ThumbnailDir:    filepath.Join(cacheDir, "thumbnails"),
	}

	// The data directory is required: it holds the database and payloads.
	if err := ensureDirectory(dataDir, "data"); err != nil {
		return nil, fmt.Errorf("data directory error: %w", err)
	}
	if err := testWriteAccess(dataDir); err != nil {
		return nil, fmt.Errorf("data directory is not writable: %w", err)
	}
	logging.Info("  [OK] Data directory is writable")

	if err := ensureDirectory(config.AttachmentDir, "attachments"); err != nil {
		return nil, fmt.Errorf("attachment directory error: %w", err)
	}

	// The thumbnail cache is optional; without it sent previews still
	// classify and report pixel sizes, but image resolution fails.
	config.ThumbnailsEnabled = setupOptionalDir(config.ThumbnailDir, "thumbnails")

	logging.Info("")
	logging.Info("  Feature availability:")
	logging.Info("    Database:   ENABLED (required)")
	logging.Info("    Thumbnails: %s", enabledString(config.ThumbnailsEnabled))
	logging.Info("    Metrics:    %s", enabledString(config.MetricsEnabled))

	return config, nil
}

func setupOptionalDir(path, name string) bool {
	logging.Debug("  Setting up %s directory: %s", name, path)
	if err := ensureDirectory(path, name); err != nil {
		logging.Warn("  %s directory unavailable: %v", name, err)
		return false
	}
	if err := testWriteAccess(path); err != nil {
		logging.Warn("  %s directory is not writable: %v", name, err)
		return false
	}
	return true
}

func ensureDirectory(path, name string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		if err := os.MkdirAll(path, 0755); err != nil {
			return fmt.Errorf("failed to create %s directory: %w", name, err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to stat %s directory: %w", name, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s path %s exists but is not a directory", name, path)
	}
	return nil
}

func testWriteAccess(dir string) error {
	probe := filepath.Join(dir, ".write-test")
	if err := os.WriteFile(probe, []byte("ok"), 0644); err != nil {
		return err
	}
	if err := os.Remove(probe); err != nil {
		logging.Warn("failed to remove write probe %s: %v", probe, err)
	}
	return nil
}

func enabledString(enabled bool) string {
	if enabled {
		return "ENABLED"
	}
	return "DISABLED"
}

func splitHosts(s string) []string {
	var hosts []string
	for _, h := range strings.Split(s, ",") {
		h = strings.TrimSpace(h)
		if h != "" {
			hosts = append(hosts, h)
		}
	}
	return hosts
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	switch strings.ToLower(value) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		logging.Warn("  Invalid %s value %q, using default %v", key, value, fallback)
		return fallback
	}
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		logging.Warn("  Invalid %s value %q, using default %d", key, value, fallback)
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		logging.Warn("  Invalid %s value %q, using default %s", key, value, fallback)
		return fallback
	}
	return d
}

// LogFatal logs a fatal startup error and exits.
func LogFatal(format string, args ...interface{}) {
	logging.Fatal(format, args...)
}

// LogServerStarted logs the listening port and total startup time.
func LogServerStarted(port string, elapsed time.Duration) {
	logging.Info("Server listening on :%s (started in %s)", port, elapsed)
}

// LogShutdownInitiated logs the start of a graceful shutdown.
func LogShutdownInitiated(signal string) {
	logging.Info("Received %s, shutting down gracefully", signal)
}

// LogShutdownStep logs an individual shutdown step.
func LogShutdownStep(step string) {
	logging.Info("  %s...", step)
}

// LogShutdownComplete logs the end of a graceful shutdown.
func LogShutdownComplete() {
	logging.Info("Shutdown complete")
}
