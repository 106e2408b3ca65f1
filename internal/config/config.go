package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config captures runtime configuration sourced from environment variables.
type Config struct {
	Environment  string
	HTTPPort     string
	DatabasePath string
	FrontendDir  string

	// UploadsDir holds templates, thumbnails, generated PDFs and batch
	// directories. Served statically under /uploads.
	UploadsDir string

	// BaseURL is the public URL encoded into verification QR codes.
	BaseURL string

	// GotenbergURL points at the document conversion service.
	GotenbergURL     string
	GotenbergTimeout time.Duration

	// ChromePath optionally pins the headless browser binary used for
	// thumbnail rendering. Empty means chromedp's default lookup.
	ChromePath string

	JWTSecret string

	// NotifyURLs is an optional list of shoutrrr destinations that receive
	// issue/batch events.
	NotifyURLs []string

	// CleanupMaxAge is how long stray conversion intermediates may linger
	// in the uploads directory before the scheduled sweep removes them.
	CleanupMaxAge time.Duration
}

// Load reads env vars and falls back to defaults so the server can boot with zero configuration.
func Load() (Config, error) {
	cfg := Config{
		Environment:      getEnv("VC_ENV", "development"),
		HTTPPort:         getEnv("VC_HTTP_PORT", "8080"),
		DatabasePath:     getEnv("VC_DB_PATH", filepath.Join("data", "verifycert.db")),
		FrontendDir:      getEnv("VC_FRONTEND_DIR", filepath.Clean(filepath.Join("..", "client", "dist"))),
		UploadsDir:       getEnv("VC_UPLOADS_DIR", "uploads"),
		BaseURL:          getEnv("VC_BASE_URL", "http://localhost:3000"),
		GotenbergURL:     getEnv("VC_GOTENBERG_URL", "http://localhost:3500"),
		GotenbergTimeout: getDuration("VC_GOTENBERG_TIMEOUT", 90*time.Second),
		ChromePath:       os.Getenv("VC_CHROME_PATH"),
		JWTSecret:        getEnv("VC_JWT_SECRET", "change-me-in-production"),
		CleanupMaxAge:    getDuration("VC_CLEANUP_MAX_AGE", 24*time.Hour),
	}

	if urls := os.Getenv("VC_NOTIFY_URLS"); urls != "" {
		for _, u := range strings.Split(urls, ",") {
			if u = strings.TrimSpace(u); u != "" {
				cfg.NotifyURLs = append(cfg.NotifyURLs, u)
			}
		}
	}

	if err := os.MkdirAll(filepath.Dir(cfg.DatabasePath), 0o755); err != nil {
		return Config{}, fmt.Errorf("ensure data directory: %w", err)
	}
	if err := os.MkdirAll(cfg.UploadsDir, 0o755); err != nil {
		return Config{}, fmt.Errorf("ensure uploads directory: %w", err)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}

	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return fallback
	}
	return d
}
