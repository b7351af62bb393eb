package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	AppName    = "readr"
	AppVersion = "1.0.0"
	AppRepo    = "https://github.com/readr-app/readr"
)

// UserAgent identifies the fetcher to feed hosts.
var UserAgent = "Mozilla/5.0 (compatible; " + AppName + "/" + AppVersion + "; +" + AppRepo + ")"

// BrowserUserAgent is used when fetching article pages for readability.
const BrowserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/135.0.0.0 Safari/537.36"

const (
	DefaultFeedURL      = "https://feeds.foxnews.com/foxnews/latest"
	DefaultFeedTitle    = "Fox News"
	DefaultFeedCategory = "News"
)

type Config struct {
	Addr      string
	DBPath    string
	DataDir   string
	StaticDir string
	LogLevel  string
	NodeID    int64

	RefreshSchedule    string
	RefreshTimeout     time.Duration
	RefreshConcurrency int
	HostRate           float64
	FetchRetries       int
	ProxyURL           string

	SessionKey string

	DefaultFeedURL      string
	DefaultFeedTitle    string
	DefaultFeedCategory string
}

// ClientConfig configures the terminal client.
type ClientConfig struct {
	APIURL   string
	Email    string
	Password string
	LogFile  string
}

// Load reads .env (if present) and the process environment.
func Load() Config {
	_ = godotenv.Load()

	dataDir := getEnv("READR_DATA_DIR", "./data")
	path := os.Getenv("READR_DB_PATH")
	if path == "" {
		path = filepath.Join(dataDir, "readr.db")
	}
	staticDir := os.Getenv("READR_STATIC_DIR")
	if staticDir != "" {
		staticDir = filepath.Clean(staticDir)
	}

	return Config{
		Addr:      getEnv("READR_ADDR", ":8090"),
		DBPath:    filepath.Clean(path),
		DataDir:   filepath.Clean(dataDir),
		StaticDir: staticDir,
		LogLevel:  getEnv("READR_LOG_LEVEL", "info"),
		NodeID:    getInt64("READR_NODE_ID", 1),

		RefreshSchedule:    getEnv("READR_REFRESH_SCHEDULE", "@every 15m"),
		RefreshTimeout:     getDuration("READR_REFRESH_TIMEOUT", 10*time.Minute),
		RefreshConcurrency: int(getInt64("READR_REFRESH_CONCURRENCY", 4)),
		HostRate:           getFloat("READR_HOST_RATE", 2),
		FetchRetries:       int(getInt64("READR_FETCH_RETRIES", 3)),
		ProxyURL:           strings.TrimSpace(os.Getenv("READR_PROXY_URL")),

		SessionKey: os.Getenv("READR_SESSION_KEY"),

		DefaultFeedURL:      getEnv("READR_DEFAULT_FEED_URL", DefaultFeedURL),
		DefaultFeedTitle:    getEnv("READR_DEFAULT_FEED_TITLE", DefaultFeedTitle),
		DefaultFeedCategory: getEnv("READR_DEFAULT_FEED_CATEGORY", DefaultFeedCategory),
	}
}

// LoadClient reads the terminal client settings.
func LoadClient() ClientConfig {
	_ = godotenv.Load()

	return ClientConfig{
		APIURL:   strings.TrimRight(getEnv("READR_API_URL", "http://localhost:8090"), "/"),
		Email:    os.Getenv("READR_EMAIL"),
		Password: os.Getenv("READR_PASSWORD"),
		LogFile:  getEnv("READR_LOG_FILE", filepath.Join(os.TempDir(), "readr-tui.log")),
	}
}

func getEnv(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func getInt64(key string, fallback int64) int64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || value < 0 {
		return fallback
	}
	return value
}

func getFloat(key string, fallback float64) float64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}

func getDuration(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	value, err := time.ParseDuration(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}
