package config_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"readr/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	for _, key := range []string{
		"READR_ADDR", "READR_DATA_DIR", "READR_DB_PATH", "READR_REFRESH_SCHEDULE",
		"READR_REFRESH_CONCURRENCY", "READR_HOST_RATE", "READR_DEFAULT_FEED_URL",
	} {
		t.Setenv(key, "")
	}

	cfg := config.Load()
	require.Equal(t, ":8090", cfg.Addr)
	require.Equal(t, filepath.Join("data", "readr.db"), cfg.DBPath)
	require.Equal(t, "@every 15m", cfg.RefreshSchedule)
	require.Equal(t, 4, cfg.RefreshConcurrency)
	require.Equal(t, float64(2), cfg.HostRate)
	require.Equal(t, config.DefaultFeedURL, cfg.DefaultFeedURL)
	require.Equal(t, "News", cfg.DefaultFeedCategory)
}

func TestLoad_Overrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("READR_ADDR", ":9999")
	t.Setenv("READR_DATA_DIR", "/var/lib/readr")
	t.Setenv("READR_DB_PATH", "")
	t.Setenv("READR_REFRESH_CONCURRENCY", "8")
	t.Setenv("READR_REFRESH_TIMEOUT", "90s")
	t.Setenv("READR_HOST_RATE", "not-a-number")

	cfg := config.Load()
	require.Equal(t, ":9999", cfg.Addr)
	require.Equal(t, "/var/lib/readr/readr.db", cfg.DBPath)
	require.Equal(t, 8, cfg.RefreshConcurrency)
	require.Equal(t, 90*time.Second, cfg.RefreshTimeout)
	require.Equal(t, float64(2), cfg.HostRate)
}

func TestLoadClient_TrimsTrailingSlash(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("READR_API_URL", "http://reader.local:8090/")

	cfg := config.LoadClient()
	require.Equal(t, "http://reader.local:8090", cfg.APIURL)
}
