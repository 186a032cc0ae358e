package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ADS_CSV_URL", "https://example.com/export.csv")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 15*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, 10, cfg.TopKeywords)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, DefaultColumns(), cfg.Columns)
	assert.Equal(t, 50.0, cfg.RateLimit.RPS)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("ADS_CSV_URL", "https://example.com/export.csv")
	t.Setenv("PORT", "9090")
	t.Setenv("HTTP_TIMEOUT", "3s")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("TOP_KEYWORDS", "5")
	t.Setenv("CSV_COL_DATE", "Day")
	t.Setenv("RATE_LIMIT_RPS", "0")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 3*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, 5, cfg.TopKeywords)
	assert.Equal(t, "Day", cfg.Columns.Date)
	assert.Zero(t, cfg.RateLimit.RPS)
}

func TestLoadColumnsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "columns.yaml")
	require.NoError(t, os.WriteFile(path, []byte("date: Day\nimpressions: Impr.\n"), 0o644))
	t.Setenv("ADS_CSV_URL", "https://example.com/export.csv")
	t.Setenv("CSV_COLUMNS_FILE", path)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "Day", cfg.Columns.Date)
	assert.Equal(t, "Impr.", cfg.Columns.Impressions)
	assert.Equal(t, "Clicks", cfg.Columns.Clicks)
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"missing url", map[string]string{}},
		{"bad url", map[string]string{"ADS_CSV_URL": "not a url"}},
		{"bad level", map[string]string{"ADS_CSV_URL": "https://x.test/a.csv", "LOG_LEVEL": "loud"}},
		{"bad port", map[string]string{"ADS_CSV_URL": "https://x.test/a.csv", "PORT": "http"}},
		{"missing columns file", map[string]string{"ADS_CSV_URL": "https://x.test/a.csv", "CSV_COLUMNS_FILE": "/nonexistent/cols.yaml"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("ADS_CSV_URL", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
