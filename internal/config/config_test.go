package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "enrichment", cfg.Service.Name)
	assert.Equal(t, 8082, cfg.Service.Port)
	assert.Equal(t, 4, cfg.Service.Concurrency)
	assert.Equal(t, 100, cfg.Service.BatchSize)
	assert.Equal(t, 30*time.Second, cfg.Service.PollInterval)

	assert.False(t, cfg.Enrichment.EnableZeroShot, "zero-shot is off by default")
	assert.Empty(t, cfg.Enrichment.MLServiceURL, "no sidecar by default")
	assert.Equal(t, 8, cfg.Enrichment.KeywordLimit)
	assert.Equal(t, 5, cfg.Enrichment.ValuePhraseLimit)
	assert.InDelta(t, 0.55, cfg.Enrichment.MinLanguageConfidence, 1e-9)
	assert.InDelta(t, 0.45, cfg.Enrichment.ZeroShotThreshold, 1e-9)

	assert.Equal(t, "sqlite3", cfg.Database.Driver)
	assert.Equal(t, "screenaso.db", cfg.Database.Path)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, "reviews.enriched", cfg.Redis.Channel)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
service:
  port: 9090
  concurrency: 8
enrichment:
  enable_zero_shot: true
  keyword_limit: 12
  ml_service_url: http://localhost:5000
database:
  driver: postgres
  host: db.internal
redis:
  enabled: true
  channel: custom.channel
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Service.Port)
	assert.Equal(t, 8, cfg.Service.Concurrency)
	assert.True(t, cfg.Enrichment.EnableZeroShot)
	assert.Equal(t, 12, cfg.Enrichment.KeywordLimit)
	assert.Equal(t, "http://localhost:5000", cfg.Enrichment.MLServiceURL)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, "custom.channel", cfg.Redis.Channel)

	// Untouched keys still default.
	assert.Equal(t, 100, cfg.Service.BatchSize)
	assert.Equal(t, 5432, cfg.Database.Port)
}

func TestEnvOverridesWinOverFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("service:\n  port: 9090\n"), 0o600))

	t.Setenv("ENRICHMENT_PORT", "7070")
	t.Setenv("ENRICHMENT_ENABLE_ZERO_SHOT", "true")
	t.Setenv("DB_DRIVER", "postgres")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Service.Port)
	assert.True(t, cfg.Enrichment.EnableZeroShot)
	assert.Equal(t, "postgres", cfg.Database.Driver)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	assert.Error(t, err)
}

func TestPath(t *testing.T) {
	assert.Equal(t, "config.yml", Path("config.yml"))
	t.Setenv("CONFIG_PATH", "/etc/enrichd/config.yml")
	assert.Equal(t, "/etc/enrichd/config.yml", Path("config.yml"))
}
