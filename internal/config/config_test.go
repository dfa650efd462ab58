package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "pokedex.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{configPathEnv, apiURLEnv, logLevelEnv, listLimitEnv} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg := Load()
	assert.Equal(t, defaultBaseURL, cfg.API.BaseURL)
	assert.Equal(t, 1302, cfg.API.ListLimit)
	assert.Equal(t, 15*time.Second, cfg.API.TimeoutDuration())
	assert.Equal(t, defaultUserAgent, cfg.API.UserAgent)
	assert.Contains(t, cfg.Images.ArtworkTemplate, "official-artwork/%s.png")
	assert.True(t, cfg.Enrichment.Warm())
	assert.Equal(t, 10.0, cfg.Enrichment.RequestsPerSecond)
	assert.Equal(t, uint32(5), cfg.Enrichment.BreakerMaxFailures)
	assert.Equal(t, 30*time.Second, cfg.Enrichment.BreakerTimeoutDuration())
	assert.Equal(t, time.Hour, cfg.Cache.TTLDuration())
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadMergesFile(t *testing.T) {
	clearEnv(t)

	path := writeConfig(t, `
api:
  baseUrl: https://mirror.test/api/v2
  timeout: 3s
enrichment:
  warmFirstPage: false
  burst: 2
cache:
  ttl: 10m
logging:
  level: debug
`)
	t.Setenv(configPathEnv, path)

	cfg := Load()
	assert.Equal(t, "https://mirror.test/api/v2", cfg.API.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.API.TimeoutDuration())
	assert.Equal(t, 1302, cfg.API.ListLimit, "unset fields keep defaults")
	assert.False(t, cfg.Enrichment.Warm())
	assert.Equal(t, 2, cfg.Enrichment.Burst)
	assert.Equal(t, 10.0, cfg.Enrichment.RequestsPerSecond)
	assert.Equal(t, 10*time.Minute, cfg.Cache.TTLDuration())
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestEnvOverridesFile(t *testing.T) {
	clearEnv(t)

	path := writeConfig(t, "api:\n  baseUrl: https://file.test\n  listLimit: 50\n")
	t.Setenv(apiURLEnv, "https://env.test")
	t.Setenv(listLimitEnv, "151")
	t.Setenv(logLevelEnv, "warn")

	cfg := LoadFrom(path)
	assert.Equal(t, "https://env.test", cfg.API.BaseURL)
	assert.Equal(t, 151, cfg.API.ListLimit)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestInvalidValuesFallBack(t *testing.T) {
	clearEnv(t)

	path := writeConfig(t, `
api:
  listLimit: -4
  timeout: soon
enrichment:
  requestsPerSecond: -1
  breakerTimeout: 0s
cache:
  ttl: forever
`)
	t.Setenv(listLimitEnv, "many")

	cfg := LoadFrom(path)
	assert.Equal(t, defaultListLimit, cfg.API.ListLimit)
	assert.Equal(t, defaultTimeout, cfg.API.TimeoutDuration())
	assert.Equal(t, float64(defaultRPS), cfg.Enrichment.RequestsPerSecond)
	assert.Equal(t, defaultBreakerTimeout, cfg.Enrichment.BreakerTimeoutDuration())
	assert.Equal(t, defaultCacheTTL, cfg.Cache.TTLDuration())
}

func TestMissingOrBrokenFileUsesDefaults(t *testing.T) {
	clearEnv(t)

	cfg := LoadFrom(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Equal(t, defaultBaseURL, cfg.API.BaseURL)

	cfg = LoadFrom(writeConfig(t, "api: [not, a, map"))
	assert.Equal(t, defaultBaseURL, cfg.API.BaseURL)
}
