package config

import (
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"Pokedex/pkg/logger"
)

const (
	configPathEnv = "POKEDEX_CONFIG"
	apiURLEnv     = "POKEDEX_API_URL"
	logLevelEnv   = "POKEDEX_LOG_LEVEL"
	listLimitEnv  = "POKEDEX_LIST_LIMIT"

	defaultBaseURL         = "https://pokeapi.co/api/v2"
	defaultListLimit       = 1302
	defaultTimeout         = 15 * time.Second
	defaultUserAgent       = "Pokedex/1.0"
	defaultArtwork         = "https://raw.githubusercontent.com/PokeAPI/sprites/master/sprites/pokemon/other/official-artwork/%s.png"
	defaultRPS             = 10
	defaultBurst           = 5
	defaultBreakerFailures = 5
	defaultBreakerTimeout  = 30 * time.Second
	defaultCacheTTL        = time.Hour
	defaultLogLevel        = "info"
)

var log = logger.New("config")

// Config holds high-level settings required across the application.
type Config struct {
	API        APIConfig        `yaml:"api"`
	Images     ImagesConfig     `yaml:"images"`
	Enrichment EnrichmentConfig `yaml:"enrichment"`
	Cache      CacheConfig      `yaml:"cache"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// APIConfig describes the remote catalog API.
type APIConfig struct {
	BaseURL   string        `yaml:"baseUrl"`
	ListLimit int           `yaml:"listLimit"`
	Timeout   string        `yaml:"timeout"`
	UserAgent string        `yaml:"userAgent"`
	timeout   time.Duration `yaml:"-"`
}

// TimeoutDuration is the parsed request timeout.
func (a APIConfig) TimeoutDuration() time.Duration {
	if a.timeout > 0 {
		return a.timeout
	}
	return defaultTimeout
}

// ImagesConfig controls how artwork URLs are derived from ids.
type ImagesConfig struct {
	ArtworkTemplate string `yaml:"artworkTemplate"`
}

// EnrichmentConfig tunes detail reads.
type EnrichmentConfig struct {
	WarmFirstPage      *bool         `yaml:"warmFirstPage"`
	RequestsPerSecond  float64       `yaml:"requestsPerSecond"`
	Burst              int           `yaml:"burst"`
	BreakerMaxFailures uint32        `yaml:"breakerMaxFailures"`
	BreakerTimeout     string        `yaml:"breakerTimeout"`
	breakerTimeout     time.Duration `yaml:"-"`
}

// Warm reports whether the first page is enriched during bootstrap.
func (e EnrichmentConfig) Warm() bool {
	return e.WarmFirstPage == nil || *e.WarmFirstPage
}

// BreakerTimeoutDuration is how long an open breaker waits before probing.
func (e EnrichmentConfig) BreakerTimeoutDuration() time.Duration {
	if e.breakerTimeout > 0 {
		return e.breakerTimeout
	}
	return defaultBreakerTimeout
}

// CacheConfig sets the detail response cache lifetime.
type CacheConfig struct {
	TTL string        `yaml:"ttl"`
	ttl time.Duration `yaml:"-"`
}

// TTLDuration is the parsed cache lifetime.
func (c CacheConfig) TTLDuration() time.Duration {
	if c.ttl > 0 {
		return c.ttl
	}
	return defaultCacheTTL
}

// LoggingConfig selects the slog level.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Load reads the YAML file named by POKEDEX_CONFIG (if set) and applies
// environment overrides.
func Load() Config {
	return LoadFrom(os.Getenv(configPathEnv))
}

// LoadFrom reads YAML configuration from path (if non-empty) and applies
// environment overrides. Unreadable files and invalid values fall back to
// defaults.
func LoadFrom(path string) Config {
	cfg := defaultConfig()

	if path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	cfg.validate()
	cfg.bindDurations()

	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(apiURLEnv); v != "" {
		c.API.BaseURL = v
	}

	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}

	if v := os.Getenv(listLimitEnv); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			log.Printf("invalid %s %q, keeping %d", listLimitEnv, v, c.API.ListLimit)
		} else {
			c.API.ListLimit = n
		}
	}
}

func (c *Config) validate() {
	if c.API.ListLimit <= 0 {
		log.Printf("listLimit %d must be positive, reverting to %d", c.API.ListLimit, defaultListLimit)
		c.API.ListLimit = defaultListLimit
	}
	if c.Enrichment.RequestsPerSecond <= 0 {
		log.Printf("requestsPerSecond %v must be positive, reverting to %d", c.Enrichment.RequestsPerSecond, defaultRPS)
		c.Enrichment.RequestsPerSecond = defaultRPS
	}
	if c.Enrichment.Burst <= 0 {
		log.Printf("burst %d must be positive, reverting to %d", c.Enrichment.Burst, defaultBurst)
		c.Enrichment.Burst = defaultBurst
	}
	if c.Enrichment.BreakerMaxFailures == 0 {
		c.Enrichment.BreakerMaxFailures = defaultBreakerFailures
	}
}

func (c *Config) bindDurations() {
	c.API.timeout = parseDuration("api.timeout", c.API.Timeout, defaultTimeout)
	c.Enrichment.breakerTimeout = parseDuration("enrichment.breakerTimeout", c.Enrichment.BreakerTimeout, defaultBreakerTimeout)
	c.Cache.ttl = parseDuration("cache.ttl", c.Cache.TTL, defaultCacheTTL)
}

func parseDuration(field, value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		log.Printf("invalid %s %q, reverting to %s", field, value, fallback)
		return fallback
	}
	return d
}

func mergeConfig(base, override Config) Config {
	if override.API.BaseURL != "" {
		base.API.BaseURL = override.API.BaseURL
	}
	if override.API.ListLimit != 0 {
		base.API.ListLimit = override.API.ListLimit
	}
	if override.API.Timeout != "" {
		base.API.Timeout = override.API.Timeout
	}
	if override.API.UserAgent != "" {
		base.API.UserAgent = override.API.UserAgent
	}

	if override.Images.ArtworkTemplate != "" {
		base.Images.ArtworkTemplate = override.Images.ArtworkTemplate
	}

	if override.Enrichment.WarmFirstPage != nil {
		base.Enrichment.WarmFirstPage = override.Enrichment.WarmFirstPage
	}
	if override.Enrichment.RequestsPerSecond != 0 {
		base.Enrichment.RequestsPerSecond = override.Enrichment.RequestsPerSecond
	}
	if override.Enrichment.Burst != 0 {
		base.Enrichment.Burst = override.Enrichment.Burst
	}
	if override.Enrichment.BreakerMaxFailures != 0 {
		base.Enrichment.BreakerMaxFailures = override.Enrichment.BreakerMaxFailures
	}
	if override.Enrichment.BreakerTimeout != "" {
		base.Enrichment.BreakerTimeout = override.Enrichment.BreakerTimeout
	}

	if override.Cache.TTL != "" {
		base.Cache.TTL = override.Cache.TTL
	}

	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}

	return base
}

func defaultConfig() Config {
	warm := true
	return Config{
		API: APIConfig{
			BaseURL:   defaultBaseURL,
			ListLimit: defaultListLimit,
			Timeout:   defaultTimeout.String(),
			UserAgent: defaultUserAgent,
			timeout:   defaultTimeout,
		},
		Images: ImagesConfig{ArtworkTemplate: defaultArtwork},
		Enrichment: EnrichmentConfig{
			WarmFirstPage:      &warm,
			RequestsPerSecond:  defaultRPS,
			Burst:              defaultBurst,
			BreakerMaxFailures: defaultBreakerFailures,
			BreakerTimeout:     defaultBreakerTimeout.String(),
			breakerTimeout:     defaultBreakerTimeout,
		},
		Cache:   CacheConfig{TTL: defaultCacheTTL.String(), ttl: defaultCacheTTL},
		Logging: LoggingConfig{Level: defaultLogLevel},
	}
}
