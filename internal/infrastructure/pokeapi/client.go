package pokeapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"Pokedex/internal/domain"
	"Pokedex/internal/infrastructure/metrics"
	"Pokedex/internal/ports"
)

const (
	defaultBaseURL   = "https://pokeapi.co/api/v2"
	defaultUserAgent = "Pokedex/1.0"

	kindList   = "list"
	kindDetail = "detail"
)

// Config holds the knobs of the remote catalog client.
type Config struct {
	BaseURL            string
	UserAgent          string
	Timeout            time.Duration
	RequestsPerSecond  float64
	Burst              int
	CacheTTL           time.Duration
	BreakerMaxFailures uint32
	BreakerTimeout     time.Duration
}

// DefaultConfig returns a Config aimed at the public PokeAPI.
func DefaultConfig() Config {
	return Config{
		BaseURL:            defaultBaseURL,
		UserAgent:          defaultUserAgent,
		Timeout:            15 * time.Second,
		RequestsPerSecond:  10,
		Burst:              5,
		CacheTTL:           time.Hour,
		BreakerMaxFailures: 5,
		BreakerTimeout:     30 * time.Second,
	}
}

// Client reads the catalog listing and per-entry details over HTTP.
type Client struct {
	cfg     Config
	http    *http.Client
	limiter *rate.Limiter
	cache   *cache.Cache
	breaker *gobreaker.CircuitBreaker
	metrics *metrics.Metrics
	logger  *slog.Logger
}

var _ ports.CatalogClient = (*Client)(nil)

// NewClient wires an HTTP client; zero config values fall back to DefaultConfig.
func NewClient(cfg Config, httpClient *http.Client, m *metrics.Metrics, logger *slog.Logger) *Client {
	def := DefaultConfig()
	if cfg.BaseURL == "" {
		cfg.BaseURL = def.BaseURL
	}
	cfg.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	if cfg.UserAgent == "" {
		cfg.UserAgent = def.UserAgent
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = def.CacheTTL
	}
	if cfg.BreakerMaxFailures == 0 {
		cfg.BreakerMaxFailures = def.BreakerMaxFailures
	}
	if cfg.BreakerTimeout <= 0 {
		cfg.BreakerTimeout = def.BreakerTimeout
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}

	c := &Client{
		cfg:     cfg,
		http:    httpClient,
		limiter: rate.NewLimiter(limit, burst),
		cache:   cache.New(cfg.CacheTTL, 0), // no janitor; expired entries are skipped on Get
		metrics: m,
		logger:  logger,
	}

	maxFailures := cfg.BreakerMaxFailures
	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "pokeapi-detail",
		MaxRequests: 1,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		IsSuccessful: func(err error) bool {
			// A missing entry says nothing about upstream health.
			return err == nil || errors.Is(err, domain.ErrNotFound)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	})

	return c
}

// List reads one page of the catalog listing.
func (c *Client) List(ctx context.Context, limit, offset int) (ports.ListPage, error) {
	pageURL, err := buildPageURL(c.cfg.BaseURL+"/pokemon", limit, offset)
	if err != nil {
		return ports.ListPage{}, err
	}

	var payload struct {
		Count   int    `json:"count"`
		Next    string `json:"next"`
		Results []struct {
			Name string `json:"name"`
			URL  string `json:"url"`
		} `json:"results"`
	}

	started := time.Now()
	err = c.getJSON(ctx, pageURL, &payload)
	c.metrics.ObserveRequest(kindList, started, err)
	if err != nil {
		return ports.ListPage{}, fmt.Errorf("list offset %d: %w", offset, err)
	}

	page := ports.ListPage{
		Count:   payload.Count,
		Next:    payload.Next,
		Results: make([]ports.ListItem, 0, len(payload.Results)),
	}
	for _, r := range payload.Results {
		page.Results = append(page.Results, ports.ListItem{Name: r.Name, URL: r.URL})
	}

	c.logger.Debug("listing page fetched", "offset", offset, "limit", limit, "results", len(page.Results), "count", page.Count)
	return page, nil
}

// Detail reads the full record behind ref.
func (c *Client) Detail(ctx context.Context, ref string) (ports.DetailRecord, error) {
	if cached, found := c.cache.Get(ref); found {
		if record, ok := cached.(ports.DetailRecord); ok {
			c.metrics.CacheHit()
			c.logger.Debug("detail cache hit", "ref", ref)
			return record, nil
		}
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.fetchDetail(ctx, ref)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return ports.DetailRecord{}, fmt.Errorf("detail %s: %w", ref, domain.ErrCircuitOpen)
		}
		return ports.DetailRecord{}, err
	}

	record := result.(ports.DetailRecord)
	c.cache.Set(ref, record, cache.DefaultExpiration)
	return record, nil
}

// DetailByID reads a record addressed only by its identifier.
func (c *Client) DetailByID(ctx context.Context, id string) (ports.DetailRecord, error) {
	ref := fmt.Sprintf("%s/pokemon/%s/", c.cfg.BaseURL, url.PathEscape(id))
	return c.Detail(ctx, ref)
}

// ClearCache drops every cached detail response.
func (c *Client) ClearCache() {
	c.cache.Flush()
}

func (c *Client) fetchDetail(ctx context.Context, ref string) (ports.DetailRecord, error) {
	var payload detailPayload

	started := time.Now()
	err := c.getJSON(ctx, ref, &payload)
	c.metrics.ObserveRequest(kindDetail, started, err)
	if err != nil {
		return ports.DetailRecord{}, fmt.Errorf("detail %s: %w", ref, err)
	}
	if payload.ID == 0 {
		return ports.DetailRecord{}, fmt.Errorf("detail %s: response has no id", ref)
	}

	return payload.record(), nil
}

func (c *Client) getJSON(ctx context.Context, target string, v any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s", domain.ErrNotFound, target)
	}
	if resp.StatusCode != http.StatusOK {
		preview, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("pokeapi returned %s: %s", resp.Status, strings.TrimSpace(string(preview)))
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

type detailPayload struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Height int    `json:"height"`
	Weight int    `json:"weight"`
	Types  []struct {
		Slot int `json:"slot"`
		Type struct {
			Name string `json:"name"`
		} `json:"type"`
	} `json:"types"`
	Stats []struct {
		BaseStat int `json:"base_stat"`
		Stat     struct {
			Name string `json:"name"`
		} `json:"stat"`
	} `json:"stats"`
	Sprites struct {
		Other struct {
			OfficialArtwork struct {
				FrontDefault string `json:"front_default"`
			} `json:"official-artwork"`
		} `json:"other"`
	} `json:"sprites"`
}

func (p detailPayload) record() ports.DetailRecord {
	detail := domain.Detail{
		Height:     p.Height,
		Weight:     p.Weight,
		ArtworkURL: p.Sprites.Other.OfficialArtwork.FrontDefault,
	}
	for _, t := range p.Types {
		detail.Types = append(detail.Types, t.Type.Name)
	}
	for _, s := range p.Stats {
		detail.Stats = append(detail.Stats, domain.Stat{Name: s.Stat.Name, Value: s.BaseStat})
	}

	return ports.DetailRecord{
		ID:     strconv.Itoa(p.ID),
		Name:   p.Name,
		Detail: detail,
	}
}

func buildPageURL(base string, limit, offset int) (string, error) {
	parsed, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid list url %s: %w", base, err)
	}

	query := parsed.Query()
	query.Set("limit", strconv.Itoa(limit))
	if offset > 0 {
		query.Set("offset", strconv.Itoa(offset))
	}
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}
