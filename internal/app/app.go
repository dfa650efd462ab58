package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"

	"Pokedex/internal/catalog"
	"Pokedex/internal/config"
	"Pokedex/internal/infrastructure/metrics"
	"Pokedex/internal/infrastructure/pokeapi"
	"Pokedex/internal/logging"
	"Pokedex/internal/usecase"
	"Pokedex/internal/view"
)

// Option customises Application construction.
type Option func(*options)

type options struct {
	httpClient *http.Client
	onChange   func(view.Page)
}

// WithHTTPClient replaces the HTTP client used for API reads.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

// WithPageListener is called whenever an entry on the visible page is enriched.
// Calls arrive one at a time, from the goroutine that finished the enrichment.
func WithPageListener(fn func(view.Page)) Option {
	return func(o *options) { o.onChange = fn }
}

// Application wires configs to use cases and lifecycle orchestration. It owns
// everything that lives for one browsing session.
type Application struct {
	cfg       config.Config
	logger    *slog.Logger
	registry  *prometheus.Registry
	client    *pokeapi.Client
	store     *catalog.Store
	scheduler *usecase.Scheduler
	session   *usecase.Session
	view      *view.Controller
	scroll    *view.ScrollMemory
}

// New builds an application instance ready to Run.
func New(cfg config.Config, baseLogger *slog.Logger, opts ...Option) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	registry := prometheus.NewRegistry()
	m, err := metrics.New(registry)
	if err != nil {
		return nil, fmt.Errorf("init metrics: %w", err)
	}

	client := pokeapi.NewClient(pokeapi.Config{
		BaseURL:            cfg.API.BaseURL,
		UserAgent:          cfg.API.UserAgent,
		Timeout:            cfg.API.TimeoutDuration(),
		RequestsPerSecond:  cfg.Enrichment.RequestsPerSecond,
		Burst:              cfg.Enrichment.Burst,
		CacheTTL:           cfg.Cache.TTLDuration(),
		BreakerMaxFailures: cfg.Enrichment.BreakerMaxFailures,
		BreakerTimeout:     cfg.Enrichment.BreakerTimeoutDuration(),
	}, o.httpClient, m, baseLogger.With("component", "pokeapi"))

	store := catalog.NewStore(catalog.Options{
		ArtworkTemplate: cfg.Images.ArtworkTemplate,
		ListLimit:       cfg.API.ListLimit,
		Metrics:         m,
		Logger:          baseLogger.With("component", "store"),
	})

	scheduler := usecase.NewScheduler(store, client, m, baseLogger.With("component", "scheduler"))

	session := usecase.NewSession(usecase.SessionDeps{
		Store:         store,
		Client:        client,
		Scheduler:     scheduler,
		WarmFirstPage: cfg.Enrichment.Warm(),
		Logger:        baseLogger.With("component", "session"),
	})

	controller := view.NewController(view.Options{
		Store:    store,
		Enricher: scheduler,
		Session:  session,
		OnChange: o.onChange,
		Logger:   baseLogger.With("component", "view"),
	})

	return &Application{
		cfg:       cfg,
		logger:    baseLogger,
		registry:  registry,
		client:    client,
		store:     store,
		scheduler: scheduler,
		session:   session,
		view:      controller,
		scroll:    &view.ScrollMemory{},
	}, nil
}

// Run bootstraps the session and, once it is ready, requests enrichment for
// the first visible page.
func (a *Application) Run(ctx context.Context) error {
	if err := a.session.Bootstrap(ctx); err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}
	a.view.Refresh(ctx)
	return nil
}

// Settle blocks until background enrichment has finished.
func (a *Application) Settle() {
	a.scheduler.Wait()
}

// Close waits for background work and ends the session.
func (a *Application) Close() {
	a.view.Close()
	a.scheduler.Wait()
	a.store.Close()
	a.logger.Debug("session closed", "session", a.session.ID())
}

// View is the list view controller.
func (a *Application) View() *view.Controller { return a.view }

// Session is the bootstrap state of the application.
func (a *Application) Session() *usecase.Session { return a.session }

// Scroll is the list view's scroll memory.
func (a *Application) Scroll() *view.ScrollMemory { return a.scroll }

// Gatherer exposes the application's metrics.
func (a *Application) Gatherer() prometheus.Gatherer { return a.registry }
