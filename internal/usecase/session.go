package usecase

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"Pokedex/internal/domain"
	"Pokedex/internal/ports"
)

// WarmPageSize is how many leading entries are enriched during bootstrap.
const WarmPageSize = 20

// Phase is the global loading state of a session.
type Phase string

const (
	PhaseLoading Phase = "loading"
	PhaseReady   Phase = "ready"
)

// Catalog is the store surface the session drives.
type Catalog interface {
	ports.EntityStore
	LoadAll(ctx context.Context, source ports.CatalogSource) ([]domain.Pokemon, error)
}

// SessionDeps wires the collaborators of a browsing session.
type SessionDeps struct {
	Store         Catalog
	Client        ports.CatalogClient
	Scheduler     *Scheduler
	WarmFirstPage bool
	Logger        *slog.Logger
}

// Session owns the bootstrap of one browsing session: Loading until the bulk
// read succeeds, then Ready for good.
type Session struct {
	id        string
	store     Catalog
	client    ports.CatalogClient
	scheduler *Scheduler
	warm      bool
	logger    *slog.Logger

	once  sync.Once
	mu    sync.RWMutex
	phase Phase
	err   error
	ready chan struct{}
}

// NewSession constructs a session in the Loading phase.
func NewSession(deps SessionDeps) *Session {
	id := uuid.NewString()
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Session{
		id:        id,
		store:     deps.Store,
		client:    deps.Client,
		scheduler: deps.Scheduler,
		warm:      deps.WarmFirstPage,
		logger:    logger.With("session", id),
		phase:     PhaseLoading,
		ready:     make(chan struct{}),
	}
}

// ID identifies the session in logs.
func (s *Session) ID() string {
	return s.id
}

// Bootstrap performs the bulk load exactly once. On failure the session stays
// in Loading and Err reports the cause; there is no automatic retry.
func (s *Session) Bootstrap(ctx context.Context) error {
	s.once.Do(func() {
		s.logger.Info("bootstrap started")

		entries, err := s.store.LoadAll(ctx, s.client)
		if err != nil {
			s.logger.Error("bulk load failed", "error", err)
			s.mu.Lock()
			s.err = err
			s.mu.Unlock()
			return
		}

		if s.warm && s.scheduler != nil {
			first := entries
			if len(first) > WarmPageSize {
				first = first[:WarmPageSize]
			}
			if failed := s.scheduler.EnsureAll(ctx, first); failed > 0 {
				s.logger.Warn("warm page partially enriched", "failed", failed, "total", len(first))
			}
		}

		s.mu.Lock()
		s.phase = PhaseReady
		s.mu.Unlock()
		close(s.ready)

		s.logger.Info("session ready", "entries", len(entries))
	})
	return s.Err()
}

// Phase returns the current phase.
func (s *Session) Phase() Phase {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.phase
}

// IsLoading reports whether the bulk load has not yet succeeded.
func (s *Session) IsLoading() bool {
	return s.Phase() == PhaseLoading
}

// Err returns the bulk load failure, if any.
func (s *Session) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

// Ready is closed once the session reaches PhaseReady.
func (s *Session) Ready() <-chan struct{} {
	return s.ready
}

// Pokemon returns an enriched entry for id, which may also be a name. Entries
// already enriched are served from the store; otherwise the detail is read
// directly and merged back. Entries unknown to the store are returned without
// being added to it.
func (s *Session) Pokemon(ctx context.Context, id string) (domain.Pokemon, error) {
	if p, ok := s.store.Get(id); ok && p.Enriched() {
		return p, nil
	}

	record, err := s.client.DetailByID(ctx, id)
	if err != nil {
		return domain.Pokemon{}, fmt.Errorf("pokemon %s: %w", id, &domain.DetailFetchError{ID: id, Err: err})
	}

	enriched := domain.Pokemon{ID: record.ID, Name: record.Name}.WithDetail(record.Detail)
	if s.store.Merge(enriched) {
		if p, ok := s.store.Get(record.ID); ok {
			return p, nil
		}
	}

	enriched.ImageURL = record.Detail.ArtworkURL
	return enriched, nil
}
