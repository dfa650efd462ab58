// Package catalog holds the session's in-memory collection of catalog entries.
package catalog

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"Pokedex/internal/domain"
	"Pokedex/internal/infrastructure/metrics"
	"Pokedex/internal/ports"
)

// DefaultArtworkTemplate points at the official artwork sprite for an id.
const DefaultArtworkTemplate = "https://raw.githubusercontent.com/PokeAPI/sprites/master/sprites/pokemon/other/official-artwork/%s.png"

// DefaultListLimit asks for the whole catalog in a single listing read.
const DefaultListLimit = 1302

// Options configures a Store.
type Options struct {
	ArtworkTemplate string
	ListLimit       int
	Metrics         *metrics.Metrics
	Logger          *slog.Logger
}

// Store keeps exactly one entry per id, in listing order.
type Store struct {
	mu        sync.RWMutex
	entries   []domain.Pokemon
	index     map[string]int
	loaded    bool
	closed    bool
	observers map[int]func(id string)
	nextObs   int

	artwork   string
	listLimit int
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

var _ ports.EntityStore = (*Store)(nil)

// NewStore builds an empty store. Call Close when the session ends.
func NewStore(opts Options) *Store {
	if opts.ArtworkTemplate == "" {
		opts.ArtworkTemplate = DefaultArtworkTemplate
	}
	if opts.ListLimit <= 0 {
		opts.ListLimit = DefaultListLimit
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Store{
		index:     map[string]int{},
		observers: map[int]func(string){},
		artwork:   opts.ArtworkTemplate,
		listLimit: opts.ListLimit,
		metrics:   opts.Metrics,
		logger:    opts.Logger,
	}
}

// LoadAll performs the bulk listing read and populates the store with
// summary-only entries in server order. It may succeed only once.
func (s *Store) LoadAll(ctx context.Context, source ports.CatalogSource) ([]domain.Pokemon, error) {
	s.mu.RLock()
	loaded := s.loaded
	s.mu.RUnlock()
	if loaded {
		return nil, domain.ErrAlreadyLoaded
	}

	entries := make([]domain.Pokemon, 0, s.listLimit)
	seen := map[string]struct{}{}
	offset := 0
	for {
		page, err := source.List(ctx, s.listLimit, offset)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrBulkLoad, err)
		}

		for _, item := range page.Results {
			id, err := domain.IDFromRef(item.URL)
			if err != nil {
				s.logger.Warn("skipping listing item", "name", item.Name, "error", err)
				continue
			}
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			entries = append(entries, domain.NewSummary(id, item.Name, item.URL, domain.ArtworkURL(s.artwork, id)))
		}

		offset += len(page.Results)
		if len(page.Results) == 0 || page.Next == "" || offset >= page.Count {
			break
		}
	}

	s.mu.Lock()
	if s.loaded {
		s.mu.Unlock()
		return nil, domain.ErrAlreadyLoaded
	}
	s.entries = entries
	for i, p := range entries {
		s.index[p.ID] = i
	}
	s.loaded = true
	s.mu.Unlock()

	s.metrics.Entries(len(entries))
	s.logger.Info("catalog loaded", "entries", len(entries))

	return s.All(), nil
}

// Loaded reports whether the bulk load has completed.
func (s *Store) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Len returns the number of entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Get looks an entry up by id.
func (s *Store) Get(id string) (domain.Pokemon, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.index[id]
	if !ok {
		return domain.Pokemon{}, false
	}
	return s.entries[i], true
}

// All returns a snapshot of every entry in insertion order.
func (s *Store) All() []domain.Pokemon {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Pokemon, len(s.entries))
	copy(out, s.entries)
	return out
}

// Merge folds enrichment data from partial into the entry with the same id.
// Unknown ids are ignored; id, image, detail URL and position never change.
// It reports whether an entry was updated.
func (s *Store) Merge(partial domain.Pokemon) bool {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false
	}
	i, ok := s.index[partial.ID]
	if !ok {
		s.mu.Unlock()
		return false
	}

	current := s.entries[i]
	if partial.Name != "" {
		current.Name = partial.Name
	}
	if incoming, enriched := partial.Detail(); enriched && domain.CanTransition(current.State, domain.StateEnriched) {
		existing, _ := current.Detail()
		current = current.WithDetail(domain.MergeDetail(existing, incoming))
	}
	s.entries[i] = current

	observers := make([]func(string), 0, len(s.observers))
	for _, fn := range s.observers {
		observers = append(observers, fn)
	}
	s.mu.Unlock()

	for _, fn := range observers {
		fn(partial.ID)
	}
	return true
}

// Subscribe registers fn to be called with the id of every merged entry.
func (s *Store) Subscribe(fn func(id string)) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := s.nextObs
	s.nextObs++
	s.observers[key] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.observers, key)
	}
}

// Close ends the session: observers are dropped and later merges are ignored.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	s.observers = map[int]func(string){}
}
