package usecase

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

// Scheduler upgrades visible summary-only entries to enriched ones, issuing
// at most one detail read per id at a time.
type Scheduler struct {
	store    ports.EntityStore
	source   ports.DetailSource
	metrics  *metrics.Metrics
	logger   *slog.Logger
	inFlight sync.Map // id -> struct{}
	wg       sync.WaitGroup
}

var _ ports.Enricher = (*Scheduler)(nil)

// NewScheduler wires the store that receives merges and the detail source.
func NewScheduler(store ports.EntityStore, source ports.DetailSource, m *metrics.Metrics, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Scheduler{store: store, source: source, metrics: m, logger: logger}
}

// Ensure enriches p unless it already is enriched or a read for it is running.
// A failed read leaves the entry summary-only; a later call may retry.
func (s *Scheduler) Ensure(ctx context.Context, p domain.Pokemon) error {
	if s.enriched(p) {
		s.metrics.Enrichment(metrics.OutcomeSkippedEnriched)
		return nil
	}

	if _, running := s.inFlight.LoadOrStore(p.ID, struct{}{}); running {
		s.metrics.Enrichment(metrics.OutcomeSkippedInFlight)
		return nil
	}
	defer s.inFlight.Delete(p.ID)

	// Another read may have finished between the guard and the marker.
	if s.enriched(p) {
		s.metrics.Enrichment(metrics.OutcomeSkippedEnriched)
		return nil
	}

	s.metrics.InFlight(1)
	defer s.metrics.InFlight(-1)

	record, err := s.source.Detail(ctx, p.DetailURL)
	if err == nil && record.ID != p.ID {
		err = fmt.Errorf("response id %s does not match", record.ID)
	}
	if err != nil {
		s.metrics.Enrichment(metrics.OutcomeFailed)
		s.logger.Warn("detail fetch failed", "id", p.ID, "name", p.Name, "error", err)
		return &domain.DetailFetchError{ID: p.ID, Err: err}
	}

	s.store.Merge(domain.Pokemon{ID: p.ID, Name: record.Name}.WithDetail(record.Detail))
	s.metrics.Enrichment(metrics.OutcomeEnriched)
	s.logger.Debug("entry enriched", "id", p.ID, "name", record.Name)
	return nil
}

// Schedule starts Ensure in the background for every summary-only entry.
// Failures are logged by Ensure and otherwise dropped.
func (s *Scheduler) Schedule(ctx context.Context, entries []domain.Pokemon) {
	for _, p := range entries {
		if p.Enriched() {
			continue
		}
		s.wg.Add(1)
		go func(p domain.Pokemon) {
			defer s.wg.Done()
			_ = s.Ensure(ctx, p)
		}(p)
	}
}

// EnsureAll enriches entries concurrently and waits for all of them.
// It returns the number of entries that failed.
func (s *Scheduler) EnsureAll(ctx context.Context, entries []domain.Pokemon) int {
	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		failed int
	)
	for _, p := range entries {
		wg.Add(1)
		go func(p domain.Pokemon) {
			defer wg.Done()
			if err := s.Ensure(ctx, p); err != nil {
				mu.Lock()
				failed++
				mu.Unlock()
			}
		}(p)
	}
	wg.Wait()
	return failed
}

// Wait blocks until every scheduled enrichment has finished.
func (s *Scheduler) Wait() {
	s.wg.Wait()
}

// InFlight reports whether a detail read for id is running.
func (s *Scheduler) InFlight(id string) bool {
	_, ok := s.inFlight.Load(id)
	return ok
}

func (s *Scheduler) enriched(p domain.Pokemon) bool {
	if p.Enriched() {
		return true
	}
	current, ok := s.store.Get(p.ID)
	return ok && current.Enriched()
}
