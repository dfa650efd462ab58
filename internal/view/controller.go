// Package view derives the paged, filtered slice of the catalog that
// presentation code renders, and triggers enrichment for it.
package view

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"

	"Pokedex/internal/domain"
	"Pokedex/internal/ports"
)

// PageSize is the fixed number of entries per page.
const PageSize = 20

// LoadState reports whether the initial bulk load is still pending.
type LoadState interface {
	IsLoading() bool
}

// Page is what presentation code sees.
type Page struct {
	Entries    []domain.Pokemon
	Number     int
	TotalPages int
	SearchTerm string
	Loading    bool
}

// Options wires a Controller.
type Options struct {
	Store    ports.EntityStore
	Enricher ports.Enricher
	Session  LoadState
	// OnChange is called with the recomputed page when a merge touches a
	// visible entry. Calls are serialized; listeners never run concurrently.
	OnChange func(Page)
	Logger   *slog.Logger
}

// Controller owns pagination and search state for the list view.
type Controller struct {
	store    ports.EntityStore
	enricher ports.Enricher
	session  LoadState
	onChange func(Page)
	logger   *slog.Logger

	notifyMu sync.Mutex

	mu          sync.Mutex
	page        int
	term        string
	unsubscribe func()
}

// NewController starts on page 1 with an empty search and subscribes to
// store merges. Call Close to unsubscribe.
func NewController(opts Options) *Controller {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	c := &Controller{
		store:    opts.Store,
		enricher: opts.Enricher,
		session:  opts.Session,
		onChange: opts.OnChange,
		logger:   logger,
		page:     1,
	}
	c.unsubscribe = opts.Store.Subscribe(c.merged)
	return c
}

// Close detaches the controller from the store.
func (c *Controller) Close() {
	c.mu.Lock()
	unsubscribe := c.unsubscribe
	c.unsubscribe = nil
	c.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
}

// Page returns the current page without triggering enrichment.
func (c *Controller) Page() Page {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// SetSearchTerm changes the filter. A non-empty term jumps back to page 1;
// clearing the term keeps the current page as long as it still exists.
func (c *Controller) SetSearchTerm(ctx context.Context, term string) Page {
	c.mu.Lock()
	c.term = term
	if term != "" {
		c.page = 1
	} else {
		c.page = clamp(c.page, totalPages(len(c.filteredLocked())))
	}
	c.mu.Unlock()

	return c.Refresh(ctx)
}

// Next moves forward one page; it does nothing on the last page.
func (c *Controller) Next(ctx context.Context) Page {
	c.mu.Lock()
	if c.page < totalPages(len(c.filteredLocked())) {
		c.page++
	}
	c.mu.Unlock()

	return c.Refresh(ctx)
}

// Prev moves back one page; it does nothing on the first page.
func (c *Controller) Prev(ctx context.Context) Page {
	c.mu.Lock()
	if c.page > 1 {
		c.page--
	}
	c.mu.Unlock()

	return c.Refresh(ctx)
}

// GoTo jumps to page n, clamped into the valid range.
func (c *Controller) GoTo(ctx context.Context, n int) Page {
	c.mu.Lock()
	c.page = clamp(n, totalPages(len(c.filteredLocked())))
	c.mu.Unlock()

	return c.Refresh(ctx)
}

// Refresh recomputes the visible page and schedules enrichment for every
// summary-only entry on it. It is the only place enrichment is requested.
func (c *Controller) Refresh(ctx context.Context) Page {
	c.mu.Lock()
	page := c.snapshotLocked()
	c.mu.Unlock()

	pending := make([]domain.Pokemon, 0, len(page.Entries))
	for _, p := range page.Entries {
		if !p.Enriched() {
			pending = append(pending, p)
		}
	}
	if len(pending) > 0 && c.enricher != nil {
		c.logger.Debug("scheduling enrichment", "page", page.Number, "pending", len(pending))
		c.enricher.Schedule(ctx, pending)
	}
	return page
}

func (c *Controller) merged(id string) {
	if c.onChange == nil {
		return
	}

	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()

	c.mu.Lock()
	page := c.snapshotLocked()
	c.mu.Unlock()

	for _, p := range page.Entries {
		if p.ID == id {
			c.onChange(page)
			return
		}
	}
}

func (c *Controller) snapshotLocked() Page {
	filtered := c.filteredLocked()
	total := totalPages(len(filtered))

	start := (c.page - 1) * PageSize
	end := start + PageSize
	if start > len(filtered) {
		start = len(filtered)
	}
	if end > len(filtered) {
		end = len(filtered)
	}

	entries := make([]domain.Pokemon, end-start)
	copy(entries, filtered[start:end])

	return Page{
		Entries:    entries,
		Number:     c.page,
		TotalPages: total,
		SearchTerm: c.term,
		Loading:    c.session != nil && c.session.IsLoading(),
	}
}

func (c *Controller) filteredLocked() []domain.Pokemon {
	all := c.store.All()
	if c.term == "" {
		return all
	}

	needle := strings.ToLower(c.term)
	out := make([]domain.Pokemon, 0, len(all))
	for _, p := range all {
		if strings.Contains(strings.ToLower(p.Name), needle) {
			out = append(out, p)
		}
	}
	return out
}

func totalPages(n int) int {
	return (n + PageSize - 1) / PageSize
}

func clamp(page, total int) int {
	if page > total {
		page = total
	}
	if page < 1 {
		page = 1
	}
	return page
}
