package ports

import (
	"context"

	"Pokedex/internal/domain"
)

// ListItem is one row of the catalog listing.
type ListItem struct {
	Name string
	URL  string
}

// ListPage is a single page of the catalog listing.
type ListPage struct {
	Count   int
	Next    string
	Results []ListItem
}

// DetailRecord is a decoded detail payload correlated by ID.
type DetailRecord struct {
	ID     string
	Name   string
	Detail domain.Detail
}

// CatalogSource issues the paged listing read.
type CatalogSource interface {
	List(ctx context.Context, limit, offset int) (ListPage, error)
}

// DetailSource issues per-entry detail reads.
type DetailSource interface {
	Detail(ctx context.Context, ref string) (DetailRecord, error)
	DetailByID(ctx context.Context, id string) (DetailRecord, error)
}

// CatalogClient is the full remote API surface.
type CatalogClient interface {
	CatalogSource
	DetailSource
}

// EntityStore is the session's single source of truth for catalog entries.
type EntityStore interface {
	Get(id string) (domain.Pokemon, bool)
	All() []domain.Pokemon
	Merge(partial domain.Pokemon) bool
	Subscribe(fn func(id string)) (unsubscribe func())
}

// Enricher turns summary-only entries into enriched ones.
type Enricher interface {
	Ensure(ctx context.Context, p domain.Pokemon) error
	Schedule(ctx context.Context, entries []domain.Pokemon)
}
