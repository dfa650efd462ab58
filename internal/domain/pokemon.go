package domain

import (
	"fmt"
	"net/url"
	"strings"
)

// State tags how much of an entity is known locally.
type State string

const (
	StateSummary  State = "summary"
	StateEnriched State = "enriched"
)

// CanTransition reports whether an entity may move from one state to another.
// Enrichment is monotonic: nothing leads back to summary once enriched.
func CanTransition(from, to State) bool {
	switch from {
	case StateSummary:
		return to == StateSummary || to == StateEnriched
	case StateEnriched:
		return to == StateEnriched
	default:
		return false
	}
}

// Pokemon is a single catalog entry as held by the store.
type Pokemon struct {
	ID        string
	Name      string
	DetailURL string
	ImageURL  string
	State     State

	detail Detail
}

// NewSummary builds a summary-only entry from listing data.
func NewSummary(id, name, detailURL, imageURL string) Pokemon {
	return Pokemon{
		ID:        id,
		Name:      name,
		DetailURL: detailURL,
		ImageURL:  imageURL,
		State:     StateSummary,
	}
}

// Detail returns the enrichment payload and whether the entry is enriched.
func (p Pokemon) Detail() (Detail, bool) {
	if p.State != StateEnriched {
		return Detail{}, false
	}
	return p.detail, true
}

// Enriched reports whether the detail payload has been merged.
func (p Pokemon) Enriched() bool {
	return p.State == StateEnriched
}

// WithDetail returns a copy of p carrying d.
func (p Pokemon) WithDetail(d Detail) Pokemon {
	p.detail = d
	p.State = StateEnriched
	return p
}

// Number formats the id the way the dex shows it, e.g. #0025.
func (p Pokemon) Number() string {
	if len(p.ID) >= 4 {
		return "#" + p.ID
	}
	return "#" + strings.Repeat("0", 4-len(p.ID)) + p.ID
}

// Stat is one named base metric.
type Stat struct {
	Name  string
	Value int
}

// Detail is the heavier payload fetched per entry.
type Detail struct {
	Types      []string
	Height     int // decimetres
	Weight     int // hectograms
	Stats      []Stat
	ArtworkURL string
}

// PrimaryType is the first listed type, or "" if none.
func (d Detail) PrimaryType() string {
	if len(d.Types) == 0 {
		return ""
	}
	return d.Types[0]
}

// HeightMeters converts the API height to metres.
func (d Detail) HeightMeters() float64 {
	return float64(d.Height) / 10
}

// WeightKilograms converts the API weight to kilograms.
func (d Detail) WeightKilograms() float64 {
	return float64(d.Weight) / 10
}

// MergeDetail overlays incoming on existing field by field. Empty incoming
// fields never clear existing ones, so repeated merges converge.
func MergeDetail(existing, incoming Detail) Detail {
	out := existing
	if len(incoming.Types) > 0 {
		out.Types = append([]string(nil), incoming.Types...)
	}
	if incoming.Height != 0 {
		out.Height = incoming.Height
	}
	if incoming.Weight != 0 {
		out.Weight = incoming.Weight
	}
	if len(incoming.Stats) > 0 {
		out.Stats = append([]Stat(nil), incoming.Stats...)
	}
	if incoming.ArtworkURL != "" {
		out.ArtworkURL = incoming.ArtworkURL
	}
	return out
}

// IDFromRef extracts the identifier from a resource URL: its last non-empty
// path segment.
func IDFromRef(ref string) (string, error) {
	parsed, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("invalid resource url %s: %w", ref, err)
	}

	segments := strings.Split(parsed.Path, "/")
	for i := len(segments) - 1; i >= 0; i-- {
		if segments[i] != "" {
			return segments[i], nil
		}
	}
	return "", fmt.Errorf("resource url %s has no id segment", ref)
}

// ArtworkURL fills the image template with id. The template carries a single %s verb.
func ArtworkURL(template, id string) string {
	return fmt.Sprintf(template, id)
}
