// Package metrics provides Prometheus collectors for catalog and enrichment operations.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Enrichment outcomes.
const (
	OutcomeEnriched        = "enriched"
	OutcomeFailed          = "failed"
	OutcomeSkippedEnriched = "skipped_enriched"
	OutcomeSkippedInFlight = "skipped_inflight"
)

// Metrics groups every collector the catalog core reports. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	RequestsTotal      *prometheus.CounterVec   // API requests by kind and status
	RequestDuration    *prometheus.HistogramVec // API latency by kind
	CacheHitsTotal     prometheus.Counter       // detail responses served from cache
	EnrichmentsTotal   *prometheus.CounterVec   // Ensure outcomes
	EnrichmentInFlight prometheus.Gauge         // detail reads currently running
	CatalogEntries     prometheus.Gauge         // entries held by the store
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pokedex_api_requests_total",
				Help: "Total number of remote catalog API requests by kind and status",
			},
			[]string{"kind", "status"}, // status: success, error
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pokedex_api_request_duration_seconds",
				Help:    "Remote catalog API request latency by kind",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"kind"},
		),
		CacheHitsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pokedex_detail_cache_hits_total",
			Help: "Detail reads answered from the in-process response cache",
		}),
		EnrichmentsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pokedex_enrichments_total",
				Help: "Enrichment attempts by outcome",
			},
			[]string{"outcome"},
		),
		EnrichmentInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "pokedex_enrichments_in_flight",
			Help: "Detail reads currently in flight",
		}),
		CatalogEntries: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "pokedex_catalog_entries",
			Help: "Number of entries loaded into the store",
		}),
	}

	for _, c := range []prometheus.Collector{
		m.RequestsTotal, m.RequestDuration, m.CacheHitsTotal,
		m.EnrichmentsTotal, m.EnrichmentInFlight, m.CatalogEntries,
	} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("register metrics: %w", err)
		}
	}
	return m, nil
}

// ObserveRequest records one API request.
func (m *Metrics) ObserveRequest(kind string, started time.Time, err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	m.RequestsTotal.WithLabelValues(kind, status).Inc()
	m.RequestDuration.WithLabelValues(kind).Observe(time.Since(started).Seconds())
}

// CacheHit records a detail read served from cache.
func (m *Metrics) CacheHit() {
	if m == nil {
		return
	}
	m.CacheHitsTotal.Inc()
}

// Enrichment records an Ensure outcome.
func (m *Metrics) Enrichment(outcome string) {
	if m == nil {
		return
	}
	m.EnrichmentsTotal.WithLabelValues(outcome).Inc()
}

// InFlight adjusts the in-flight gauge by delta.
func (m *Metrics) InFlight(delta float64) {
	if m == nil {
		return
	}
	m.EnrichmentInFlight.Add(delta)
}

// Entries sets the loaded entry count.
func (m *Metrics) Entries(n int) {
	if m == nil {
		return
	}
	m.CatalogEntries.Set(float64(n))
}
