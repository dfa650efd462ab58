package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsRecord(t *testing.T) {
	t.Parallel()

	m, err := New(prometheus.NewRegistry())
	require.NoError(t, err)

	m.ObserveRequest("detail", time.Now(), nil)
	m.ObserveRequest("detail", time.Now(), errors.New("boom"))
	m.Enrichment(OutcomeEnriched)
	m.InFlight(1)
	m.Entries(1302)
	m.CacheHit()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("detail", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("detail", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EnrichmentsTotal.WithLabelValues(OutcomeEnriched)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EnrichmentInFlight))
	assert.Equal(t, 1302.0, testutil.ToFloat64(m.CatalogEntries))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheHitsTotal))
}

func TestDoubleRegistrationFails(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	_, err := New(reg)
	require.NoError(t, err)

	_, err = New(reg)
	assert.Error(t, err)
}

func TestNilMetricsIsNoop(t *testing.T) {
	t.Parallel()

	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveRequest("list", time.Now(), nil)
		m.Enrichment(OutcomeFailed)
		m.InFlight(-1)
		m.Entries(3)
		m.CacheHit()
	})
}
