package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Pokedex/internal/catalog"
	"Pokedex/internal/domain"
)

func newTestSession(api *fakeAPI, warm bool) (*Session, *catalog.Store, *Scheduler) {
	store := catalog.NewStore(catalog.Options{ArtworkTemplate: "https://img.test/%s.png"})
	scheduler := NewScheduler(store, api, nil, nil)
	return NewSession(SessionDeps{
		Store:         store,
		Client:        api,
		Scheduler:     scheduler,
		WarmFirstPage: warm,
	}), store, scheduler
}

func TestSessionStartsLoading(t *testing.T) {
	t.Parallel()

	s, _, _ := newTestSession(newFakeAPI(1), false)
	assert.True(t, s.IsLoading())
	assert.Equal(t, PhaseLoading, s.Phase())
	assert.NotEmpty(t, s.ID())
	assert.NoError(t, s.Err())
}

func TestBootstrapReachesReady(t *testing.T) {
	t.Parallel()

	api := newFakeAPI(25)
	s, store, _ := newTestSession(api, false)

	require.NoError(t, s.Bootstrap(context.Background()))
	assert.Equal(t, PhaseReady, s.Phase())
	assert.Equal(t, 25, store.Len())
	assert.Zero(t, api.totalCalls())

	select {
	case <-s.Ready():
	default:
		t.Fatal("ready channel not closed")
	}
}

func TestBootstrapWarmsFirstPage(t *testing.T) {
	t.Parallel()

	api := newFakeAPI(25)
	s, store, _ := newTestSession(api, true)

	require.NoError(t, s.Bootstrap(context.Background()))

	for i, p := range store.All() {
		assert.Equal(t, i < WarmPageSize, p.Enriched(), "entry %s", p.ID)
	}
	assert.Equal(t, WarmPageSize, api.totalCalls())
}

func TestBootstrapWarmFailuresAreNotFatal(t *testing.T) {
	t.Parallel()

	api := newFakeAPI(5)
	api.setFailure(ref("2"), errors.New("timeout"))
	s, store, _ := newTestSession(api, true)

	require.NoError(t, s.Bootstrap(context.Background()))
	assert.Equal(t, PhaseReady, s.Phase())

	p2, _ := store.Get("2")
	assert.False(t, p2.Enriched())
}

func TestBootstrapFailureStaysLoading(t *testing.T) {
	t.Parallel()

	api := newFakeAPI(25)
	api.listErr = errors.New("dns failure")
	s, store, _ := newTestSession(api, true)

	err := s.Bootstrap(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrBulkLoad)
	assert.True(t, s.IsLoading())
	assert.Zero(t, store.Len())

	// No retry on a second call.
	api.listErr = nil
	assert.ErrorIs(t, s.Bootstrap(context.Background()), domain.ErrBulkLoad)
	assert.True(t, s.IsLoading())

	select {
	case <-s.Ready():
		t.Fatal("ready channel closed after failed bootstrap")
	default:
	}
}

func TestSessionPokemonMergesDetail(t *testing.T) {
	t.Parallel()

	api := newFakeAPI(10)
	s, store, _ := newTestSession(api, false)
	require.NoError(t, s.Bootstrap(context.Background()))

	p, err := s.Pokemon(context.Background(), "7")
	require.NoError(t, err)
	assert.True(t, p.Enriched())
	assert.Equal(t, "https://img.test/7.png", p.ImageURL)

	stored, _ := store.Get("7")
	assert.True(t, stored.Enriched())

	_, err = s.Pokemon(context.Background(), "7")
	require.NoError(t, err)
	assert.Equal(t, 1, api.callCount(ref("7")))
}

func TestSessionPokemonUnknownIDLeavesStore(t *testing.T) {
	t.Parallel()

	api := newFakeAPI(3)
	s, store, _ := newTestSession(api, false)
	require.NoError(t, s.Bootstrap(context.Background()))

	p, err := s.Pokemon(context.Background(), "151")
	require.NoError(t, err)
	assert.Equal(t, "151", p.ID)
	assert.True(t, p.Enriched())

	_, ok := store.Get("151")
	assert.False(t, ok)
	assert.Equal(t, 3, store.Len())
}

func TestSessionPokemonFetchError(t *testing.T) {
	t.Parallel()

	api := newFakeAPI(3)
	api.setFailure(ref("2"), domain.ErrNotFound)
	s, _, _ := newTestSession(api, false)
	require.NoError(t, s.Bootstrap(context.Background()))

	_, err := s.Pokemon(context.Background(), "2")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, err, domain.ErrDetailFetch)
}
