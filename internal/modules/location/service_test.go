package location

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"routecost/internal/metrics"
	"routecost/internal/types"
)

// fakeGeocoder answers from a fixed table and records every query.
type fakeGeocoder struct {
	answers map[string][]Candidate
	err     error
	queries []string
}

func (f *fakeGeocoder) Geocode(_ context.Context, query string) ([]Candidate, error) {
	f.queries = append(f.queries, query)
	if f.err != nil {
		return nil, f.err
	}
	return f.answers[query], nil
}

func TestResolve_FullTextHit(t *testing.T) {
	g := &fakeGeocoder{answers: map[string][]Candidate{
		"Andheri East, Mumbai": {{Lat: "19.1136", Lon: "72.8697"}, {Lat: "0", Lon: "0"}},
	}}
	svc := NewService(g, nil, nil)

	p, err := svc.Resolve(context.Background(), Location{Text: "  Andheri   East, Mumbai ", CityHint: "Mumbai"})
	require.NoError(t, err)
	assert.Equal(t, types.Point{Lat: 19.1136, Lng: 72.8697}, p)
	assert.Equal(t, []string{"Andheri East, Mumbai"}, g.queries)
}

func TestResolve_FallsBackToCityHint(t *testing.T) {
	g := &fakeGeocoder{answers: map[string][]Candidate{
		"Pune": {{Lat: "18.5204", Lon: "73.8567"}},
	}}
	svc := NewService(g, nil, nil)

	p, err := svc.Resolve(context.Background(), Location{Text: "Warehouse 7, Chakan MIDC", CityHint: "Pune"})
	require.NoError(t, err)
	assert.Equal(t, types.Point{Lat: 18.5204, Lng: 73.8567}, p)
	assert.Equal(t, []string{"Warehouse 7, Chakan MIDC", "Pune"}, g.queries)
}

func TestResolve_NoCandidatesNoHint(t *testing.T) {
	g := &fakeGeocoder{answers: map[string][]Candidate{}}
	svc := NewService(g, nil, nil)

	_, err := svc.Resolve(context.Background(), Location{Text: "Nowhere Town"})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Len(t, g.queries, 1)
}

func TestResolve_NoCandidatesAfterHint(t *testing.T) {
	g := &fakeGeocoder{answers: map[string][]Candidate{}}
	svc := NewService(g, nil, nil)

	_, err := svc.Resolve(context.Background(), Location{Text: "Nowhere Town", CityHint: "Atlantis"})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, []string{"Nowhere Town", "Atlantis"}, g.queries)
}

func TestResolve_UnparsableCandidate(t *testing.T) {
	g := &fakeGeocoder{answers: map[string][]Candidate{
		"Delhi": {{Lat: "north-ish", Lon: "77.2"}},
	}}
	svc := NewService(g, nil, nil)

	_, err := svc.Resolve(context.Background(), Location{Text: "Delhi", CityHint: "New Delhi"})
	assert.ErrorIs(t, err, ErrNotFound)
	// Parse failures are terminal; the hint is only for empty answers.
	assert.Len(t, g.queries, 1)
}

func TestResolve_OutOfRangeCandidate(t *testing.T) {
	g := &fakeGeocoder{answers: map[string][]Candidate{
		"Broken": {{Lat: "123.0", Lon: "77.2"}},
	}}
	svc := NewService(g, nil, nil)

	_, err := svc.Resolve(context.Background(), Location{Text: "Broken"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResolve_TransportErrorIsNotNotFound(t *testing.T) {
	boom := errors.New("connection refused")
	g := &fakeGeocoder{err: boom}
	svc := NewService(g, nil, nil)

	_, err := svc.Resolve(context.Background(), Location{Text: "Chennai", CityHint: "Chennai"})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Len(t, g.queries, 1)
}

func TestResolve_EmptyText(t *testing.T) {
	svc := NewService(&fakeGeocoder{}, nil, nil)
	_, err := svc.Resolve(context.Background(), Location{Text: "   "})
	assert.ErrorIs(t, err, ErrNotFound)
}

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewStore(rdb, time.Hour), mr
}

func TestResolve_UsesCache(t *testing.T) {
	store, mr := newTestStore(t)
	m := metrics.New(prometheus.NewRegistry())
	g := &fakeGeocoder{answers: map[string][]Candidate{
		"Jaipur": {{Lat: "26.9124", Lon: "75.7873"}},
	}}
	svc := NewService(g, store, m)
	ctx := context.Background()

	first, err := svc.Resolve(ctx, Location{Text: "Jaipur"})
	require.NoError(t, err)
	second, err := svc.Resolve(ctx, Location{Text: "jaipur"})
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, g.queries, 1, "second lookup should be served from cache")
	assert.True(t, mr.Exists(geocodeKey("Jaipur")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Geocodes.WithLabelValues("cache", "hit")))
}

func TestResolve_DoesNotCacheMisses(t *testing.T) {
	store, mr := newTestStore(t)
	svc := NewService(&fakeGeocoder{}, store, nil)

	_, err := svc.Resolve(context.Background(), Location{Text: "Nowhere"})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, mr.Keys())
}

func TestResolve_CacheFailureIsNotFatal(t *testing.T) {
	store, mr := newTestStore(t)
	mr.Close()
	g := &fakeGeocoder{answers: map[string][]Candidate{
		"Kochi": {{Lat: "9.9312", Lon: "76.2673"}},
	}}
	svc := NewService(g, store, nil)

	p, err := svc.Resolve(context.Background(), Location{Text: "Kochi"})
	require.NoError(t, err)
	assert.Equal(t, types.Point{Lat: 9.9312, Lng: 76.2673}, p)
}

func TestResolve_OutOfRangeCacheEntryIsAMiss(t *testing.T) {
	store, mr := newTestStore(t)
	m := metrics.New(prometheus.NewRegistry())
	mr.HSet(geocodeKey("Indore"), "lat", "999", "lng", "0")
	g := &fakeGeocoder{answers: map[string][]Candidate{
		"Indore": {{Lat: "22.7196", Lon: "75.8577"}},
	}}
	svc := NewService(g, store, m)

	p, err := svc.Resolve(context.Background(), Location{Text: "Indore"})
	require.NoError(t, err)
	assert.Equal(t, types.Point{Lat: 22.7196, Lng: 75.8577}, p)
	assert.Equal(t, []string{"Indore"}, g.queries)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Geocodes.WithLabelValues("cache", "invalid")))
	assert.Equal(t, "22.7196", mr.HGet(geocodeKey("Indore"), "lat"), "provider answer replaces the bad entry")
}

func TestStore_TTL(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "Surat", types.Point{Lat: 21.17, Lng: 72.83}))
	_, ok, err := store.Get(ctx, "surat")
	require.NoError(t, err)
	assert.True(t, ok)

	mr.FastForward(2 * time.Hour)
	_, ok, err = store.Get(ctx, "Surat")
	require.NoError(t, err)
	assert.False(t, ok)
}
