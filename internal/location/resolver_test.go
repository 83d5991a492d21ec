package location

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riverbend/localwaters/internal/adapter/zippopotam"
	"github.com/riverbend/localwaters/internal/cache"
	"github.com/riverbend/localwaters/internal/domain"
	"github.com/riverbend/localwaters/internal/observability"
	"github.com/riverbend/localwaters/internal/store"
)

// --- mocks ---

type countingLocator struct {
	fix   Fix
	err   error
	calls int
}

func (l *countingLocator) Locate(_ context.Context, _ LocateOptions) (Fix, error) {
	l.calls++
	return l.fix, l.err
}

type countingGeocoder struct {
	place zippopotam.Place
	err   error
	calls int
}

func (g *countingGeocoder) Lookup(_ context.Context, _ string) (zippopotam.Place, error) {
	g.calls++
	return g.place, g.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newResolver(locStore store.LocationStore, locator Locator, geocoder ZipGeocoder) *Resolver {
	return NewResolver(locStore, locator, geocoder, cache.NewMemoryStore(),
		observability.NewMetricsForTesting(), discardLogger())
}

// --- Resolve ---

func TestResolve_StoredLocationWinsWithZeroDeviceCalls(t *testing.T) {
	locStore := store.NewMemoryLocationStore()
	require.NoError(t, locStore.Save(domain.Location{
		Lat: 39.95, Lon: -75.16, Source: domain.SourceZip, Name: "Philadelphia, PA", Zip: "19104",
	}))
	locator := &countingLocator{}
	r := newResolver(locStore, locator, &countingGeocoder{})

	first := r.Resolve(context.Background())
	second := r.Resolve(context.Background())

	require.NotNil(t, first)
	require.NotNil(t, second)
	assert.Equal(t, *first, *second)
	assert.Equal(t, 0, locator.calls, "stored location must not touch the device")
}

func TestResolve_DeviceFixIsPersisted(t *testing.T) {
	locStore := store.NewMemoryLocationStore()
	locator := &countingLocator{fix: Fix{Lat: 40.0, Lon: -75.2}}
	r := newResolver(locStore, locator, &countingGeocoder{})

	loc := r.Resolve(context.Background())
	require.NotNil(t, loc)
	assert.Equal(t, domain.SourceGPS, loc.Source)
	assert.Equal(t, "Current Location", loc.Name)

	stored, err := locStore.Load()
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, *loc, *stored)

	r.Resolve(context.Background())
	assert.Equal(t, 1, locator.calls, "second resolve reads the persisted record")
}

func TestResolve_DeviceFailureYieldsAbsent(t *testing.T) {
	r := newResolver(store.NewMemoryLocationStore(),
		&countingLocator{err: errors.New("permission denied")}, &countingGeocoder{})

	assert.Nil(t, r.Resolve(context.Background()))
}

func TestResolve_UnavailableCapabilityYieldsAbsent(t *testing.T) {
	r := newResolver(store.NewMemoryLocationStore(), UnavailableLocator{}, &countingGeocoder{})

	assert.Nil(t, r.Resolve(context.Background()))
}

// --- GeocodeZip ---

func TestGeocodeZip_RejectsMalformedInputBeforeLookup(t *testing.T) {
	geocoder := &countingGeocoder{}
	r := newResolver(store.NewMemoryLocationStore(), UnavailableLocator{}, geocoder)

	for _, zip := range []string{"", "1234", "123456", "abcde", "19 04"} {
		_, err := r.GeocodeZip(context.Background(), zip)
		assert.ErrorIs(t, err, ErrInvalidZip, "zip=%q", zip)
	}
	assert.Equal(t, 0, geocoder.calls)
}

func TestGeocodeZip_Success(t *testing.T) {
	geocoder := &countingGeocoder{
		place: zippopotam.Place{Lat: 39.9597, Lon: -75.2023, City: "Philadelphia", State: "PA"},
	}
	r := newResolver(store.NewMemoryLocationStore(), UnavailableLocator{}, geocoder)

	loc, err := r.GeocodeZip(context.Background(), "19104")
	require.NoError(t, err)
	assert.Equal(t, domain.SourceZip, loc.Source)
	assert.Equal(t, "Philadelphia, PA", loc.Name)
	assert.Equal(t, "19104", loc.Zip)
}

func TestGeocodeZip_CachesBySession(t *testing.T) {
	geocoder := &countingGeocoder{
		place: zippopotam.Place{Lat: 1, Lon: 2, City: "X", State: "YY"},
	}
	r := newResolver(store.NewMemoryLocationStore(), UnavailableLocator{}, geocoder)

	_, err := r.GeocodeZip(context.Background(), "19104")
	require.NoError(t, err)
	_, err = r.GeocodeZip(context.Background(), "19104")
	require.NoError(t, err)

	assert.Equal(t, 1, geocoder.calls, "second lookup must hit the cache")
}

func TestGeocodeZip_LookupFailureIsSurfaced(t *testing.T) {
	geocoder := &countingGeocoder{err: errors.New("status 404")}
	r := newResolver(store.NewMemoryLocationStore(), UnavailableLocator{}, geocoder)

	_, err := r.GeocodeZip(context.Background(), "99999")
	require.ErrorIs(t, err, ErrZipLookup)
	assert.Contains(t, err.Error(), "404")
}

func TestGeocodeZip_FailureIsNotCached(t *testing.T) {
	geocoder := &countingGeocoder{err: errors.New("boom")}
	r := newResolver(store.NewMemoryLocationStore(), UnavailableLocator{}, geocoder)

	_, _ = r.GeocodeZip(context.Background(), "19104")
	geocoder.err = nil
	geocoder.place = zippopotam.Place{City: "Philadelphia", State: "PA"}

	loc, err := r.GeocodeZip(context.Background(), "19104")
	require.NoError(t, err)
	assert.Equal(t, "Philadelphia, PA", loc.Name)
	assert.Equal(t, 2, geocoder.calls)
}

// --- SetLocation / Clear ---

func TestClear_RestartsFallbackChain(t *testing.T) {
	locStore := store.NewMemoryLocationStore()
	locator := &countingLocator{err: errors.New("denied")}
	r := newResolver(locStore, locator, &countingGeocoder{})

	require.NoError(t, r.SetLocation(domain.Location{Source: domain.SourceManual, Name: "Somewhere"}))
	require.NotNil(t, r.Resolve(context.Background()))
	assert.Equal(t, 0, locator.calls)

	require.NoError(t, r.Clear())
	assert.Nil(t, r.Resolve(context.Background()))
	assert.Equal(t, 1, locator.calls, "cleared store retries the device")
}
