// Package location produces the visitor's active location through a
// prioritized fallback chain: stored record, then device positioning, then
// nothing — at which point the caller prompts for manual entry.
package location

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"github.com/riverbend/localwaters/internal/adapter/zippopotam"
	"github.com/riverbend/localwaters/internal/cache"
	"github.com/riverbend/localwaters/internal/domain"
	"github.com/riverbend/localwaters/internal/observability"
	"github.com/riverbend/localwaters/internal/store"
)

const (
	// Device positioning request knobs: low accuracy is fine for a
	// 50-mile search radius, and a five-minute-old fix is current enough.
	locateTimeout = 10 * time.Second
	maxFixAge     = 5 * time.Minute

	zipCacheKeyPrefix = "zip_"

	// The zip cache is session-scoped; the TTL exists only to satisfy the
	// cache contract, not to expire within a realistic session.
	zipCacheTTL = 24 * time.Hour
)

// ErrInvalidZip rejects malformed input before any network call.
var ErrInvalidZip = errors.New("zip must be a 5-digit code")

// ErrZipLookup marks geocoding failures so callers can show them inline.
var ErrZipLookup = errors.New("zip lookup failed")

var zipRe = regexp.MustCompile(`^\d{5}$`)

// ZipGeocoder resolves a validated ZIP code to a place.
type ZipGeocoder interface {
	Lookup(ctx context.Context, zip string) (zippopotam.Place, error)
}

// Resolver owns the active Location: the fallback chain, ZIP geocoding,
// and the durable record.
type Resolver struct {
	store    store.LocationStore
	locator  Locator
	geocoder ZipGeocoder
	zipCache *cache.Cache[domain.Location]
	metrics  *observability.Metrics
	logger   *slog.Logger
}

// NewResolver wires a Resolver. The zip cache lives in the shared volatile
// store under its own key family.
func NewResolver(
	locStore store.LocationStore,
	locator Locator,
	geocoder ZipGeocoder,
	volatileStore cache.Store,
	metrics *observability.Metrics,
	logger *slog.Logger,
) *Resolver {
	return &Resolver{
		store:    locStore,
		locator:  locator,
		geocoder: geocoder,
		zipCache: cache.New[domain.Location](volatileStore, zipCacheKeyPrefix),
		metrics:  metrics,
		logger:   logger,
	}
}

// Resolve returns the best-known location, or nil when none can be had
// without prompting the visitor. It never returns an error: a stored
// location is returned as-is with no I/O, device positioning failures of
// every kind collapse into nil, and a successful device fix is persisted so
// the next Resolve is free.
func (r *Resolver) Resolve(ctx context.Context) *domain.Location {
	stored, err := r.store.Load()
	if err != nil {
		r.logger.Warn("stored location unreadable, falling through", "error", err)
	}
	if stored != nil {
		r.metrics.LocationResolutions.WithLabelValues("stored").Inc()
		return stored
	}

	locateCtx, cancel := context.WithTimeout(ctx, locateTimeout)
	defer cancel()

	fix, err := r.locator.Locate(locateCtx, LocateOptions{
		Timeout:      locateTimeout,
		HighAccuracy: false,
		MaximumAge:   maxFixAge,
	})
	if err != nil {
		r.logger.Info("device positioning failed", "error", err)
		r.metrics.LocationResolutions.WithLabelValues("absent").Inc()
		return nil
	}

	loc := domain.Location{
		Lat:    fix.Lat,
		Lon:    fix.Lon,
		Source: domain.SourceGPS,
		Name:   "Current Location",
	}
	if err := r.store.Save(loc); err != nil {
		r.logger.Warn("persist location failed", "error", err)
	}
	r.metrics.LocationResolutions.WithLabelValues("located").Inc()
	return &loc
}

// GeocodeZip resolves a 5-digit ZIP code to a Location. Lookup failures are
// surfaced to the caller for inline display — never silently replaced with
// a stale or default location. The caller decides whether to persist the
// result via SetLocation.
func (r *Resolver) GeocodeZip(ctx context.Context, zip string) (domain.Location, error) {
	if !zipRe.MatchString(zip) {
		return domain.Location{}, ErrInvalidZip
	}

	if loc, ok := r.zipCache.Get(zip, zipCacheTTL); ok {
		r.metrics.CacheLookups.WithLabelValues("zip", "hit").Inc()
		return loc, nil
	}
	r.metrics.CacheLookups.WithLabelValues("zip", "miss").Inc()

	place, err := r.geocoder.Lookup(ctx, zip)
	if err != nil {
		return domain.Location{}, fmt.Errorf("%w: %s: %w", ErrZipLookup, zip, err)
	}

	loc := domain.Location{
		Lat:    place.Lat,
		Lon:    place.Lon,
		Source: domain.SourceZip,
		Name:   place.DisplayName(),
		Zip:    zip,
	}
	r.zipCache.Set(zip, loc)
	return loc, nil
}

// SetLocation persists loc wholesale as the active location.
func (r *Resolver) SetLocation(loc domain.Location) error {
	return r.store.Save(loc)
}

// Clear removes the persisted location, forcing the next Resolve to restart
// the fallback chain.
func (r *Resolver) Clear() error {
	return r.store.Clear()
}
