// Package flow fetches, ranks, and grades nearby USGS monitoring sites.
package flow

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/riverbend/localwaters/internal/adapter/usgs"
	"github.com/riverbend/localwaters/internal/cache"
	"github.com/riverbend/localwaters/internal/domain"
	"github.com/riverbend/localwaters/internal/observability"
)

const siteCacheKeyPrefix = "sites_"

// Client is the slice of the USGS adapter the source needs.
type Client interface {
	InstantaneousDischarge(ctx context.Context, box domain.BBox) ([]usgs.SiteReading, error)
	DailyStatistics(ctx context.Context, siteIDs []string, monthDay string) (map[string]domain.DailyPercentiles, error)
}

// Config bounds the search and the cache window.
type Config struct {
	RadiusMiles float64
	MaxSites    int
	CacheTTL    time.Duration
}

// DefaultConfig bounds the list to a widget-sized panel.
var DefaultConfig = Config{
	RadiusMiles: 50,
	MaxSites:    6,
	CacheTTL:    15 * time.Minute,
}

// Source produces the ranked, graded site list for a location.
type Source struct {
	client  Client
	cache   *cache.Cache[[]domain.Site]
	cfg     Config
	metrics *observability.Metrics
	logger  *slog.Logger
}

// New creates a Source. The site cache lives in the shared volatile store
// under its own key family.
func New(client Client, volatileStore cache.Store, cfg Config, metrics *observability.Metrics, logger *slog.Logger) *Source {
	return &Source{
		client:  client,
		cache:   cache.New[[]domain.Site](volatileStore, siteCacheKeyPrefix),
		cfg:     cfg,
		metrics: metrics,
		logger:  logger,
	}
}

// Fetch returns at most MaxSites monitoring sites around loc, nearest
// first, each graded. Provider errors propagate so the coordinator can mark
// this source failed on its own; a statistics failure does not — it
// degrades every grade to the fixed-breakpoint estimate.
func (s *Source) Fetch(ctx context.Context, loc domain.Location) ([]domain.Site, error) {
	// Coordinates round to a ~0.7 mile grid, so small GPS jitter between
	// loads still hits the same entry.
	key := fmt.Sprintf("%.2f_%.2f", loc.Lat, loc.Lon)
	if sites, ok := s.cache.Get(key, s.cfg.CacheTTL); ok {
		s.metrics.CacheLookups.WithLabelValues("sites", "hit").Inc()
		return sites, nil
	}
	s.metrics.CacheLookups.WithLabelValues("sites", "miss").Inc()

	box := domain.BoundingBox(loc.Lat, loc.Lon, s.cfg.RadiusMiles)
	readings, err := s.client.InstantaneousDischarge(ctx, box)
	if err != nil {
		return nil, fmt.Errorf("fetch sites: %w", err)
	}

	sites := s.rank(readings, loc)
	if len(sites) > 0 {
		s.grade(ctx, sites)
	}

	s.cache.Set(key, sites)
	return sites, nil
}

// rank converts raw readings into sites, drops unusable readings, and
// returns the nearest MaxSites ascending by distance.
func (s *Source) rank(readings []usgs.SiteReading, loc domain.Location) []domain.Site {
	sites := make([]domain.Site, 0, len(readings))
	for _, r := range readings {
		if r.Flow == nil || *r.Flow < 0 {
			continue
		}
		sites = append(sites, domain.Site{
			SiteID:        r.SiteID,
			Name:          domain.CleanSiteName(r.RawName),
			Lat:           r.Lat,
			Lon:           r.Lon,
			DistanceMiles: domain.HaversineMiles(loc.Lat, loc.Lon, r.Lat, r.Lon),
			Flow:          *r.Flow,
			FlowUnit:      "cfs",
			ObservedAt:    r.ObservedAt,
		})
	}

	sort.Slice(sites, func(i, j int) bool {
		return sites[i].DistanceMiles < sites[j].DistanceMiles
	})
	if len(sites) > s.cfg.MaxSites {
		sites = sites[:s.cfg.MaxSites]
	}
	return sites
}

// grade fills in each site's Grade using today's historical percentiles,
// falling back to fixed breakpoints per site — or for every site when the
// statistics call fails outright.
func (s *Source) grade(ctx context.Context, sites []domain.Site) {
	ids := make([]string, len(sites))
	for i, site := range sites {
		ids[i] = site.SiteID
	}
	monthDay := domain.Now().Format("01-02")

	stats, err := s.client.DailyStatistics(ctx, ids, monthDay)
	if err != nil {
		s.logger.Warn("statistics unavailable, estimating grades", "error", err)
		stats = nil
	}

	for i := range sites {
		p, ok := stats[sites[i].SiteID]
		if ok && p.Usable() {
			g := domain.GradeFromPercentiles(sites[i].Flow, p)
			sites[i].Grade = &g
			continue
		}
		g := domain.EstimateGrade(sites[i].Flow)
		sites[i].Grade = &g
		s.metrics.GradeFallbacks.Inc()
	}
}
