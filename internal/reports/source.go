// Package reports ranks the batched fishing-report feed by distance from
// the visitor.
package reports

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/riverbend/localwaters/internal/cache"
	"github.com/riverbend/localwaters/internal/domain"
	"github.com/riverbend/localwaters/internal/observability"
)

const (
	feedCacheKeyPrefix = "reports_"
	// One global feed, so one fixed key.
	feedCacheKey = "feed"
)

// Client fetches the full report batch.
type Client interface {
	FetchAll(ctx context.Context) ([]domain.Report, error)
}

// Config bounds the rendered list and the cache window.
type Config struct {
	MaxReports int
	CacheTTL   time.Duration
}

// DefaultConfig bounds the list to a widget-sized panel.
var DefaultConfig = Config{
	MaxReports: 4,
	CacheTTL:   60 * time.Minute,
}

// Source serves distance-ranked reports. The cache stores the complete
// unfiltered batch; ranking and truncation happen on every read against the
// caller's current location, so one cached feed serves any location.
type Source struct {
	client  Client
	cache   *cache.Cache[[]domain.Report]
	cfg     Config
	metrics *observability.Metrics
	logger  *slog.Logger
}

// New creates a Source over the shared volatile store.
func New(client Client, volatileStore cache.Store, cfg Config, metrics *observability.Metrics, logger *slog.Logger) *Source {
	return &Source{
		client:  client,
		cache:   cache.New[[]domain.Report](volatileStore, feedCacheKeyPrefix),
		cfg:     cfg,
		metrics: metrics,
		logger:  logger,
	}
}

// Fetch returns at most MaxReports reports nearest loc, ascending by
// distance.
func (s *Source) Fetch(ctx context.Context, loc domain.Location) ([]domain.Report, error) {
	batch, ok := s.cache.Get(feedCacheKey, s.cfg.CacheTTL)
	if ok {
		s.metrics.CacheLookups.WithLabelValues("reports", "hit").Inc()
	} else {
		s.metrics.CacheLookups.WithLabelValues("reports", "miss").Inc()

		var err error
		batch, err = s.client.FetchAll(ctx)
		if err != nil {
			return nil, fmt.Errorf("fetch reports: %w", err)
		}
		s.cache.Set(feedCacheKey, batch)
	}

	ranked := make([]domain.Report, len(batch))
	copy(ranked, batch)
	for i := range ranked {
		ranked[i].DistanceMiles = domain.HaversineMiles(loc.Lat, loc.Lon, ranked[i].Lat, ranked[i].Lon)
	}
	sort.Slice(ranked, func(i, j int) bool {
		return ranked[i].DistanceMiles < ranked[j].DistanceMiles
	})
	if len(ranked) > s.cfg.MaxReports {
		ranked = ranked[:s.cfg.MaxReports]
	}
	return ranked, nil
}
