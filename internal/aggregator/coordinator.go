// Package aggregator combines the location resolver with the flow and
// report sources into one ranked view, tolerating partial failure: each
// source settles on its own, and one source failing never voids the other.
package aggregator

import (
	"context"
	"log/slog"
	"sync"

	"github.com/riverbend/localwaters/internal/domain"
	"github.com/riverbend/localwaters/internal/observability"
)

// State classifies a per-source outcome.
type State int

const (
	// StateNotAttempted means no location was available, so no fetch ran.
	StateNotAttempted State = iota
	// StateOK means the fetch succeeded with data.
	StateOK
	// StateEmpty means the fetch succeeded but found nothing in range.
	StateEmpty
	// StateFailed means the fetch itself failed.
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateOK:
		return "ok"
	case StateEmpty:
		return "empty"
	case StateFailed:
		return "failed"
	default:
		return "not_attempted"
	}
}

// SourceResult is one source's settled outcome. Err is set only for
// StateFailed; Data only for StateOK.
type SourceResult[T any] struct {
	State State
	Data  T
	Err   error
}

// Result is a complete load: the resolved location (nil means the view
// should prompt for one) and both sources' independent outcomes.
type Result struct {
	Location *domain.Location
	Flow     SourceResult[[]domain.Site]
	Reports  SourceResult[[]domain.Report]
}

// Resolver yields the active location or nil.
type Resolver interface {
	Resolve(ctx context.Context) *domain.Location
}

// FlowFetcher produces ranked, graded sites for a location.
type FlowFetcher interface {
	Fetch(ctx context.Context, loc domain.Location) ([]domain.Site, error)
}

// ReportFetcher produces ranked reports for a location.
type ReportFetcher interface {
	Fetch(ctx context.Context, loc domain.Location) ([]domain.Report, error)
}

// Coordinator orchestrates one load.
type Coordinator struct {
	resolver Resolver
	flow     FlowFetcher
	reports  ReportFetcher
	metrics  *observability.Metrics
	logger   *slog.Logger
}

// New wires a Coordinator.
func New(resolver Resolver, flow FlowFetcher, reports ReportFetcher, metrics *observability.Metrics, logger *slog.Logger) *Coordinator {
	return &Coordinator{
		resolver: resolver,
		flow:     flow,
		reports:  reports,
		metrics:  metrics,
		logger:   logger,
	}
}

// Load resolves the location and, if one exists, fetches both sources
// concurrently with settle semantics: it waits for both to finish whatever
// their outcomes. Without a location it makes no network calls at all.
func (c *Coordinator) Load(ctx context.Context) Result {
	loc := c.resolver.Resolve(ctx)
	if loc == nil {
		return Result{}
	}

	result := Result{Location: loc}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		sites, err := c.flow.Fetch(ctx, *loc)
		result.Flow = settle(sites, err)
	}()
	go func() {
		defer wg.Done()
		reports, err := c.reports.Fetch(ctx, *loc)
		result.Reports = settle(reports, err)
	}()
	wg.Wait()

	c.metrics.SourceOutcomes.WithLabelValues("flow", result.Flow.State.String()).Inc()
	c.metrics.SourceOutcomes.WithLabelValues("reports", result.Reports.State.String()).Inc()
	if result.Flow.Err != nil {
		c.logger.Warn("flow source failed", "error", result.Flow.Err)
	}
	if result.Reports.Err != nil {
		c.logger.Warn("report source failed", "error", result.Reports.Err)
	}
	return result
}

// settle classifies one source's raw return into a SourceResult.
func settle[T any](data []T, err error) SourceResult[[]T] {
	switch {
	case err != nil:
		return SourceResult[[]T]{State: StateFailed, Err: err}
	case len(data) == 0:
		return SourceResult[[]T]{State: StateEmpty}
	default:
		return SourceResult[[]T]{State: StateOK, Data: data}
	}
}
