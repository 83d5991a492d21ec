package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters and histograms for the aggregation
// engine.
type Metrics struct {
	UpstreamRequests *prometheus.CounterVec   // labels: provider={usgs_iv,usgs_stats,zippopotam,reports_feed}, outcome={success,error}
	UpstreamDuration *prometheus.HistogramVec // labels: provider
	CacheLookups     *prometheus.CounterVec   // labels: family={sites,zip,reports}, result={hit,miss}

	GradeFallbacks      prometheus.Counter     // sites graded on fixed breakpoints instead of percentiles
	SourceOutcomes      *prometheus.CounterVec // labels: source={flow,reports}, outcome={ok,empty,failed}
	LocationResolutions *prometheus.CounterVec // labels: outcome={stored,located,absent}
}

// NewMetrics creates and registers all engine metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.UpstreamRequests,
		m.UpstreamDuration,
		m.CacheLookups,
		m.GradeFallbacks,
		m.SourceOutcomes,
		m.LocationResolutions,
	)
	return m
}

// NewMetricsForTesting creates Metrics with unregistered collectors to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		UpstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "localwaters",
			Name:      "upstream_requests_total",
			Help:      "Upstream HTTP requests by provider and outcome.",
		}, []string{"provider", "outcome"}),
		UpstreamDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "localwaters",
			Name:      "upstream_request_duration_seconds",
			Help:      "Upstream HTTP request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"provider"}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "localwaters",
			Name:      "cache_lookups_total",
			Help:      "TTL cache lookups by key family and result.",
		}, []string{"family", "result"}),
		GradeFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "localwaters",
			Name:      "grade_fallbacks_total",
			Help:      "Sites graded on fixed breakpoints because percentile statistics were unusable.",
		}),
		SourceOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "localwaters",
			Name:      "source_outcomes_total",
			Help:      "Per-source fetch outcomes observed by the coordinator.",
		}, []string{"source", "outcome"}),
		LocationResolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "localwaters",
			Name:      "location_resolutions_total",
			Help:      "Location resolution outcomes.",
		}, []string{"outcome"}),
	}
}
