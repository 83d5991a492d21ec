package aggregator

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riverbend/localwaters/internal/domain"
	"github.com/riverbend/localwaters/internal/observability"
)

// --- mocks ---

type staticResolver struct {
	loc   *domain.Location
	calls int
}

func (r *staticResolver) Resolve(_ context.Context) *domain.Location {
	r.calls++
	return r.loc
}

type mockFlow struct {
	mu    sync.Mutex
	sites []domain.Site
	err   error
	delay time.Duration
	calls int
}

func (m *mockFlow) Fetch(_ context.Context, _ domain.Location) ([]domain.Site, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.delay > 0 {
		time.Sleep(m.delay)
	}
	return m.sites, m.err
}

type mockReports struct {
	mu      sync.Mutex
	reports []domain.Report
	err     error
	calls   int
}

func (m *mockReports) Fetch(_ context.Context, _ domain.Location) ([]domain.Report, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	return m.reports, m.err
}

func testLoc() *domain.Location {
	return &domain.Location{Lat: 40.0, Lon: -75.2, Source: domain.SourceGPS, Name: "Current Location"}
}

func newCoordinator(resolver Resolver, flow FlowFetcher, reports ReportFetcher) *Coordinator {
	return New(resolver, flow, reports,
		observability.NewMetricsForTesting(),
		slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// --- tests ---

func TestLoad_NoLocationMakesNoCalls(t *testing.T) {
	flow := &mockFlow{}
	reports := &mockReports{}
	c := newCoordinator(&staticResolver{loc: nil}, flow, reports)

	result := c.Load(context.Background())

	assert.Nil(t, result.Location)
	assert.Equal(t, StateNotAttempted, result.Flow.State)
	assert.Equal(t, StateNotAttempted, result.Reports.State)
	assert.Equal(t, 0, flow.calls)
	assert.Equal(t, 0, reports.calls)
}

func TestLoad_BothSourcesSucceed(t *testing.T) {
	flow := &mockFlow{sites: []domain.Site{{SiteID: "01", Name: "Creek"}}}
	reports := &mockReports{reports: []domain.Report{{Name: "Tully River"}}}
	c := newCoordinator(&staticResolver{loc: testLoc()}, flow, reports)

	result := c.Load(context.Background())

	require.NotNil(t, result.Location)
	assert.Equal(t, StateOK, result.Flow.State)
	assert.Equal(t, StateOK, result.Reports.State)
	assert.Len(t, result.Flow.Data, 1)
	assert.Len(t, result.Reports.Data, 1)
}

func TestLoad_FlowFailureDoesNotVoidReports(t *testing.T) {
	flow := &mockFlow{err: errors.New("usgs down")}
	reports := &mockReports{reports: []domain.Report{{Name: "Tully River"}}}
	c := newCoordinator(&staticResolver{loc: testLoc()}, flow, reports)

	result := c.Load(context.Background())

	assert.Equal(t, StateFailed, result.Flow.State)
	require.Error(t, result.Flow.Err)
	assert.Equal(t, StateOK, result.Reports.State)
	require.Len(t, result.Reports.Data, 1)
	assert.Equal(t, "Tully River", result.Reports.Data[0].Name)
}

func TestLoad_ReportFailureDoesNotVoidFlow(t *testing.T) {
	flow := &mockFlow{sites: []domain.Site{{SiteID: "01"}}}
	reports := &mockReports{err: errors.New("feed gone")}
	c := newCoordinator(&staticResolver{loc: testLoc()}, flow, reports)

	result := c.Load(context.Background())

	assert.Equal(t, StateOK, result.Flow.State)
	assert.Equal(t, StateFailed, result.Reports.State)
}

func TestLoad_EmptyIsDistinctFromFailed(t *testing.T) {
	flow := &mockFlow{}
	reports := &mockReports{}
	c := newCoordinator(&staticResolver{loc: testLoc()}, flow, reports)

	result := c.Load(context.Background())

	assert.Equal(t, StateEmpty, result.Flow.State)
	assert.NoError(t, result.Flow.Err)
	assert.Equal(t, StateEmpty, result.Reports.State)
}

func TestLoad_SettlesEvenWhenOneSourceIsSlow(t *testing.T) {
	flow := &mockFlow{delay: 50 * time.Millisecond, err: errors.New("slow then dead")}
	reports := &mockReports{reports: []domain.Report{{Name: "Quick"}}}
	c := newCoordinator(&staticResolver{loc: testLoc()}, flow, reports)

	result := c.Load(context.Background())

	assert.Equal(t, StateFailed, result.Flow.State)
	assert.Equal(t, StateOK, result.Reports.State, "fast source's success survives the slow failure")
}

func TestLoad_BothFail(t *testing.T) {
	flow := &mockFlow{err: errors.New("a")}
	reports := &mockReports{err: errors.New("b")}
	c := newCoordinator(&staticResolver{loc: testLoc()}, flow, reports)

	result := c.Load(context.Background())

	assert.Equal(t, StateFailed, result.Flow.State)
	assert.Equal(t, StateFailed, result.Reports.State)
	require.NotNil(t, result.Location, "location survives source failures")
}
