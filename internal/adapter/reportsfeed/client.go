// Package reportsfeed fetches the batched fishing-report document.
package reportsfeed

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/riverbend/localwaters/internal/adapter/httpx"
	"github.com/riverbend/localwaters/internal/domain"
	"github.com/riverbend/localwaters/internal/observability"
)

const provider = "reports_feed"

// Client fetches the full report batch. One global document, not
// location-scoped.
type Client struct {
	feedURL string
	http    *httpx.Client
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewClient creates a feed client for the given document URL.
func NewClient(feedURL string, hc *httpx.Client, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{feedURL: feedURL, http: hc, metrics: metrics, logger: logger}
}

// FetchAll returns the unfiltered report batch. Distances are left zero;
// ranking against the visitor's location is the source's job.
func (c *Client) FetchAll(ctx context.Context) ([]domain.Report, error) {
	start := time.Now()
	resp, err := c.http.Do(ctx, func() (*http.Request, error) {
		return http.NewRequest(http.MethodGet, c.feedURL, nil)
	})
	c.metrics.UpstreamDuration.WithLabelValues(provider).Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.UpstreamRequests.WithLabelValues(provider, "error").Inc()
		return nil, fmt.Errorf("report feed request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.metrics.UpstreamRequests.WithLabelValues(provider, "error").Inc()
		return nil, fmt.Errorf("report feed: status %d", resp.StatusCode)
	}

	var body feedDocument
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		c.metrics.UpstreamRequests.WithLabelValues(provider, "error").Inc()
		return nil, fmt.Errorf("report feed: decode response: %w", err)
	}

	c.metrics.UpstreamRequests.WithLabelValues(provider, "success").Inc()
	return body.Reports, nil
}

type feedDocument struct {
	Reports []domain.Report `json:"reports"`
}
