// Package zippopotam resolves US ZIP codes to coordinates via the public
// zippopotam.us API.
package zippopotam

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/riverbend/localwaters/internal/adapter/httpx"
	"github.com/riverbend/localwaters/internal/observability"
)

const provider = "zippopotam"

// Place is the resolved location for a ZIP code.
type Place struct {
	Lat   float64
	Lon   float64
	City  string
	State string
}

// DisplayName returns the "City, ST" form used as a location name.
func (p Place) DisplayName() string {
	return fmt.Sprintf("%s, %s", p.City, p.State)
}

// Client looks up ZIP codes.
type Client struct {
	baseURL string
	http    *httpx.Client
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewClient creates a zippopotam client. baseURL is injectable for tests.
func NewClient(baseURL string, hc *httpx.Client, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{baseURL: baseURL, http: hc, metrics: metrics, logger: logger}
}

// Lookup resolves a 5-digit ZIP code. Format validation happens in the
// resolver before any call reaches here; this method reports any non-OK
// response (including the API's 404 for unknown ZIPs) as an error.
func (c *Client) Lookup(ctx context.Context, zip string) (Place, error) {
	fullURL := fmt.Sprintf("%s/us/%s", c.baseURL, zip)

	start := time.Now()
	resp, err := c.http.Do(ctx, func() (*http.Request, error) {
		return http.NewRequest(http.MethodGet, fullURL, nil)
	})
	c.metrics.UpstreamDuration.WithLabelValues(provider).Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.UpstreamRequests.WithLabelValues(provider, "error").Inc()
		return Place{}, fmt.Errorf("zip lookup request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.metrics.UpstreamRequests.WithLabelValues(provider, "error").Inc()
		return Place{}, fmt.Errorf("zip lookup: status %d", resp.StatusCode)
	}

	var body response
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		c.metrics.UpstreamRequests.WithLabelValues(provider, "error").Inc()
		return Place{}, fmt.Errorf("zip lookup: decode response: %w", err)
	}
	if len(body.Places) == 0 {
		c.metrics.UpstreamRequests.WithLabelValues(provider, "error").Inc()
		return Place{}, fmt.Errorf("zip lookup: no places for %s", zip)
	}

	p := body.Places[0]
	lat, latErr := strconv.ParseFloat(p.Latitude, 64)
	lon, lonErr := strconv.ParseFloat(p.Longitude, 64)
	if latErr != nil || lonErr != nil {
		c.metrics.UpstreamRequests.WithLabelValues(provider, "error").Inc()
		return Place{}, fmt.Errorf("zip lookup: malformed coordinates for %s", zip)
	}

	c.metrics.UpstreamRequests.WithLabelValues(provider, "success").Inc()
	return Place{
		Lat:   lat,
		Lon:   lon,
		City:  p.PlaceName,
		State: p.StateAbbreviation,
	}, nil
}

// zippopotam.us response types. Coordinates arrive as strings.

type response struct {
	Places []place `json:"places"`
}

type place struct {
	PlaceName         string `json:"place name"`
	Latitude          string `json:"latitude"`
	Longitude         string `json:"longitude"`
	StateAbbreviation string `json:"state abbreviation"`
}
