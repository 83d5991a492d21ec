// Package usgs talks to the USGS Water Services instantaneous-values and
// daily-statistics endpoints.
package usgs

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/riverbend/localwaters/internal/adapter/httpx"
	"github.com/riverbend/localwaters/internal/domain"
	"github.com/riverbend/localwaters/internal/observability"
)

const (
	// parameterCd 00060 is discharge in cubic feet per second.
	dischargeParameterCode = "00060"

	providerIV    = "usgs_iv"
	providerStats = "usgs_stats"
)

// SiteReading is one parsed candidate from the instantaneous-values
// response. Flow is nil when the site reported no sample.
type SiteReading struct {
	SiteID     string
	RawName    string
	Lat        float64
	Lon        float64
	Flow       *float64
	ObservedAt *time.Time
}

// Client queries the USGS water-services endpoints.
type Client struct {
	ivBaseURL   string
	statBaseURL string
	http        *httpx.Client
	metrics     *observability.Metrics
	logger      *slog.Logger
}

// NewClient creates a USGS client. Base URLs are injectable for tests.
func NewClient(ivBaseURL, statBaseURL string, hc *httpx.Client, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		ivBaseURL:   ivBaseURL,
		statBaseURL: statBaseURL,
		http:        hc,
		metrics:     metrics,
		logger:      logger,
	}
}

// InstantaneousDischarge returns the current discharge reading for every
// active site inside box.
func (c *Client) InstantaneousDischarge(ctx context.Context, box domain.BBox) ([]SiteReading, error) {
	params := url.Values{
		"format": {"json"},
		"bBox": {fmt.Sprintf("%.4f,%.4f,%.4f,%.4f",
			box.West, box.South, box.East, box.North)},
		"parameterCd": {dischargeParameterCode},
		"siteStatus":  {"active"},
	}

	var body ivResponse
	if err := c.getJSON(ctx, providerIV, c.ivBaseURL+"?"+params.Encode(), &body); err != nil {
		return nil, err
	}

	readings := make([]SiteReading, 0, len(body.Value.TimeSeries))
	for _, ts := range body.Value.TimeSeries {
		reading, ok := parseTimeSeries(ts)
		if !ok {
			continue
		}
		readings = append(readings, reading)
	}
	return readings, nil
}

// DailyStatistics returns percentile thresholds per site for the given
// calendar day (format "MM-DD"). Rows are matched by exact month-day; the
// year component is historical and ignored. Sites with no exact-day row are
// absent from the map.
func (c *Client) DailyStatistics(ctx context.Context, siteIDs []string, monthDay string) (map[string]domain.DailyPercentiles, error) {
	params := url.Values{
		"format":         {"json"},
		"sites":          {strings.Join(siteIDs, ",")},
		"statReportType": {"daily"},
		"statTypeCd":     {"all"},
		"parameterCd":    {dischargeParameterCode},
	}

	var body statResponse
	if err := c.getJSON(ctx, providerStats, c.statBaseURL+"?"+params.Encode(), &body); err != nil {
		return nil, err
	}

	stats := make(map[string]domain.DailyPercentiles)
	for _, ts := range body.Value.TimeSeries {
		if len(ts.SourceInfo.SiteCode) == 0 {
			continue
		}
		siteID := ts.SourceInfo.SiteCode[0].Value

		var rows []statRow
		if len(ts.Values) > 0 {
			rows = ts.Values[0].Value
		}

		p := domain.DailyPercentiles{}
		matched := false
		for _, row := range rows {
			if rowMonthDay(row.DateTime) != monthDay {
				continue
			}
			matched = true
			v := parseFloatOrZero(row.Value)
			switch row.StatisticCd {
			case "P10":
				p.P10 = v
			case "P25":
				p.P25 = v
			case "P50":
				p.P50 = v
			case "P75":
				p.P75 = v
			case "P90":
				p.P90 = v
			}
		}
		if matched {
			stats[siteID] = p
		}
	}
	return stats, nil
}

func (c *Client) getJSON(ctx context.Context, provider, fullURL string, out any) error {
	start := time.Now()
	resp, err := c.http.Do(ctx, func() (*http.Request, error) {
		return http.NewRequest(http.MethodGet, fullURL, nil)
	})
	c.metrics.UpstreamDuration.WithLabelValues(provider).Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.UpstreamRequests.WithLabelValues(provider, "error").Inc()
		return fmt.Errorf("%s request: %w", provider, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.metrics.UpstreamRequests.WithLabelValues(provider, "error").Inc()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.logger.Warn("usgs request failed", "provider", provider, "status", resp.StatusCode)
		return fmt.Errorf("%s: status %d: %s", provider, resp.StatusCode, body)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		c.metrics.UpstreamRequests.WithLabelValues(provider, "error").Inc()
		return fmt.Errorf("%s: decode response: %w", provider, err)
	}

	c.metrics.UpstreamRequests.WithLabelValues(provider, "success").Inc()
	return nil
}

func parseTimeSeries(ts timeSeries) (SiteReading, bool) {
	if len(ts.SourceInfo.SiteCode) == 0 {
		return SiteReading{}, false
	}

	reading := SiteReading{
		SiteID:  ts.SourceInfo.SiteCode[0].Value,
		RawName: ts.SourceInfo.SiteName,
		Lat:     ts.SourceInfo.GeoLocation.GeogLocation.Latitude,
		Lon:     ts.SourceInfo.GeoLocation.GeogLocation.Longitude,
	}

	if len(ts.Values) == 0 || len(ts.Values[0].Value) == 0 {
		return reading, true
	}

	latest := ts.Values[0].Value[len(ts.Values[0].Value)-1]
	if f, err := strconv.ParseFloat(latest.Value, 64); err == nil {
		reading.Flow = &f
	}
	if t, err := time.Parse(time.RFC3339, latest.DateTime); err == nil {
		reading.ObservedAt = &t
	}
	return reading, true
}

// rowMonthDay extracts "MM-DD" from a statistics row dateTime like
// "1994-06-15T00:00:00.000".
func rowMonthDay(dateTime string) string {
	datePart, _, _ := strings.Cut(dateTime, "T")
	if len(datePart) < 10 {
		return ""
	}
	return datePart[5:10]
}

func parseFloatOrZero(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}

// USGS water-services response types. Both endpoints share the nested
// value.timeSeries envelope; sample values arrive as strings.

type ivResponse struct {
	Value struct {
		TimeSeries []timeSeries `json:"timeSeries"`
	} `json:"value"`
}

type statResponse struct {
	Value struct {
		TimeSeries []statTimeSeries `json:"timeSeries"`
	} `json:"value"`
}

type timeSeries struct {
	SourceInfo sourceInfo `json:"sourceInfo"`
	Values     []struct {
		Value []sampleRow `json:"value"`
	} `json:"values"`
}

type statTimeSeries struct {
	SourceInfo sourceInfo `json:"sourceInfo"`
	Values     []struct {
		Value []statRow `json:"value"`
	} `json:"values"`
}

type sourceInfo struct {
	SiteName string `json:"siteName"`
	SiteCode []struct {
		Value string `json:"value"`
	} `json:"siteCode"`
	GeoLocation struct {
		GeogLocation struct {
			Latitude  float64 `json:"latitude"`
			Longitude float64 `json:"longitude"`
		} `json:"geogLocation"`
	} `json:"geoLocation"`
}

type sampleRow struct {
	Value    string `json:"value"`
	DateTime string `json:"dateTime"`
}

type statRow struct {
	Value       string `json:"value"`
	DateTime    string `json:"dateTime"`
	StatisticCd string `json:"statisticCd"`
}
