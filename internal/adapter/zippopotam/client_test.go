package zippopotam

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riverbend/localwaters/internal/adapter/httpx"
	"github.com/riverbend/localwaters/internal/observability"
)

func testClient(baseURL string) *Client {
	hc := httpx.New("zippopotam-test", &http.Client{Timeout: 5 * time.Second},
		httpx.Backoff{MaxRetries: 0, InitialInterval: time.Millisecond})
	return NewClient(baseURL, hc,
		observability.NewMetricsForTesting(),
		slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestLookup_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/us/19104", r.URL.Path)
		_, _ = w.Write([]byte(`{
			"post code": "19104",
			"places": [{
				"place name": "Philadelphia",
				"latitude": "39.9597",
				"longitude": "-75.2023",
				"state abbreviation": "PA"
			}]
		}`))
	}))
	defer srv.Close()

	p, err := testClient(srv.URL).Lookup(context.Background(), "19104")
	require.NoError(t, err)
	assert.Equal(t, 39.9597, p.Lat)
	assert.Equal(t, -75.2023, p.Lon)
	assert.Equal(t, "Philadelphia, PA", p.DisplayName())
}

func TestLookup_UnknownZipIs404(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Lookup(context.Background(), "00000")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestLookup_EmptyPlaces(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"places": []}`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Lookup(context.Background(), "19104")
	assert.Error(t, err)
}

func TestLookup_MalformedCoordinates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"places": [{"place name": "X", "latitude": "abc", "longitude": "-75"}]}`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Lookup(context.Background(), "19104")
	assert.Error(t, err)
}
