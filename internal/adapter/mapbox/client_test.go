package mapbox

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/climate-risk-engine/internal/observability"
)

const (
	testToken         = "test-token"
	contentTypeJSON   = "application/json"
	headerContentType = "Content-Type"
)

func testMetrics() *observability.Metrics {
	return observability.NewMetricsForTesting()
}

func testClient(baseURL string, timeout time.Duration) *Client {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return &Client{
		token:      testToken,
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		breaker:    newBreaker(logger),
		metrics:    testMetrics(),
		logger:     logger,
	}
}

func TestClient_ReverseGeocode_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "-43.270000,-22.485000")
		assert.Equal(t, "1", r.URL.Query().Get("limit"))
		assert.Equal(t, testToken, r.URL.Query().Get("access_token"))

		resp := response{
			Features: []feature{
				{
					ID:        "place.123",
					PlaceName: "Duque de Caxias, Rio de Janeiro, Brazil",
					Text:      "Duque de Caxias",
					Relevance: 0.98,
					Context: []placeParent{
						{ID: "region.9217", Text: "Rio de Janeiro"},
						{ID: "country.8", Text: "Brazil"},
					},
				},
			},
		}
		w.Header().Set(headerContentType, contentTypeJSON)
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer srv.Close()

	c := testClient(srv.URL, 5*time.Second)
	result, err := c.ReverseGeocode(context.Background(), -22.485, -43.27)
	require.NoError(t, err)

	assert.Equal(t, "Duque de Caxias, Rio de Janeiro, Brazil", result.FormattedAddress)
	assert.Equal(t, "Duque de Caxias", result.PlaceName)
	assert.Equal(t, "Rio de Janeiro", result.Region)
	assert.Equal(t, 0.98, result.Confidence)
	assert.Equal(t, 1.0, testutil.ToFloat64(c.metrics.GeocodeRequests.WithLabelValues("reverse", "success")))
}

func TestClient_ReverseGeocode_RegionFeature(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set(headerContentType, contentTypeJSON)
		require.NoError(t, json.NewEncoder(w).Encode(response{Features: []feature{
			{ID: "region.9217", PlaceName: "Rio de Janeiro, Brazil", Text: "Rio de Janeiro", Relevance: 1},
		}}))
	}))
	defer srv.Close()

	result, err := testClient(srv.URL, 5*time.Second).ReverseGeocode(context.Background(), -22.9, -43.2)
	require.NoError(t, err)
	assert.Equal(t, "Rio de Janeiro", result.Region)
}

func TestClient_ReverseGeocode_NoResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set(headerContentType, contentTypeJSON)
		require.NoError(t, json.NewEncoder(w).Encode(response{Features: []feature{}}))
	}))
	defer srv.Close()

	c := testClient(srv.URL, 5*time.Second)
	result, err := c.ReverseGeocode(context.Background(), -25.2, -42.9)
	require.NoError(t, err)
	assert.Empty(t, result.FormattedAddress)
	assert.Empty(t, result.Region)
	assert.Equal(t, 1.0, testutil.ToFloat64(c.metrics.GeocodeRequests.WithLabelValues("reverse", "empty")))
}

func TestClient_ReverseGeocode_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"Not Authorized"}`))
	}))
	defer srv.Close()

	c := testClient(srv.URL, 5*time.Second)
	_, err := c.ReverseGeocode(context.Background(), -22.485, -43.27)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
	assert.Equal(t, 1.0, testutil.ToFloat64(c.metrics.GeocodeRequests.WithLabelValues("reverse", "error")))
}

func TestClient_ReverseGeocode_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL, 50*time.Millisecond).ReverseGeocode(context.Background(), -22.485, -43.27)
	require.Error(t, err)
}

func TestClient_ReverseGeocode_CircuitOpens(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := testClient(srv.URL, 5*time.Second)
	for range 5 {
		_, err := c.ReverseGeocode(context.Background(), -22.485, -43.27)
		require.Error(t, err)
	}

	_, err := c.ReverseGeocode(context.Background(), -22.485, -43.27)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "circuit breaker is open")
	assert.Equal(t, int32(5), calls.Load(), "open circuit should not reach the API")
	assert.Equal(t, 1.0, testutil.ToFloat64(c.metrics.GeocodeRequests.WithLabelValues("reverse", "circuit_open")))
}
