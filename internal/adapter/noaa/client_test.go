package noaa

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/metar-economizer/internal/domain"
	"github.com/couchcryptid/metar-economizer/internal/observability"
)

const (
	testUserAgent = "metar-economizer-test"
	testReport    = "2024/05/14 12:53\nKSBY 141253Z AUTO 27008G15KT 10SM CLR 12/08 A3012 RMK AO2\n"
)

func testClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    baseURL,
		userAgent:  testUserAgent,
		httpClient: &http.Client{Timeout: timeout},
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		metrics:    observability.NewMetrics(),
	}
}

func stationServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, testUserAgent, r.Header.Get("User-Agent"))
		if r.URL.Path != "/KSBY.TXT" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/plain")
		fmt.Fprint(w, testReport)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_Fetch_Success(t *testing.T) {
	c := testClient(stationServer(t).URL, 5*time.Second)

	raw, err := c.Fetch(context.Background(), " ksby ")
	require.NoError(t, err)
	assert.Equal(t, testReport, raw)
	assert.Equal(t, 1.0, testutil.ToFloat64(c.metrics.Fetches.WithLabelValues(observability.OutcomeSuccess)))

	obs, err := domain.ParseMETAR(raw)
	require.NoError(t, err)
	assert.Equal(t, "KSBY", obs.StationID)
}

func TestClient_Fetch_UnknownStation(t *testing.T) {
	c := testClient(stationServer(t).URL, 5*time.Second)

	_, err := c.Fetch(context.Background(), "KXXX")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrStationUnavailable)
	assert.NotErrorIs(t, err, domain.ErrFetchTimeout)
	assert.Contains(t, err.Error(), "404")
	assert.Equal(t, 1.0, testutil.ToFloat64(c.metrics.Fetches.WithLabelValues(observability.OutcomeUnavailable)))
}

func TestClient_Fetch_EmptyStation(t *testing.T) {
	c := testClient("http://127.0.0.1:0", time.Second)
	_, err := c.Fetch(context.Background(), "  ")
	assert.ErrorIs(t, err, domain.ErrStationUnavailable)
}

func TestClient_Fetch_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL, 5*time.Second).Fetch(context.Background(), "KSBY")
	assert.ErrorIs(t, err, domain.ErrStationUnavailable)
}

func TestClient_Fetch_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	_, err := testClient(addr, 5*time.Second).Fetch(context.Background(), "KSBY")
	assert.ErrorIs(t, err, domain.ErrStationUnavailable)
}

func TestClient_Fetch_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c := testClient(srv.URL, 50*time.Millisecond)
	_, err := c.Fetch(context.Background(), "KSBY")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrFetchTimeout)
	assert.NotErrorIs(t, err, domain.ErrStationUnavailable)
	assert.Equal(t, 1.0, testutil.ToFloat64(c.metrics.Fetches.WithLabelValues(observability.OutcomeTimeout)))
}

func TestClient_Fetch_ContextDeadline(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := testClient(srv.URL, 5*time.Second).Fetch(ctx, "KSBY")
	assert.ErrorIs(t, err, domain.ErrFetchTimeout)
}

func TestClient_Fetch_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := testClient(stationServer(t).URL, 5*time.Second).Fetch(ctx, "KSBY")
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.NotErrorIs(t, err, domain.ErrStationUnavailable)
}

func TestClient_Fetch_OversizedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, strings.Repeat("X", maxReportBytes+10))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL, 5*time.Second).Fetch(context.Background(), "KSBY")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrStationUnavailable)
	assert.Contains(t, err.Error(), "exceeds")
}

func TestNewClient_TrimsBaseURL(t *testing.T) {
	c := NewClient("https://example.test/stations/", "ua", time.Second, slog.Default(), observability.NewMetrics())
	assert.Equal(t, "https://example.test/stations", c.baseURL)
	assert.Equal(t, time.Second, c.httpClient.Timeout)
}
