package noaa

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/couchcryptid/metar-economizer/internal/domain"
	"github.com/couchcryptid/metar-economizer/internal/observability"
)

// maxReportBytes bounds a station file. Real ones are a few hundred bytes.
const maxReportBytes = 64 << 10

// Client fetches raw METAR station files from the NWS text product server.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// NewClient creates a station file client. baseURL is the directory holding
// the <ID>.TXT files.
func NewClient(baseURL, userAgent string, timeout time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Client {
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: userAgent,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger:  logger,
		metrics: metrics,
	}
}

// Fetch returns the raw station file for an ICAO station id.
//
// A missing station or any non-200 answer is domain.ErrStationUnavailable; an
// expired deadline is domain.ErrFetchTimeout. Cancellation of ctx is returned
// as ctx's error.
func (c *Client) Fetch(ctx context.Context, station string) (string, error) {
	station = strings.ToUpper(strings.TrimSpace(station))
	if station == "" {
		return "", fmt.Errorf("%w: empty station id", domain.ErrStationUnavailable)
	}

	start := time.Now()
	raw, err := c.get(ctx, fmt.Sprintf("%s/%s.TXT", c.baseURL, url.PathEscape(station)))
	c.metrics.FetchDuration.Observe(time.Since(start).Seconds())

	switch {
	case err == nil:
		c.metrics.Fetches.WithLabelValues(observability.OutcomeSuccess).Inc()
		c.logger.Debug("metar fetched", "station", station, "bytes", len(raw))
		return raw, nil
	case errors.Is(ctx.Err(), context.Canceled):
		return "", fmt.Errorf("fetch %s: %w", station, ctx.Err())
	case isTimeout(err):
		c.metrics.Fetches.WithLabelValues(observability.OutcomeTimeout).Inc()
		c.logger.Warn("metar fetch timed out", "station", station, "error", err)
		return "", fmt.Errorf("fetch %s: %w: %w", station, domain.ErrFetchTimeout, err)
	default:
		c.metrics.Fetches.WithLabelValues(observability.OutcomeUnavailable).Inc()
		c.logger.Warn("metar fetch failed", "station", station, "error", err)
		return "", fmt.Errorf("fetch %s: %w: %w", station, domain.ErrStationUnavailable, err)
	}
}

func (c *Client) get(ctx context.Context, fullURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/plain")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("metar request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("metar server: status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxReportBytes+1))
	if err != nil {
		return "", fmt.Errorf("read report: %w", err)
	}
	if len(body) > maxReportBytes {
		return "", fmt.Errorf("report exceeds %d bytes", maxReportBytes)
	}
	return string(body), nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
