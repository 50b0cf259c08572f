package usecase

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/tilekeep/tilekeep/internal/geo"
	"github.com/tilekeep/tilekeep/pkg/metrics"
)

// TileFetcher retrieves raw tile bytes from a tile source. Implementations
// must honor context cancellation so an aborted region download actually stops
// its in-flight requests.
type TileFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// TileURL substitutes a coordinate into a source template with {z}, {x} and
// {y} placeholders.
func TileURL(template string, t geo.TileCoordinate) string {
	r := strings.NewReplacer(
		"{z}", strconv.Itoa(t.Z),
		"{x}", strconv.Itoa(t.X),
		"{y}", strconv.Itoa(t.Y),
	)
	return r.Replace(template)
}

// HTTPTileFetcher fetches tiles over HTTP GET with a per-request timeout.
type HTTPTileFetcher struct {
	client  *http.Client
	timeout time.Duration
}

var _ TileFetcher = (*HTTPTileFetcher)(nil)

func NewHTTPTileFetcher(timeout time.Duration) *HTTPTileFetcher {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &HTTPTileFetcher{
		client: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		timeout: timeout,
	}
}

func (f *HTTPTileFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "tilekeep/1.0 (+https://github.com/tilekeep/tilekeep)")

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		metrics.TileFetchErrors.Inc()
		return nil, fmt.Errorf("failed to fetch tile: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.TileFetchErrors.Inc()
		return nil, fmt.Errorf("tile source returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.TileFetchErrors.Inc()
		return nil, fmt.Errorf("failed to read tile data: %w", err)
	}

	metrics.TilesFetched.Inc()
	metrics.TileFetchDuration.Observe(time.Since(start).Seconds())

	return data, nil
}
