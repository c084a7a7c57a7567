// Package tiles implements the client for the external tiled elevation
// service, with rate limiting and an optional shared byte cache in front of
// the HTTP fetch.
package tiles

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/draw"
	_ "image/png"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/kjayaram/gridpath/internal/core/domain"
	"github.com/kjayaram/gridpath/internal/core/ports"
	"github.com/kjayaram/gridpath/internal/pkg/metrics"
	"github.com/kjayaram/gridpath/internal/pkg/tilemath"
)

// maxTileBytes caps the response body read for a single tile. Terrain-RGB
// PNGs are a few hundred KB at most.
const maxTileBytes = 4 << 20

// Client implements ports.TileFetcher against an HTTP tile service.
type Client struct {
	urlTemplate string
	httpClient  *http.Client
	limiter     *rate.Limiter
	bytes       ports.CacheService // optional raw-tile byte cache
	bytesTTL    int
}

// Option configures a Client.
type Option func(*Client)

// WithByteCache layers a shared byte cache (e.g. Valkey) in front of the
// HTTP fetch so raw tiles survive process restarts.
func WithByteCache(cache ports.CacheService, ttlSeconds int) Option {
	return func(c *Client) {
		c.bytes = cache
		c.bytesTTL = ttlSeconds
	}
}

// WithTimeout sets the per-request HTTP timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// NewClient creates a tile client. urlTemplate must contain {z}, {x}, and
// {y} placeholders. rps bounds outbound tile requests per second; 0 uses a
// conservative default.
func NewClient(urlTemplate string, rps int, opts ...Option) *Client {
	if rps <= 0 {
		rps = 10
	}
	c := &Client{
		urlTemplate: urlTemplate,
		httpClient:  &http.Client{Timeout: 10 * time.Second},
		limiter:     rate.NewLimiter(rate.Limit(rps), 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchTile retrieves and decodes one raster tile. The rate limiter is the
// voluntary backpressure toward the external service; waiting on it honors
// context cancellation.
func (c *Client) FetchTile(ctx context.Context, key domain.TileKey) (*domain.DecodedTile, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	raw, err := c.fetchBytes(ctx, key)
	if err != nil {
		metrics.TileFetchFailures.WithLabelValues("fetch").Inc()
		return nil, err
	}

	tile, err := decode(key, raw)
	if err != nil {
		metrics.TileFetchFailures.WithLabelValues("decode").Inc()
		return nil, err
	}

	metrics.TilesFetched.Inc()
	return tile, nil
}

func (c *Client) fetchBytes(ctx context.Context, key domain.TileKey) ([]byte, error) {
	cacheKey := "tile:" + key.String()
	if c.bytes != nil {
		if data, err := c.bytes.Get(ctx, cacheKey); err == nil && len(data) > 0 {
			return data, nil
		}
	}

	url := c.tileURL(key)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build tile request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch tile %s: %w", key, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch tile %s: unexpected status %d", key, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxTileBytes))
	if err != nil {
		return nil, fmt.Errorf("read tile %s: %w", key, err)
	}

	if c.bytes != nil {
		_ = c.bytes.Set(ctx, cacheKey, data, c.bytesTTL)
	}
	return data, nil
}

func (c *Client) tileURL(key domain.TileKey) string {
	r := strings.NewReplacer(
		"{z}", strconv.Itoa(key.Zoom),
		"{x}", strconv.Itoa(key.X),
		"{y}", strconv.Itoa(key.Y),
	)
	return r.Replace(c.urlTemplate)
}

// decode parses the tile image and normalizes it to an RGBA pixel grid.
func decode(key domain.TileKey, raw []byte) (*domain.DecodedTile, error) {
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode tile %s: %w", key, err)
	}

	b := img.Bounds()
	if b.Dx() != tilemath.TileSize || b.Dy() != tilemath.TileSize {
		return nil, fmt.Errorf("decode tile %s: unexpected dimensions %dx%d", key, b.Dx(), b.Dy())
	}

	nrgba := image.NewNRGBA(image.Rect(0, 0, tilemath.TileSize, tilemath.TileSize))
	draw.Draw(nrgba, nrgba.Bounds(), img, b.Min, draw.Src)

	return &domain.DecodedTile{Key: key, Pix: nrgba.Pix}, nil
}
