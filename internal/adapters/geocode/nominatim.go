// Package geocode implements reverse geocoding against a Nominatim-compatible
// service. Results feed the classification report only, so failures here are
// soft: callers downgrade to an unresolved context instead of erroring.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/kjayaram/gridpath/internal/core/domain"
)

const defaultBaseURL = "https://nominatim.openstreetmap.org"

// Client implements ports.Geocoder against the Nominatim reverse endpoint.
// Nominatim's usage policy caps anonymous clients at 1 req/s, hence the
// built-in limiter.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-request HTTP timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithRateLimit overrides the outbound requests-per-second cap.
func WithRateLimit(rps float64) Option {
	return func(c *Client) { c.limiter = rate.NewLimiter(rate.Limit(rps), 1) }
}

// NewClient creates a reverse-geocoding client. An empty baseURL targets the
// public Nominatim instance.
func NewClient(baseURL, userAgent string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		userAgent:  userAgent,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		limiter:    rate.NewLimiter(rate.Limit(1), 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type reverseResponse struct {
	Address struct {
		CountryCode string `json:"country_code"`
		Country     string `json:"country"`
		State       string `json:"state"`
	} `json:"address"`
	Error string `json:"error"`
}

// ReverseGeocode resolves the administrative context for a point.
func (c *Client) ReverseGeocode(ctx context.Context, p domain.GeoPoint) (*domain.GeoContext, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	params := url.Values{
		"lat":    {strconv.FormatFloat(p.Lat, 'f', 6, 64)},
		"lon":    {strconv.FormatFloat(p.Lon, 'f', 6, 64)},
		"format": {"jsonv2"},
		"zoom":   {"5"}, // state-level detail is enough
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/reverse?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build reverse request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("reverse geocode: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("reverse geocode: unexpected status %d", resp.StatusCode)
	}

	var body reverseResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("reverse geocode: decode response: %w", err)
	}
	if body.Error != "" {
		return nil, fmt.Errorf("reverse geocode: %s", body.Error)
	}

	return &domain.GeoContext{
		CountryCode:    body.Address.CountryCode,
		CountryName:    body.Address.Country,
		State:          body.Address.State,
		ResolutionMode: domain.ResolutionMapDerived,
	}, nil
}
