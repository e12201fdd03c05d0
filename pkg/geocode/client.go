// Package geocode resolves free-form postal addresses to coordinates via the
// Google Geocoding API. An unmatched address is a normal outcome, not an
// error; errors are reserved for transport and decoding failures.
package geocode

import (
	"context"
	"net/http"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

// Result holds the geocoding output for an address.
type Result struct {
	Latitude  float64
	Longitude float64
	Matched   bool
}

// Client geocodes a single address.
type Client interface {
	Geocode(ctx context.Context, address string) (*Result, error)
}

// Option configures the geocoder.
type Option func(*googleClient)

// WithHTTPClient sets a custom HTTP client for API requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(g *googleClient) {
		g.httpClient = hc
	}
}

// WithBaseURL overrides the Geocoding API endpoint. Intended for tests.
func WithBaseURL(u string) Option {
	return func(g *googleClient) {
		g.baseURL = u
	}
}

// WithRateLimit sets the requests-per-second rate limit for API calls.
func WithRateLimit(rps float64) Option {
	return func(g *googleClient) {
		g.limiter = rate.NewLimiter(rate.Limit(rps), int(rps))
	}
}

// WithMemoTTL sets how long lookup outcomes are memoized in-process.
// Both matches and non-matches are memoized; failed lookups are not.
func WithMemoTTL(ttl time.Duration) Option {
	return func(g *googleClient) {
		g.memo = cache.New(ttl, 2*ttl)
	}
}

type googleClient struct {
	key        string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	memo       *cache.Cache
}

// NewClient creates a geocoding Client. The API key is required; callers that
// have no key configured should not construct a client at all.
func NewClient(apiKey string, opts ...Option) (Client, error) {
	if apiKey == "" {
		return nil, eris.New("geocode: google api key not configured")
	}
	g := &googleClient{
		key:        apiKey,
		baseURL:    googleGeocodeURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		limiter:    rate.NewLimiter(10, 10),
		memo:       cache.New(time.Hour, 2*time.Hour),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}
