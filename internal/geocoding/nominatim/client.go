// Package nominatim provides a client for the OSM Nominatim search API.
package nominatim

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/routenest/routenest/internal/geocoding"
	"github.com/routenest/routenest/internal/provider/resilience"
	"github.com/routenest/routenest/pkg/geo"
)

const (
	// ProviderName identifies this geocoding provider.
	ProviderName = "nominatim"

	// DefaultBaseURL is the public Nominatim instance.
	DefaultBaseURL = "https://nominatim.openstreetmap.org"

	// DefaultTimeout is the default request timeout.
	DefaultTimeout = 10 * time.Second

	// maxResults bounds how many candidates a single lookup requests.
	maxResults = 5
)

// HTTPDoer abstracts HTTP request execution.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientConfig holds configuration for the Nominatim client.
type ClientConfig struct {
	// BaseURL is the API base URL (defaults to the public instance).
	BaseURL string

	// UserAgent is sent with every request; the public Nominatim instance
	// requires an identifying agent.
	UserAgent string

	// Region, when set, biases and bounds results to a geographic box.
	Region *geo.Bound

	// HTTPClient is the HTTP client to use (optional).
	// If nil, uses a resilient client with defaults.
	HTTPClient HTTPDoer

	// Timeout is the request timeout (optional, defaults to 10s).
	Timeout time.Duration

	// Registry is the provider registry for health tracking (optional).
	Registry *resilience.Registry

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client is a Nominatim search API client.
type Client struct {
	baseURL    string
	userAgent  string
	region     *geo.Bound
	httpClient HTTPDoer
	logger     zerolog.Logger
}

// NewClient creates a new Nominatim client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = "routenest/1.0"
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		clientCfg := resilience.DefaultClientConfig(ProviderName)
		if cfg.Timeout != 0 {
			clientCfg.Timeout = cfg.Timeout
		}
		resilientClient := resilience.NewClient(clientCfg)
		if cfg.Registry != nil {
			cfg.Registry.Register(ProviderName, resilientClient)
		}
		httpClient = resilientClient
	}

	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		userAgent:  userAgent,
		region:     cfg.Region,
		httpClient: httpClient,
		logger:     cfg.Logger,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

// searchResult is one element of the Nominatim search payload. Nominatim
// serializes coordinates as strings.
type searchResult struct {
	Lat         string  `json:"lat"`
	Lon         string  `json:"lon"`
	DisplayName string  `json:"display_name"`
	Importance  float64 `json:"importance"`
}

// Search resolves a free-text query against the Nominatim search endpoint.
func (c *Client) Search(ctx context.Context, query string) ([]geocoding.Match, error) {
	endpoint := fmt.Sprintf("%s/search", c.baseURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	q := req.URL.Query()
	q.Set("q", query)
	q.Set("format", "json")
	q.Set("limit", strconv.Itoa(maxResults))
	if c.region != nil {
		// viewbox is <minLon>,<maxLat>,<maxLon>,<minLat>; bounded=1 makes it
		// a hard filter rather than a bias.
		q.Set("viewbox", formatViewbox(*c.region))
		q.Set("bounded", "1")
	}
	req.URL.RawQuery = q.Encode()
	req.Header.Set("User-Agent", c.userAgent)

	c.logger.Debug().
		Str("query", query).
		Msg("requesting address lookup from nominatim")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &geocoding.Error{
			Provider: ProviderName,
			Code:     "REQUEST_FAILED",
			Message:  "failed to reach address-lookup provider",
			Err:      geocoding.ErrProviderUnavailable,
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.handleErrorResponse(resp.StatusCode)
	}

	var results []searchResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, &geocoding.Error{
			Provider: ProviderName,
			Code:     "DECODE_FAILED",
			Message:  "could not decode address-lookup response",
			Err:      geocoding.ErrMalformedResponse,
		}
	}

	matches := make([]geocoding.Match, 0, len(results))
	for _, r := range results {
		lat, latErr := strconv.ParseFloat(r.Lat, 64)
		lon, lonErr := strconv.ParseFloat(r.Lon, 64)
		if latErr != nil || lonErr != nil {
			return nil, &geocoding.Error{
				Provider: ProviderName,
				Code:     "BAD_COORDINATES",
				Message:  "address-lookup result has non-numeric coordinates",
				Err:      geocoding.ErrMalformedResponse,
			}
		}
		matches = append(matches, geocoding.Match{
			Point:       geo.Point{Lat: lat, Lon: lon},
			DisplayName: r.DisplayName,
		})
	}

	c.logger.Debug().
		Str("query", query).
		Int("match_count", len(matches)).
		Msg("received address lookup from nominatim")

	return matches, nil
}

// handleErrorResponse maps Nominatim error statuses to domain errors.
func (c *Client) handleErrorResponse(statusCode int) error {
	switch {
	case statusCode == http.StatusTooManyRequests:
		return &geocoding.Error{
			Provider: ProviderName,
			Code:     "RATE_LIMIT",
			Message:  "address-lookup rate limit exceeded",
			Err:      geocoding.ErrRateLimitExceeded,
		}
	case statusCode >= 500:
		return &geocoding.Error{
			Provider: ProviderName,
			Code:     fmt.Sprintf("SERVER_%d", statusCode),
			Message:  "address-lookup provider is temporarily unavailable",
			Err:      geocoding.ErrProviderUnavailable,
		}
	default:
		return &geocoding.Error{
			Provider: ProviderName,
			Code:     fmt.Sprintf("HTTP_%d", statusCode),
			Message:  fmt.Sprintf("address-lookup provider returned status %d", statusCode),
			Err:      geocoding.ErrProviderUnavailable,
		}
	}
}

// formatViewbox renders a bound in Nominatim's lon/lat corner order.
func formatViewbox(b geo.Bound) string {
	return fmt.Sprintf("%s,%s,%s,%s",
		strconv.FormatFloat(b.MinLon, 'f', -1, 64),
		strconv.FormatFloat(b.MaxLat, 'f', -1, 64),
		strconv.FormatFloat(b.MaxLon, 'f', -1, 64),
		strconv.FormatFloat(b.MinLat, 'f', -1, 64),
	)
}
