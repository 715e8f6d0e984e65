// Package googleplaces implements the places.Provider interface against
// a Google Places-compatible nearby-search API.
package googleplaces

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/routenest/routenest/internal/places"
	"github.com/routenest/routenest/internal/provider/resilience"
	"github.com/routenest/routenest/pkg/geo"
)

const (
	// ProviderName identifies this place-search provider.
	ProviderName = "googleplaces"

	// DefaultBaseURL is the Places API base URL.
	DefaultBaseURL = "https://maps.googleapis.com/maps/api/place"

	// DefaultTimeout is the default request timeout.
	DefaultTimeout = 10 * time.Second
)

// Provider status codes on the nearby-search response envelope.
const (
	statusOK             = "OK"
	statusZeroResults    = "ZERO_RESULTS"
	statusOverQueryLimit = "OVER_QUERY_LIMIT"
	statusInvalidRequest = "INVALID_REQUEST"
	statusRequestDenied  = "REQUEST_DENIED"
)

// HTTPDoer is an interface for executing HTTP requests.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientConfig holds configuration for the places client.
type ClientConfig struct {
	// APIKey is the Places API key (required).
	APIKey string

	// BaseURL is the API base URL (optional).
	BaseURL string

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

// Client is a Google Places-compatible nearby-search client.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient HTTPDoer
	logger     zerolog.Logger
}

// NewClient creates a new places client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
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
		apiKey:     cfg.APIKey,
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     cfg.Logger,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

// nearbyResponse is the provider's nearby-search envelope.
type nearbyResponse struct {
	Results       []placeResult `json:"results"`
	NextPageToken string        `json:"next_page_token"`
	Status        string        `json:"status"`
	ErrorMessage  string        `json:"error_message"`
}

type placeResult struct {
	PlaceID  string   `json:"place_id"`
	Name     string   `json:"name"`
	Geometry geometry `json:"geometry"`
	Types    []string `json:"types"`
	Vicinity string   `json:"vicinity"`
	Rating   float64  `json:"rating"`
	Ratings  int      `json:"user_ratings_total"`
	Photos   []photo  `json:"photos"`
}

type geometry struct {
	Location location `json:"location"`
}

type location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type photo struct {
	PhotoReference string `json:"photo_reference"`
}

// NearbySearch runs one nearby-search request against the provider.
func (c *Client) NearbySearch(ctx context.Context, query places.NearbyQuery) (*places.NearbyPage, error) {
	reqURL, err := c.buildURL(query)
	if err != nil {
		return nil, fmt.Errorf("building request URL: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &places.Error{
			Provider: ProviderName,
			Code:     "REQUEST_FAILED",
			Message:  "failed to reach place search provider",
			Err:      places.ErrProviderUnavailable,
		}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, &places.Error{
			Provider: ProviderName,
			Code:     "RATE_LIMIT",
			Message:  "provider rate limit exceeded",
			Err:      places.ErrRateLimitExceeded,
		}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &places.Error{
			Provider: ProviderName,
			Code:     fmt.Sprintf("HTTP_%d", resp.StatusCode),
			Message:  fmt.Sprintf("place search provider returned status %d", resp.StatusCode),
			Err:      places.ErrProviderUnavailable,
		}
	}

	var nearby nearbyResponse
	if err := json.Unmarshal(body, &nearby); err != nil {
		return nil, &places.Error{
			Provider: ProviderName,
			Code:     "DECODE_FAILED",
			Message:  "could not decode nearby search response",
			Err:      places.ErrMalformedResponse,
		}
	}

	switch nearby.Status {
	case statusOK:
		// fall through to result mapping
	case statusZeroResults:
		return &places.NearbyPage{}, nil
	case statusOverQueryLimit:
		return nil, &places.Error{
			Provider: ProviderName,
			Code:     statusOverQueryLimit,
			Message:  "provider query limit reached",
			Err:      places.ErrRateLimitExceeded,
		}
	case statusInvalidRequest:
		return nil, &places.Error{
			Provider: ProviderName,
			Code:     statusInvalidRequest,
			Message:  nearby.ErrorMessage,
			Err:      places.ErrMalformedResponse,
		}
	case statusRequestDenied:
		return nil, &places.Error{
			Provider: ProviderName,
			Code:     statusRequestDenied,
			Message:  "API access denied - check API key configuration",
			Err:      places.ErrProviderUnavailable,
		}
	default:
		return nil, &places.Error{
			Provider: ProviderName,
			Code:     nearby.Status,
			Message:  "unexpected provider status",
			Err:      places.ErrProviderUnavailable,
		}
	}

	page := &places.NearbyPage{
		Results:       make([]places.RawPlace, 0, len(nearby.Results)),
		NextPageToken: nearby.NextPageToken,
	}

	for i := range nearby.Results {
		r := &nearby.Results[i]
		place := places.RawPlace{
			Provider:    ProviderName,
			PlaceID:     r.PlaceID,
			Name:        r.Name,
			Point:       geo.Point{Lat: r.Geometry.Location.Lat, Lon: r.Geometry.Location.Lng},
			Types:       r.Types,
			Vicinity:    r.Vicinity,
			Rating:      r.Rating,
			RatingCount: r.Ratings,
		}
		for _, p := range r.Photos {
			if p.PhotoReference != "" {
				place.PhotoRefs = append(place.PhotoRefs, p.PhotoReference)
			}
		}
		page.Results = append(page.Results, place)
	}

	c.logger.Debug().
		Int("result_count", len(page.Results)).
		Bool("has_next_page", page.NextPageToken != "").
		Msg("nearby search completed")

	return page, nil
}

func (c *Client) buildURL(query places.NearbyQuery) (string, error) {
	u, err := url.Parse(c.baseURL + "/nearbysearch/json")
	if err != nil {
		return "", err
	}

	q := u.Query()
	q.Set("key", c.apiKey)

	// A continuation token replaces all other parameters.
	if query.PageToken != "" {
		q.Set("pagetoken", query.PageToken)
		u.RawQuery = q.Encode()
		return u.String(), nil
	}

	q.Set("location", fmt.Sprintf("%s,%s",
		strconv.FormatFloat(query.Point.Lat, 'f', 6, 64),
		strconv.FormatFloat(query.Point.Lon, 'f', 6, 64),
	))
	q.Set("radius", strconv.Itoa(query.RadiusMeters))
	if query.Keyword != "" {
		q.Set("keyword", query.Keyword)
	}
	if query.Type != "" {
		q.Set("type", query.Type)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}
