// Package places implements nearby place search along a route, with
// residential classification and cross-point deduplication.
package places

import (
	"context"
	"errors"
	"fmt"

	"github.com/routenest/routenest/pkg/geo"
)

// Predefined errors for place search operations.
var (
	// ErrProviderUnavailable is returned when the place-search provider cannot be reached.
	ErrProviderUnavailable = errors.New("place search provider unavailable")

	// ErrRateLimitExceeded is returned when the provider rate limit is exceeded.
	ErrRateLimitExceeded = errors.New("place search rate limit exceeded")

	// ErrMalformedResponse is returned when the provider payload cannot be parsed.
	ErrMalformedResponse = errors.New("malformed place search response")

	// ErrQuotaExhausted is returned when the local call budget is spent.
	ErrQuotaExhausted = errors.New("place search call budget exhausted")
)

// Error wraps a place-search failure with provider context.
type Error struct {
	Provider string
	Code     string
	Message  string
	Err      error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("places [%s] %s: %s: %v", e.Provider, e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("places [%s] %s: %s", e.Provider, e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// RawPlace is one upstream search hit before classification.
type RawPlace struct {
	// Provider identifies which search provider produced this hit.
	Provider string

	// PlaceID is the provider's stable place identifier, usable for a
	// later details lookup. May be empty for providers without IDs.
	PlaceID string

	// Name is the place's display name.
	Name string

	// Point is the place's coordinate.
	Point geo.Point

	// Types are the provider's category tags for this place.
	Types []string

	// Vicinity is a short human-readable address or neighborhood.
	Vicinity string

	// Rating is the provider's aggregate rating, 0 when absent.
	Rating float64

	// RatingCount is the number of ratings behind Rating.
	RatingCount int

	// PhotoRefs are provider photo references for lazy retrieval.
	PhotoRefs []string
}

// DedupeKey returns the key used for duplicate elimination: the provider
// place ID when present, otherwise a quantized-coordinate cell key.
func (p *RawPlace) DedupeKey(cellDecimals int) string {
	if p.PlaceID != "" {
		return p.Provider + ":" + p.PlaceID
	}
	return "cell:" + geo.CellKey(p.Point, cellDecimals)
}

// NearbyQuery describes one nearby-search request.
type NearbyQuery struct {
	// Point is the search center.
	Point geo.Point

	// RadiusMeters is the search radius.
	RadiusMeters int

	// Keyword is a free-text search term. Mutually exclusive with Type
	// in practice, though providers accept both.
	Keyword string

	// Type is a provider category filter (e.g. "lodging").
	Type string

	// PageToken continues a previous page when non-empty.
	PageToken string
}

// NearbyPage is one page of nearby-search results.
type NearbyPage struct {
	Results []RawPlace

	// NextPageToken continues pagination when non-empty.
	NextPageToken string
}

// Provider is the interface place-search backends implement.
type Provider interface {
	// NearbySearch runs one nearby-search request and returns a single
	// page of results.
	NearbySearch(ctx context.Context, query NearbyQuery) (*NearbyPage, error)

	// Name returns the provider identifier.
	Name() string
}
