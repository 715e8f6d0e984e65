// Package search orchestrates the route-aware apartment search
// pipeline: geocode, route, sample, place search, classification,
// deduplication and distance bucketing.
package search

import (
	"errors"

	"github.com/routenest/routenest/internal/places"
	"github.com/routenest/routenest/internal/routing"
)

// Predefined errors for the search pipeline. These are the only
// failures that terminate a search; everything else degrades to
// partial or empty results.
var (
	// ErrInvalidInput is returned for empty origin/destination strings.
	ErrInvalidInput = errors.New("invalid search input")

	// ErrOriginNotFound is returned when the origin cannot be geocoded.
	ErrOriginNotFound = errors.New("could not find start location")

	// ErrDestinationNotFound is returned when the destination cannot be geocoded.
	ErrDestinationNotFound = errors.New("could not find end location")

	// ErrNoRoute is returned when no route could be established by any means.
	ErrNoRoute = errors.New("could not compute a route")
)

// DistanceBucket groups listings by distance to the route.
type DistanceBucket string

// Distance buckets, partitioned at 1 and 2 miles with the third bucket
// as a catch-all up to the configured outer cutoff.
const (
	BucketOneMile    DistanceBucket = "≤1mi"
	BucketTwoMiles   DistanceBucket = "≤2mi"
	BucketThreeMiles DistanceBucket = "≤3mi"
)

// Buckets lists all buckets in ascending distance order.
var Buckets = []DistanceBucket{BucketOneMile, BucketTwoMiles, BucketThreeMiles}

// SearchRequest is the input to a route-aware apartment search.
type SearchRequest struct {
	// Origin is the free-text start location (required).
	Origin string

	// Destination is the free-text end location (required).
	Destination string

	// Mode is the travel mode. Default: drive.
	Mode routing.TravelMode

	// RouteIndex selects among route alternatives. Out-of-range values
	// fall back to the first route.
	RouteIndex int

	// MaxDistanceMiles overrides the configured outer cutoff when > 0.
	MaxDistanceMiles float64
}

// ApartmentListing is one residential result with its route distance.
type ApartmentListing struct {
	Place                places.RawPlace
	DistanceToRouteMiles float64
	Bucket               DistanceBucket
}

// SearchResult is the pipeline output. Always complete: an empty
// search returns TotalFound 0 with empty buckets rather than an error.
type SearchResult struct {
	// SearchID identifies this search invocation in logs and responses.
	SearchID string

	// RouteOptions are all route alternatives returned by the router.
	RouteOptions []routing.Route

	// SelectedRoute is the alternative the search ran against.
	SelectedRoute routing.Route

	// Apartments maps each distance bucket to its listings, sorted by
	// distance ascending within a bucket.
	Apartments map[DistanceBucket][]ApartmentListing

	// TotalFound is the number of listings across all buckets.
	TotalFound int
}
