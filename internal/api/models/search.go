package models

// ApartmentSearchRequest is the request body for POST /v1/apartments:search.
type ApartmentSearchRequest struct {
	// Origin is the free-text start location.
	Origin string `json:"origin" validate:"required"`

	// Destination is the free-text end location.
	Destination string `json:"destination" validate:"required"`

	// Mode is the travel mode. Defaults to DRIVE.
	Mode Mode `json:"mode,omitempty"`

	// RouteIndex selects among route alternatives. Defaults to 0.
	RouteIndex *int `json:"routeIndex,omitempty"`

	// MaxDistanceMiles overrides the default 3-mile outer cutoff.
	MaxDistanceMiles *float64 `json:"maxDistanceMiles,omitempty"`
}

// ApartmentSearchResponse is the response body for POST /v1/apartments:search.
type ApartmentSearchResponse struct {
	// SearchID identifies this search invocation.
	SearchID string `json:"searchId"`

	GeneratedAt Timestamp `json:"generatedAt"`

	// RouteOptions are all route alternatives.
	RouteOptions []RouteOption `json:"routeOptions"`

	// SelectedRouteID identifies the alternative the search ran against.
	SelectedRouteID string `json:"selectedRouteId"`

	// Apartments maps each distance bucket to its listings, distance ascending.
	Apartments map[string][]ApartmentListing `json:"apartments"`

	TotalFound int `json:"totalFound"`
}

// RouteOption describes one route alternative.
type RouteOption struct {
	ID              string  `json:"id"`
	Polyline        string  `json:"polyline"`
	DistanceMeters  int     `json:"distanceMeters"`
	DurationSeconds int     `json:"durationSeconds"`
	Summary         string  `json:"summary,omitempty"`
	Bounds          *GeoBox `json:"bounds,omitempty"`

	// Source is "provider" for routes from the directions provider and
	// "synthetic" for the straight-line fallback, whose proximity
	// results are approximate.
	Source string `json:"source"`
}

// ApartmentListing is one residential result with its route distance.
type ApartmentListing struct {
	PlaceID              string   `json:"placeId,omitempty"`
	Name                 string   `json:"name"`
	Location             Point    `json:"location"`
	Vicinity             string   `json:"vicinity,omitempty"`
	Types                []string `json:"types,omitempty"`
	Rating               float64  `json:"rating,omitempty"`
	RatingCount          int      `json:"ratingCount,omitempty"`
	DistanceToRouteMiles float64  `json:"distanceToRouteMiles"`
	Bucket               string   `json:"bucket"`
}
