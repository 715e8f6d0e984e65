// Package routing computes commute routes between two points, with a
// synthetic straight-line fallback when no directions provider is usable.
package routing

import (
	"context"
	"errors"
	"time"

	"github.com/routenest/routenest/pkg/geo"
)

// Sentinel errors for routing operations.
var (
	// ErrProviderUnavailable indicates the directions provider is down or the circuit breaker is open.
	ErrProviderUnavailable = errors.New("directions provider unavailable")
	// ErrNoRouteFound indicates no valid route exists between the given points.
	ErrNoRouteFound = errors.New("no route found between the given points")
	// ErrRateLimitExceeded indicates the API quota has been exceeded.
	ErrRateLimitExceeded = errors.New("rate limit exceeded")
	// ErrInvalidCoordinates indicates the provided coordinates are invalid or out of range.
	ErrInvalidCoordinates = errors.New("invalid coordinates")
	// ErrUnsupportedMode indicates the travel mode has no provider profile.
	ErrUnsupportedMode = errors.New("unsupported travel mode")
	// ErrMalformedResponse indicates the provider payload did not match the expected shape.
	ErrMalformedResponse = errors.New("malformed directions response")
)

// Provider defines the interface for directions providers.
type Provider interface {
	// GetDirections retrieves route directions between two points.
	// Returns multiple route alternatives when available.
	GetDirections(ctx context.Context, req DirectionsRequest) (*DirectionsResponse, error)
	// Name returns the provider identifier for logging and metrics.
	Name() string
	// SupportedProfiles returns the list of route profiles this provider supports.
	SupportedProfiles() []RouteProfile
}

// TravelMode is the caller-facing mode of transport.
type TravelMode string

const (
	ModeDrive   TravelMode = "drive"
	ModeWalk    TravelMode = "walk"
	ModeBike    TravelMode = "bike"
	ModeTransit TravelMode = "transit"
)

// RouteProfile represents a provider-specific routing profile.
type RouteProfile string

const (
	// ProfileDrive is the car-driving profile.
	ProfileDrive RouteProfile = "driving-car"
	// ProfileWalk is the foot-walking profile for pedestrian routing.
	ProfileWalk RouteProfile = "foot-walking"
	// ProfileBike is the cycling-regular profile for bike routing.
	ProfileBike RouteProfile = "cycling-regular"
)

// ProfileFor maps a travel mode to its provider profile. The second return
// is false for modes with no provider profile (transit); those routes fall
// back to the synthetic path.
func ProfileFor(mode TravelMode) (RouteProfile, bool) {
	switch mode {
	case ModeDrive:
		return ProfileDrive, true
	case ModeWalk:
		return ProfileWalk, true
	case ModeBike:
		return ProfileBike, true
	default:
		return "", false
	}
}

// RouteSource tags which path produced a route. Synthetic routes make
// route-proximity results approximate, so callers must be able to tell.
type RouteSource string

const (
	// SourceProvider marks a route computed by the directions provider.
	SourceProvider RouteSource = "provider"
	// SourceSynthetic marks a straight-line fallback route.
	SourceSynthetic RouteSource = "synthetic"
)

// DirectionsRequest is the request for computing routes.
type DirectionsRequest struct {
	Origin          geo.Point
	Destination     geo.Point
	Mode            TravelMode
	MaxAlternatives int // Maximum number of alternative routes to return (default: 2)
}

// DirectionsResponse is the response containing route alternatives.
type DirectionsResponse struct {
	Routes    []Route
	Provider  string
	FetchedAt time.Time
}

// Route represents a single route option.
type Route struct {
	ID               string      // Stable identifier for this route option
	GeometryPolyline string      // Encoded polyline (precision 5)
	DistanceMeters   int         // Total distance in meters
	DurationSeconds  int         // Total duration in seconds
	Summary          string      // Human-readable route summary
	Bound            *geo.Bound  // Geographic bounding box
	Legs             []Leg       // Ordered route legs
	Source           RouteSource // Which path produced this route
}

// Leg is one contiguous stretch of a route.
type Leg struct {
	DistanceMeters  int
	DurationSeconds int
	Steps           []Step
}

// Step is a single instruction within a leg.
type Step struct {
	Mode            TravelMode
	Instruction     string
	DistanceMeters  int
	DurationSeconds int
	Transit         *TransitDetails // Set only for transit steps
}

// TransitDetails carries line metadata for transit steps.
type TransitDetails struct {
	LineName string
	Headsign string
}

// Error provides detailed error information from the directions provider.
type Error struct {
	Provider string // Provider that generated the error
	Code     string // Error code from the provider
	Message  string // Human-readable error message
	Err      error  // Underlying error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsRetryable returns true if the error is transient and the request can be retried.
func (e *Error) IsRetryable() bool {
	return errors.Is(e.Err, ErrProviderUnavailable) || errors.Is(e.Err, ErrRateLimitExceeded)
}
