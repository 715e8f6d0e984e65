// Package geocoding resolves free-text place names to coordinates via an
// external address-lookup provider.
package geocoding

import (
	"context"
	"errors"

	"github.com/routenest/routenest/pkg/geo"
)

// Sentinel errors for geocoding operations.
var (
	// ErrNotFound indicates the provider returned zero matches. This is a
	// valid empty result, not an infrastructure failure.
	ErrNotFound = errors.New("no matches for address")
	// ErrEmptyQuery indicates an empty or whitespace-only query.
	ErrEmptyQuery = errors.New("empty geocoding query")
	// ErrProviderUnavailable indicates the lookup provider is down or
	// misconfigured.
	ErrProviderUnavailable = errors.New("geocoding provider unavailable")
	// ErrRateLimitExceeded indicates the provider rejected the call for
	// quota reasons.
	ErrRateLimitExceeded = errors.New("geocoding rate limit exceeded")
	// ErrMalformedResponse indicates the provider payload did not match the
	// expected shape.
	ErrMalformedResponse = errors.New("malformed geocoding response")
)

// Match is one address-lookup result, best match first.
type Match struct {
	Point       geo.Point
	DisplayName string
}

// Provider defines the interface for address-lookup providers.
type Provider interface {
	// Search resolves a free-text query to candidate matches, ranked best
	// first. A nil or empty slice with a nil error means zero matches.
	Search(ctx context.Context, query string) ([]Match, error)
	// Name returns the provider identifier for logging and metrics.
	Name() string
}

// Error provides detailed error information from the geocoding provider.
type Error struct {
	Provider string
	Code     string
	Message  string
	Err      error
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
