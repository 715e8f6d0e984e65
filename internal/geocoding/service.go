package geocoding

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/routenest/routenest/internal/cache"
)

// ServiceConfig holds configuration for the geocoding service.
type ServiceConfig struct {
	// Provider is the address-lookup provider.
	Provider Provider

	// Logger for service operations.
	Logger zerolog.Logger

	// CacheTTL is how long resolved addresses stay cached (default: 10 minutes).
	CacheTTL time.Duration

	// CacheCapacity bounds the address cache (default: 512).
	CacheCapacity int
}

// Service resolves addresses with a TTL cache in front of the provider.
type Service struct {
	provider Provider
	logger   zerolog.Logger
	cache    *cache.Cache[Match]
}

// NewService creates a new geocoding service.
func NewService(cfg ServiceConfig) *Service {
	cacheTTL := cfg.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = 10 * time.Minute
	}

	capacity := cfg.CacheCapacity
	if capacity == 0 {
		capacity = 512
	}

	return &Service{
		provider: cfg.Provider,
		logger:   cfg.Logger,
		cache: cache.New[Match](cache.Config{
			TTL:      cacheTTL,
			Capacity: capacity,
		}),
	}
}

// Geocode resolves a free-text address to its top-ranked match.
// Returns ErrNotFound when the provider has no matches; provider failures
// surface as a *Error wrapping ErrProviderUnavailable or
// ErrRateLimitExceeded instead.
func (s *Service) Geocode(ctx context.Context, query string) (Match, error) {
	normalized := normalizeQuery(query)
	if normalized == "" {
		return Match{}, ErrEmptyQuery
	}

	if match, ok := s.cache.Get(normalized); ok {
		s.logger.Debug().
			Str("query", normalized).
			Msg("geocode cache hit")
		return match, nil
	}

	matches, err := s.provider.Search(ctx, normalized)
	if err != nil {
		s.logger.Error().Err(err).
			Str("query", normalized).
			Str("provider", s.provider.Name()).
			Msg("geocoding failed")
		return Match{}, err
	}

	if len(matches) == 0 {
		s.logger.Debug().
			Str("query", normalized).
			Msg("no geocoding matches")
		return Match{}, ErrNotFound
	}

	top := matches[0]
	s.cache.Set(normalized, top)

	s.logger.Debug().
		Str("query", normalized).
		Str("display_name", top.DisplayName).
		Float64("lat", top.Point.Lat).
		Float64("lon", top.Point.Lon).
		Msg("geocoded address")

	return top, nil
}

// CacheStats returns the address cache counters.
func (s *Service) CacheStats() cache.Stats {
	return s.cache.Stats()
}

// ProviderName returns the name of the underlying provider.
func (s *Service) ProviderName() string {
	return s.provider.Name()
}

// normalizeQuery lowercases and collapses whitespace so trivially different
// spellings share a cache entry.
func normalizeQuery(q string) string {
	return strings.Join(strings.Fields(strings.ToLower(q)), " ")
}
