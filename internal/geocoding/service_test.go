package geocoding_test

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/routenest/routenest/internal/geocoding"
	"github.com/routenest/routenest/pkg/geo"
)

type mockProvider struct {
	matches   []geocoding.Match
	err       error
	callCount atomic.Int64
}

func (m *mockProvider) Search(_ context.Context, _ string) ([]geocoding.Match, error) {
	m.callCount.Add(1)
	if m.err != nil {
		return nil, m.err
	}
	return m.matches, nil
}

func (m *mockProvider) Name() string { return "mock" }

func newTestService(provider geocoding.Provider) *geocoding.Service {
	return geocoding.NewService(geocoding.ServiceConfig{
		Provider: provider,
		Logger:   zerolog.New(io.Discard),
	})
}

func TestService_Geocode(t *testing.T) {
	provider := &mockProvider{matches: []geocoding.Match{
		{Point: geo.Point{Lat: 29.7174, Lon: -95.4018}, DisplayName: "Rice University, Houston"},
		{Point: geo.Point{Lat: 38.9760, Lon: -84.3963}, DisplayName: "Rice Pike, Union, KY"},
	}}
	service := newTestService(provider)

	match, err := service.Geocode(context.Background(), "Rice University")
	require.NoError(t, err)

	// Top-ranked candidate wins.
	assert.Equal(t, "Rice University, Houston", match.DisplayName)
	assert.InDelta(t, 29.7174, match.Point.Lat, 1e-9)
}

func TestService_Geocode_EmptyQuery(t *testing.T) {
	provider := &mockProvider{}
	service := newTestService(provider)

	for _, query := range []string{"", "   ", "\t\n"} {
		_, err := service.Geocode(context.Background(), query)
		assert.ErrorIs(t, err, geocoding.ErrEmptyQuery)
	}
	assert.Equal(t, int64(0), provider.callCount.Load(), "empty queries never reach the provider")
}

func TestService_Geocode_NotFound(t *testing.T) {
	provider := &mockProvider{}
	service := newTestService(provider)

	_, err := service.Geocode(context.Background(), "no such place anywhere")
	assert.ErrorIs(t, err, geocoding.ErrNotFound)
}

func TestService_Geocode_ProviderError(t *testing.T) {
	provider := &mockProvider{err: &geocoding.Error{
		Provider: "mock",
		Code:     "SERVER_503",
		Err:      geocoding.ErrProviderUnavailable,
	}}
	service := newTestService(provider)

	_, err := service.Geocode(context.Background(), "Rice University")
	assert.ErrorIs(t, err, geocoding.ErrProviderUnavailable)

	var gerr *geocoding.Error
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, "SERVER_503", gerr.Code)
}

func TestService_Geocode_CacheHit(t *testing.T) {
	provider := &mockProvider{matches: []geocoding.Match{
		{Point: geo.Point{Lat: 29.7174, Lon: -95.4018}, DisplayName: "Rice University, Houston"},
	}}
	service := newTestService(provider)

	_, err := service.Geocode(context.Background(), "Rice University")
	require.NoError(t, err)

	match, err := service.Geocode(context.Background(), "Rice University")
	require.NoError(t, err)
	assert.Equal(t, "Rice University, Houston", match.DisplayName)

	assert.Equal(t, int64(1), provider.callCount.Load(), "second lookup should come from cache")

	stats := service.CacheStats()
	assert.Equal(t, int64(1), stats.Hits)
}

func TestService_Geocode_CacheNormalizesQuery(t *testing.T) {
	provider := &mockProvider{matches: []geocoding.Match{
		{Point: geo.Point{Lat: 29.7174, Lon: -95.4018}, DisplayName: "Rice University, Houston"},
	}}
	service := newTestService(provider)

	_, err := service.Geocode(context.Background(), "Rice  University")
	require.NoError(t, err)
	_, err = service.Geocode(context.Background(), "  rice university ")
	require.NoError(t, err)

	assert.Equal(t, int64(1), provider.callCount.Load(),
		"case and whitespace variants should share a cache entry")
}

func TestService_Geocode_FailuresNotCached(t *testing.T) {
	provider := &mockProvider{err: errors.New("boom")}
	service := newTestService(provider)

	_, err := service.Geocode(context.Background(), "Rice University")
	require.Error(t, err)
	_, err = service.Geocode(context.Background(), "Rice University")
	require.Error(t, err)

	assert.Equal(t, int64(2), provider.callCount.Load(), "failures must not be cached")
}
