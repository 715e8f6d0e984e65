package routing

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/routenest/routenest/pkg/geo"
)

// mockProvider is a mock directions provider for testing.
type mockProvider struct {
	name      string
	profiles  []RouteProfile
	response  *DirectionsResponse
	err       error
	callCount atomic.Int32
	delay     time.Duration
}

func (m *mockProvider) GetDirections(_ context.Context, _ DirectionsRequest) (*DirectionsResponse, error) {
	m.callCount.Add(1)
	if m.delay > 0 {
		time.Sleep(m.delay)
	}
	if m.err != nil {
		return nil, m.err
	}
	return m.response, nil
}

func (m *mockProvider) Name() string {
	return m.name
}

func (m *mockProvider) SupportedProfiles() []RouteProfile {
	return m.profiles
}

func driveResponse() *DirectionsResponse {
	return &DirectionsResponse{
		Routes: []Route{
			{
				GeometryPolyline: "_p~iF~ps|U_ulLnnqC",
				DistanceMeters:   12345,
				DurationSeconds:  2456,
			},
		},
		Provider:  "test-provider",
		FetchedAt: time.Now(),
	}
}

func TestService_ComputeRoutes_CacheMiss(t *testing.T) {
	provider := &mockProvider{
		name:     "test-provider",
		profiles: []RouteProfile{ProfileDrive, ProfileWalk},
		response: driveResponse(),
	}

	service := NewService(ServiceConfig{
		Provider: provider,
		CacheTTL: 5 * time.Minute,
	})

	resp, err := service.ComputeRoutes(context.Background(), DirectionsRequest{
		Origin:      geo.Point{Lat: 29.7174, Lon: -95.4018},
		Destination: geo.Point{Lat: 29.7199, Lon: -95.3422},
		Mode:        ModeDrive,
	})

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if provider.callCount.Load() != 1 {
		t.Errorf("expected 1 provider call, got %d", provider.callCount.Load())
	}

	if len(resp.Routes) != 1 {
		t.Fatalf("expected 1 route, got %d", len(resp.Routes))
	}

	if resp.Routes[0].DistanceMeters != 12345 {
		t.Errorf("expected distance 12345, got %d", resp.Routes[0].DistanceMeters)
	}

	if resp.Routes[0].Source != SourceProvider {
		t.Errorf("expected source %q, got %q", SourceProvider, resp.Routes[0].Source)
	}
}

func TestService_ComputeRoutes_CacheHit(t *testing.T) {
	provider := &mockProvider{
		name:     "test-provider",
		profiles: []RouteProfile{ProfileDrive, ProfileWalk},
		response: driveResponse(),
	}

	service := NewService(ServiceConfig{
		Provider: provider,
		CacheTTL: 5 * time.Minute,
	})

	req := DirectionsRequest{
		Origin:      geo.Point{Lat: 29.7174, Lon: -95.4018},
		Destination: geo.Point{Lat: 29.7199, Lon: -95.3422},
		Mode:        ModeDrive,
	}

	// First call
	_, err := service.ComputeRoutes(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error on first call: %v", err)
	}

	// Second call (should hit cache)
	_, err = service.ComputeRoutes(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error on second call: %v", err)
	}

	if provider.callCount.Load() != 1 {
		t.Errorf("expected 1 provider call (cache hit), got %d", provider.callCount.Load())
	}
}

func TestService_ComputeRoutes_GridCaching(t *testing.T) {
	provider := &mockProvider{
		name:     "test-provider",
		profiles: []RouteProfile{ProfileDrive},
		response: driveResponse(),
	}

	service := NewService(ServiceConfig{
		Provider:      provider,
		CacheTTL:      5 * time.Minute,
		CacheGridSize: 0.01, // ~1.1km grid
	})

	// Request 1
	_, _ = service.ComputeRoutes(context.Background(), DirectionsRequest{
		Origin:      geo.Point{Lat: 29.7174, Lon: -95.4018},
		Destination: geo.Point{Lat: 29.7199, Lon: -95.3422},
		Mode:        ModeDrive,
	})

	// Request 2 - slightly different coordinates but same grid cell
	_, _ = service.ComputeRoutes(context.Background(), DirectionsRequest{
		Origin:      geo.Point{Lat: 29.7176, Lon: -95.4015},
		Destination: geo.Point{Lat: 29.7197, Lon: -95.3425},
		Mode:        ModeDrive,
	})

	// Should only have called provider once due to grid caching
	if provider.callCount.Load() != 1 {
		t.Errorf("expected 1 provider call (grid cache hit), got %d", provider.callCount.Load())
	}
}

func TestService_ComputeRoutes_DifferentModesNotCached(t *testing.T) {
	provider := &mockProvider{
		name:     "test-provider",
		profiles: []RouteProfile{ProfileDrive, ProfileWalk},
		response: driveResponse(),
	}

	service := NewService(ServiceConfig{
		Provider: provider,
		CacheTTL: 5 * time.Minute,
	})

	origin := geo.Point{Lat: 29.7174, Lon: -95.4018}
	dest := geo.Point{Lat: 29.7199, Lon: -95.3422}

	_, _ = service.ComputeRoutes(context.Background(), DirectionsRequest{
		Origin: origin, Destination: dest, Mode: ModeDrive,
	})
	_, _ = service.ComputeRoutes(context.Background(), DirectionsRequest{
		Origin: origin, Destination: dest, Mode: ModeWalk,
	})

	// Should call provider twice - different modes
	if provider.callCount.Load() != 2 {
		t.Errorf("expected 2 provider calls (different modes), got %d", provider.callCount.Load())
	}
}

func TestService_ComputeRoutes_NoProviderSynthetic(t *testing.T) {
	service := NewService(ServiceConfig{})

	resp, err := service.ComputeRoutes(context.Background(), DirectionsRequest{
		Origin:      geo.Point{Lat: 29.7174, Lon: -95.4018},
		Destination: geo.Point{Lat: 29.7199, Lon: -95.3422},
		Mode:        ModeDrive,
	})

	if err != nil {
		t.Fatalf("expected synthetic fallback, got error: %v", err)
	}
	if len(resp.Routes) != 1 {
		t.Fatalf("expected 1 synthetic route, got %d", len(resp.Routes))
	}

	route := resp.Routes[0]
	if route.Source != SourceSynthetic {
		t.Errorf("expected source %q, got %q", SourceSynthetic, route.Source)
	}
	if route.GeometryPolyline == "" {
		t.Error("expected non-empty synthetic polyline")
	}
	if route.DistanceMeters <= 0 {
		t.Errorf("expected positive synthetic distance, got %d", route.DistanceMeters)
	}
	if route.DurationSeconds <= 0 {
		t.Errorf("expected positive synthetic duration, got %d", route.DurationSeconds)
	}
}

func TestService_ComputeRoutes_ProviderErrorSynthetic(t *testing.T) {
	provider := &mockProvider{
		name:     "test-provider",
		profiles: []RouteProfile{ProfileDrive},
		err:      errors.New("provider down"),
	}

	service := NewService(ServiceConfig{
		Provider: provider,
	})

	resp, err := service.ComputeRoutes(context.Background(), DirectionsRequest{
		Origin:      geo.Point{Lat: 29.7174, Lon: -95.4018},
		Destination: geo.Point{Lat: 29.7199, Lon: -95.3422},
		Mode:        ModeDrive,
	})

	if err != nil {
		t.Fatalf("expected synthetic fallback on provider error, got: %v", err)
	}
	if resp.Routes[0].Source != SourceSynthetic {
		t.Errorf("expected source %q, got %q", SourceSynthetic, resp.Routes[0].Source)
	}
}

func TestService_ComputeRoutes_UnsupportedModeSynthetic(t *testing.T) {
	provider := &mockProvider{
		name:     "test-provider",
		profiles: []RouteProfile{ProfileDrive},
		response: driveResponse(),
	}

	service := NewService(ServiceConfig{
		Provider: provider,
	})

	// Transit has no provider profile, so the synthetic path is taken
	// without touching the provider.
	resp, err := service.ComputeRoutes(context.Background(), DirectionsRequest{
		Origin:      geo.Point{Lat: 29.7174, Lon: -95.4018},
		Destination: geo.Point{Lat: 29.7199, Lon: -95.3422},
		Mode:        ModeTransit,
	})

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Routes[0].Source != SourceSynthetic {
		t.Errorf("expected source %q, got %q", SourceSynthetic, resp.Routes[0].Source)
	}
	if provider.callCount.Load() != 0 {
		t.Errorf("expected 0 provider calls, got %d", provider.callCount.Load())
	}
}

func TestService_ComputeRoutes_StaleIfError(t *testing.T) {
	provider := &mockProvider{
		name:     "test-provider",
		profiles: []RouteProfile{ProfileDrive},
		response: driveResponse(),
	}

	service := NewService(ServiceConfig{
		Provider:        provider,
		CacheTTL:        50 * time.Millisecond,
		StaleIfErrorTTL: 500 * time.Millisecond,
	})

	req := DirectionsRequest{
		Origin:      geo.Point{Lat: 29.7174, Lon: -95.4018},
		Destination: geo.Point{Lat: 29.7199, Lon: -95.3422},
		Mode:        ModeDrive,
	}

	// First call - populates cache
	_, err := service.ComputeRoutes(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Wait for cache to expire (but still within stale window)
	time.Sleep(100 * time.Millisecond)

	// Make provider fail
	provider.err = errors.New("provider error")

	// This call should serve stale data rather than a synthetic route
	resp, err := service.ComputeRoutes(context.Background(), req)
	if err != nil {
		t.Fatalf("expected stale data to be served, got error: %v", err)
	}

	if resp.Routes[0].DistanceMeters != 12345 {
		t.Errorf("expected stale distance 12345, got %d", resp.Routes[0].DistanceMeters)
	}
	if resp.Routes[0].Source != SourceProvider {
		t.Errorf("expected stale route to keep source %q, got %q", SourceProvider, resp.Routes[0].Source)
	}
}

func TestService_ComputeRoutes_InvalidCoordinates(t *testing.T) {
	provider := &mockProvider{
		name: "test-provider",
	}

	service := NewService(ServiceConfig{
		Provider: provider,
	})

	tests := []struct {
		name string
		req  DirectionsRequest
	}{
		{
			name: "invalid origin latitude",
			req: DirectionsRequest{
				Origin:      geo.Point{Lat: 91, Lon: 0},
				Destination: geo.Point{Lat: 0, Lon: 0},
				Mode:        ModeDrive,
			},
		},
		{
			name: "invalid destination longitude",
			req: DirectionsRequest{
				Origin:      geo.Point{Lat: 0, Lon: 0},
				Destination: geo.Point{Lat: 0, Lon: 181},
				Mode:        ModeDrive,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.ComputeRoutes(context.Background(), tt.req)
			if err == nil {
				t.Fatal("expected error, got nil")
			}

			var routingErr *Error
			if !errors.As(err, &routingErr) {
				t.Fatalf("expected Error, got %T", err)
			}
			if !errors.Is(routingErr.Err, ErrInvalidCoordinates) {
				t.Errorf("expected ErrInvalidCoordinates, got %v", routingErr.Err)
			}
		})
	}
}

func TestService_ComputeRoutes_ConcurrentRequests(t *testing.T) {
	provider := &mockProvider{
		name:     "test-provider",
		profiles: []RouteProfile{ProfileDrive},
		delay:    50 * time.Millisecond, // Simulate slow provider
		response: driveResponse(),
	}

	service := NewService(ServiceConfig{
		Provider: provider,
		CacheTTL: 5 * time.Minute,
	})

	req := DirectionsRequest{
		Origin:      geo.Point{Lat: 29.7174, Lon: -95.4018},
		Destination: geo.Point{Lat: 29.7199, Lon: -95.3422},
		Mode:        ModeDrive,
	}

	// Start 10 concurrent requests
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := service.ComputeRoutes(context.Background(), req)
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}

	wg.Wait()

	// With double-check locking, only a few calls should reach the provider
	// (not all 10)
	calls := provider.callCount.Load()
	if calls > 3 {
		t.Errorf("expected <= 3 provider calls with double-check locking, got %d", calls)
	}
}

func TestService_CacheStats(t *testing.T) {
	provider := &mockProvider{
		name:     "test-provider",
		profiles: []RouteProfile{ProfileDrive},
		response: driveResponse(),
	}

	service := NewService(ServiceConfig{
		Provider: provider,
		CacheTTL: 5 * time.Minute,
	})

	// Initial stats
	stats := service.CacheStats()
	if stats.TotalEntries != 0 {
		t.Errorf("expected 0 entries, got %d", stats.TotalEntries)
	}
	if stats.Provider != "test-provider" {
		t.Errorf("expected provider 'test-provider', got '%s'", stats.Provider)
	}

	// Add an entry
	_, _ = service.ComputeRoutes(context.Background(), DirectionsRequest{
		Origin:      geo.Point{Lat: 29.7174, Lon: -95.4018},
		Destination: geo.Point{Lat: 29.7199, Lon: -95.3422},
		Mode:        ModeDrive,
	})

	stats = service.CacheStats()
	if stats.TotalEntries != 1 {
		t.Errorf("expected 1 entry, got %d", stats.TotalEntries)
	}
	if stats.FreshEntries != 1 {
		t.Errorf("expected 1 fresh entry, got %d", stats.FreshEntries)
	}
}

func TestService_InvalidateCache(t *testing.T) {
	provider := &mockProvider{
		name:     "test-provider",
		profiles: []RouteProfile{ProfileDrive},
		response: driveResponse(),
	}

	service := NewService(ServiceConfig{
		Provider: provider,
		CacheTTL: 5 * time.Minute,
	})

	req := DirectionsRequest{
		Origin:      geo.Point{Lat: 29.7174, Lon: -95.4018},
		Destination: geo.Point{Lat: 29.7199, Lon: -95.3422},
		Mode:        ModeDrive,
	}

	_, _ = service.ComputeRoutes(context.Background(), req)
	service.InvalidateCache()

	if service.CacheStats().TotalEntries != 0 {
		t.Errorf("expected empty cache after invalidation, got %d entries", service.CacheStats().TotalEntries)
	}

	_, _ = service.ComputeRoutes(context.Background(), req)
	if provider.callCount.Load() != 2 {
		t.Errorf("expected 2 provider calls after invalidation, got %d", provider.callCount.Load())
	}
}

func TestSyntheticDirections_DistanceAndDuration(t *testing.T) {
	// Houston: Rice University to University of Houston, roughly 6km apart.
	req := DirectionsRequest{
		Origin:      geo.Point{Lat: 29.7174, Lon: -95.4018},
		Destination: geo.Point{Lat: 29.7199, Lon: -95.3422},
		Mode:        ModeDrive,
	}

	resp := syntheticDirections(req)
	if len(resp.Routes) != 1 {
		t.Fatalf("expected 1 route, got %d", len(resp.Routes))
	}

	route := resp.Routes[0]
	if route.DistanceMeters < 5000 || route.DistanceMeters > 7000 {
		t.Errorf("expected synthetic distance around 6km, got %dm", route.DistanceMeters)
	}
	if route.Source != SourceSynthetic {
		t.Errorf("expected source %q, got %q", SourceSynthetic, route.Source)
	}

	// Decoding the synthetic polyline must give back both endpoints.
	if route.GeometryPolyline == "" {
		t.Fatal("expected non-empty polyline")
	}
}
