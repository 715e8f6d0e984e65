package search_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/routenest/routenest/internal/search"
	"github.com/routenest/routenest/pkg/geo"
)

func TestBucketFor(t *testing.T) {
	tests := []struct {
		name       string
		miles      float64
		wantBucket search.DistanceBucket
		wantKept   bool
	}{
		{"zero distance", 0, search.BucketOneMile, true},
		{"well inside first bucket", 0.4, search.BucketOneMile, true},
		{"exactly one mile", 1.0, search.BucketOneMile, true},
		{"just past one mile", 1.000001, search.BucketTwoMiles, true},
		{"exactly two miles", 2.0, search.BucketTwoMiles, true},
		{"just past two miles", 2.000001, search.BucketThreeMiles, true},
		{"exactly three miles", 3.0, search.BucketThreeMiles, true},
		{"just past three miles", 3.000001, "", false},
		{"far away", 10, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bucket, kept := search.BucketFor(tt.miles, search.DefaultOuterCutoffMiles)
			assert.Equal(t, tt.wantKept, kept)
			assert.Equal(t, tt.wantBucket, bucket)
		})
	}
}

func TestBucketFor_CustomCutoff(t *testing.T) {
	bucket, kept := search.BucketFor(4.5, 5)
	assert.True(t, kept, "a wider cutoff extends the outer bucket")
	assert.Equal(t, search.BucketThreeMiles, bucket)

	_, kept = search.BucketFor(1.5, 1)
	assert.False(t, kept, "a tighter cutoff drops mid-range candidates")

	bucket, kept = search.BucketFor(2.5, 0)
	assert.True(t, kept, "non-positive cutoff falls back to the default")
	assert.Equal(t, search.BucketThreeMiles, bucket)
}

func TestDistanceToRouteMiles(t *testing.T) {
	// North-south route along a meridian; a point offset in longitude is
	// abeam the route, so its distance is the longitude offset.
	route := []geo.Point{
		{Lat: 29.70, Lon: -95.40},
		{Lat: 29.75, Lon: -95.40},
	}

	onRoute := geo.Point{Lat: 29.72, Lon: -95.40}
	assert.InDelta(t, 0, search.DistanceToRouteMiles(onRoute, route), 0.01)

	// ~0.025 degrees of longitude at this latitude is about 1.5 miles.
	abeam := geo.Point{Lat: 29.725, Lon: -95.425}
	got := search.DistanceToRouteMiles(abeam, route)
	assert.InDelta(t, 1.5, got, 0.05)

	// Distance to the route beats distance to either endpoint.
	toStart := geo.KmToMiles(geo.HaversineKm(abeam, route[0]))
	assert.Less(t, got, toStart)
}

func TestDistanceToRouteMiles_EmptyRoute(t *testing.T) {
	p := geo.Point{Lat: 29.72, Lon: -95.40}
	assert.True(t, math.IsInf(search.DistanceToRouteMiles(p, nil), 1))
}
