package search

import "github.com/routenest/routenest/pkg/geo"

// DefaultOuterCutoffMiles drops candidates farther than 3 miles from
// the route.
const DefaultOuterCutoffMiles = 3.0

// DistanceToRouteMiles computes the minimum perpendicular distance from
// a point to the route polyline. All math runs in kilometers; the mile
// conversion is applied exactly once, here.
func DistanceToRouteMiles(p geo.Point, route []geo.Point) float64 {
	return geo.KmToMiles(geo.DistanceToPolylineKm(p, route))
}

// BucketFor assigns a distance to its bucket. The second return is
// false when the distance exceeds the outer cutoff and the candidate
// should be dropped.
func BucketFor(miles, outerCutoffMiles float64) (DistanceBucket, bool) {
	if outerCutoffMiles <= 0 {
		outerCutoffMiles = DefaultOuterCutoffMiles
	}
	switch {
	case miles > outerCutoffMiles:
		return "", false
	case miles <= 1:
		return BucketOneMile, true
	case miles <= 2:
		return BucketTwoMiles, true
	default:
		return BucketThreeMiles, true
	}
}
