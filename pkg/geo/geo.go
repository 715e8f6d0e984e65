// Package geo provides great-circle and point-to-segment distance math for
// WGS84 coordinates. All distances are computed in kilometers; conversion to
// miles happens exactly once, via KmToMiles, at whatever boundary needs it.
package geo

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

const (
	// earthRadiusKm is the mean Earth radius used for haversine distances.
	earthRadiusKm = 6371.0088

	// milesPerKm is the exact conversion factor between kilometers and miles.
	milesPerKm = 0.621371

	// metersPerDegreeLat is the length of one degree of latitude, derived
	// from the mean Earth radius.
	metersPerDegreeLat = earthRadiusKm * 1000 * math.Pi / 180
)

// Point is a geographic point in WGS84 degrees.
type Point struct {
	Lat float64
	Lon float64
}

// Validate checks that the point is within valid latitude/longitude ranges.
func (p Point) Validate() error {
	if p.Lat < -90 || p.Lat > 90 {
		return fmt.Errorf("latitude %f out of range [-90, 90]", p.Lat)
	}
	if p.Lon < -180 || p.Lon > 180 {
		return fmt.Errorf("longitude %f out of range [-180, 180]", p.Lon)
	}
	return nil
}

// KmToMiles converts kilometers to miles.
func KmToMiles(km float64) float64 {
	return km * milesPerKm
}

// MilesToKm converts miles to kilometers.
func MilesToKm(miles float64) float64 {
	return miles / milesPerKm
}

// HaversineKm returns the great-circle distance between two points in
// kilometers.
func HaversineKm(a, b Point) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	sinDLat := math.Sin(dLat / 2)
	sinDLon := math.Sin(dLon / 2)

	h := sinDLat*sinDLat + math.Cos(lat1)*math.Cos(lat2)*sinDLon*sinDLon
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(h))
}

// HaversineMiles returns the great-circle distance between two points in
// miles.
func HaversineMiles(a, b Point) float64 {
	return KmToMiles(HaversineKm(a, b))
}

// DistanceToSegmentKm returns the distance in kilometers from p to the
// nearest point on the segment [a, b]. The segment is projected onto a local
// planar frame centered on a, which is accurate for the segment lengths that
// occur in route polylines (well under the ~100km where the equirectangular
// approximation degrades).
func DistanceToSegmentKm(p, a, b Point) float64 {
	cosLat := math.Cos(a.Lat * math.Pi / 180)

	project := func(q Point) orb.Point {
		return orb.Point{
			(q.Lon - a.Lon) * metersPerDegreeLat * cosLat,
			(q.Lat - a.Lat) * metersPerDegreeLat,
		}
	}

	meters := planar.DistanceFromSegment(project(a), project(b), project(p))
	return meters / 1000
}

// DistanceToPolylineKm returns the minimum distance in kilometers from p to
// any segment of the polyline. A single-point polyline degenerates to the
// distance to that point; an empty polyline returns +Inf.
func DistanceToPolylineKm(p Point, line []Point) float64 {
	switch len(line) {
	case 0:
		return math.Inf(1)
	case 1:
		return HaversineKm(p, line[0])
	}

	minKm := math.Inf(1)
	for i := 1; i < len(line); i++ {
		if d := DistanceToSegmentKm(p, line[i-1], line[i]); d < minKm {
			minKm = d
		}
	}
	return minKm
}

// CellKey quantizes a point to a fixed-precision grid cell string. At 4
// decimals a cell is roughly 11m of latitude; at 3 decimals roughly 110m.
// Points sharing a cell key are treated as spatially identical.
func CellKey(p Point, decimals int) string {
	return fmt.Sprintf("%.*f,%.*f", decimals, p.Lat, decimals, p.Lon)
}

// Bound is a geographic bounding box.
type Bound struct {
	MinLat float64
	MinLon float64
	MaxLat float64
	MaxLon float64
}

// BoundOf computes the bounding box of a set of points. Returns the zero
// Bound for an empty slice.
func BoundOf(points []Point) Bound {
	if len(points) == 0 {
		return Bound{}
	}

	mp := make(orb.MultiPoint, 0, len(points))
	for _, p := range points {
		mp = append(mp, orb.Point{p.Lon, p.Lat})
	}
	b := mp.Bound()

	return Bound{
		MinLat: b.Min[1],
		MinLon: b.Min[0],
		MaxLat: b.Max[1],
		MaxLon: b.Max[0],
	}
}
