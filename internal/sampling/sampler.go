// Package sampling reduces a dense route polyline to a sparse set of search
// points. Vertex-interval sampling alone over-samples near turns (where
// polyline vertices cluster) and under-samples long straight segments;
// distance-interval sampling normalizes physical spacing. The union of both,
// spatially deduplicated, bounds the number of downstream place-search calls
// while keeping route coverage.
package sampling

import (
	"github.com/routenest/routenest/pkg/geo"
)

// Config holds sampling parameters.
type Config struct {
	// VertexInterval takes every Nth polyline vertex (default: 10).
	VertexInterval int

	// DistanceIntervalKm emits a point each time this much accumulated
	// route distance passes (default: 0.3 km).
	DistanceIntervalKm float64

	// MinSeparationKm discards a point when a previously accepted point
	// lies within this distance (default: 0.2 km).
	MinSeparationKm float64
}

// DefaultConfig returns the default sampling parameters.
func DefaultConfig() Config {
	return Config{
		VertexInterval:     10,
		DistanceIntervalKm: 0.3,
		MinSeparationKm:    0.2,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.VertexInterval <= 0 {
		c.VertexInterval = d.VertexInterval
	}
	if c.DistanceIntervalKm <= 0 {
		c.DistanceIntervalKm = d.DistanceIntervalKm
	}
	if c.MinSeparationKm <= 0 {
		c.MinSeparationKm = d.MinSeparationKm
	}
	return c
}

// Sample selects search points along a decoded route polyline, in route
// order. Polylines with fewer than two points are returned unchanged.
func Sample(line []geo.Point, cfg Config) []geo.Point {
	if len(line) < 2 {
		return line
	}
	cfg = cfg.withDefaults()

	return dedupeBySeparation(collectCandidates(line, cfg), cfg.MinSeparationKm)
}

// collectCandidates walks the polyline once, emitting every Nth vertex plus
// an interpolated point each time accumulated route distance crosses the
// distance interval. Walking keeps candidates in route order; the first and
// last vertices are always emitted.
func collectCandidates(line []geo.Point, cfg Config) []geo.Point {
	candidates := []geo.Point{line[0]}
	accumulated := 0.0

	for i := 1; i < len(line); i++ {
		segmentKm := geo.HaversineKm(line[i-1], line[i])
		if segmentKm > 0 {
			consumedKm := 0.0
			for accumulated+(segmentKm-consumedKm) >= cfg.DistanceIntervalKm {
				consumedKm += cfg.DistanceIntervalKm - accumulated
				accumulated = 0

				fraction := consumedKm / segmentKm
				candidates = append(candidates, geo.Point{
					Lat: line[i-1].Lat + fraction*(line[i].Lat-line[i-1].Lat),
					Lon: line[i-1].Lon + fraction*(line[i].Lon-line[i-1].Lon),
				})
			}
			accumulated += segmentKm - consumedKm
		}

		if i%cfg.VertexInterval == 0 || i == len(line)-1 {
			candidates = append(candidates, line[i])
		}
	}

	return candidates
}

// dedupeBySeparation keeps a point only when no previously accepted point
// lies within minKm. Points are processed in the order generated, so
// earlier points win ties. Candidate sets are small enough that the
// pairwise scan stays cheap.
func dedupeBySeparation(points []geo.Point, minKm float64) []geo.Point {
	accepted := make([]geo.Point, 0, len(points))

	for _, p := range points {
		tooClose := false
		for _, a := range accepted {
			if geo.HaversineKm(p, a) < minKm {
				tooClose = true
				break
			}
		}
		if !tooClose {
			accepted = append(accepted, p)
		}
	}

	return accepted
}
