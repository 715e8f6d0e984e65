package routing

import (
	"fmt"
	"math"
	"time"

	"github.com/routenest/routenest/pkg/geo"
	"github.com/routenest/routenest/pkg/polyline"
)

// SyntheticProviderName tags responses produced by the straight-line
// fallback rather than a real directions provider.
const SyntheticProviderName = "synthetic"

// assumedSpeedMph is the average speed used to estimate synthetic route
// durations per travel mode.
var assumedSpeedMph = map[TravelMode]float64{
	ModeDrive:   30,
	ModeBike:    10,
	ModeWalk:    3,
	ModeTransit: 18,
}

// syntheticDirections builds a two-point straight-line route. Distance is
// great-circle; duration assumes the mode's average speed. This is the
// degrade-gracefully path when no provider route can be obtained, and every
// route it produces is tagged SourceSynthetic.
func syntheticDirections(req DirectionsRequest) *DirectionsResponse {
	line := []geo.Point{req.Origin, req.Destination}

	miles := geo.HaversineMiles(req.Origin, req.Destination)
	meters := geo.MilesToKm(miles) * 1000

	speed := assumedSpeedMph[req.Mode]
	if speed == 0 {
		speed = assumedSpeedMph[ModeDrive]
	}
	seconds := miles / speed * 3600

	bound := geo.BoundOf(line)

	route := Route{
		ID:               fmt.Sprintf("synthetic-%s-0", req.Mode),
		GeometryPolyline: polyline.Encode(line),
		DistanceMeters:   int(math.Round(meters)),
		DurationSeconds:  int(math.Round(seconds)),
		Summary:          fmt.Sprintf("Direct path (%.1f mi)", miles),
		Bound:            &bound,
		Source:           SourceSynthetic,
		Legs: []Leg{{
			DistanceMeters:  int(math.Round(meters)),
			DurationSeconds: int(math.Round(seconds)),
			Steps: []Step{{
				Mode:            req.Mode,
				Instruction:     "Head directly toward destination",
				DistanceMeters:  int(math.Round(meters)),
				DurationSeconds: int(math.Round(seconds)),
			}},
		}},
	}

	return &DirectionsResponse{
		Routes:    []Route{route},
		Provider:  SyntheticProviderName,
		FetchedAt: time.Now(),
	}
}
