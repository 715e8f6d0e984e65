package search

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/routenest/routenest/internal/geocoding"
	"github.com/routenest/routenest/internal/places"
	"github.com/routenest/routenest/internal/routing"
	"github.com/routenest/routenest/internal/sampling"
	"github.com/routenest/routenest/pkg/geo"
	"github.com/routenest/routenest/pkg/polyline"
)

// ServiceConfig holds configuration for the search orchestrator.
type ServiceConfig struct {
	// Geocoder resolves free-text locations (required).
	Geocoder *geocoding.Service

	// Router computes routes (required).
	Router *routing.Service

	// Engine runs place searches along the route (required).
	Engine *places.Engine

	// Classifier filters results down to residential housing.
	// If nil, a classifier with default keyword lists is used.
	Classifier *places.Classifier

	// Logger for pipeline operations.
	Logger zerolog.Logger

	// Sampling controls route sample-point selection.
	Sampling sampling.Config

	// OuterCutoffMiles drops candidates beyond this route distance.
	// Default: 3.
	OuterCutoffMiles float64

	// DedupeCellDecimals quantizes coordinates for spatial dedupe.
	// Default: places.DefaultCellDecimals.
	DedupeCellDecimals int
}

// Service is the route-aware apartment search pipeline.
type Service struct {
	config     ServiceConfig
	classifier *places.Classifier
	logger     zerolog.Logger
}

// NewService creates the search orchestrator.
func NewService(cfg ServiceConfig) *Service {
	classifier := cfg.Classifier
	if classifier == nil {
		classifier = places.NewClassifier(places.ClassifierConfig{})
	}
	if cfg.OuterCutoffMiles == 0 {
		cfg.OuterCutoffMiles = DefaultOuterCutoffMiles
	}
	return &Service{
		config:     cfg,
		classifier: classifier,
		logger:     cfg.Logger,
	}
}

// RouteAndApartments runs the full pipeline: geocode both endpoints,
// compute a route, sample points along it, search for places, classify,
// dedupe, and bucket by distance to the route. The only failures that
// abort the search are invalid input, an unresolvable endpoint, and
// route establishment failure; everything downstream degrades to a
// smaller (possibly empty) result.
func (s *Service) RouteAndApartments(ctx context.Context, req SearchRequest) (*SearchResult, error) {
	origin := strings.TrimSpace(req.Origin)
	destination := strings.TrimSpace(req.Destination)
	if origin == "" || destination == "" {
		return nil, fmt.Errorf("%w: origin and destination are required", ErrInvalidInput)
	}

	mode := req.Mode
	if mode == "" {
		mode = routing.ModeDrive
	}

	searchID := "sr_" + uuid.New().String()[:22]
	start := time.Now()

	originMatch, err := s.config.Geocoder.Geocode(ctx, origin)
	if err != nil {
		if errors.Is(err, geocoding.ErrNotFound) {
			return nil, fmt.Errorf("%w: %q", ErrOriginNotFound, origin)
		}
		return nil, fmt.Errorf("geocoding origin %q: %w", origin, err)
	}

	destMatch, err := s.config.Geocoder.Geocode(ctx, destination)
	if err != nil {
		if errors.Is(err, geocoding.ErrNotFound) {
			return nil, fmt.Errorf("%w: %q", ErrDestinationNotFound, destination)
		}
		return nil, fmt.Errorf("geocoding destination %q: %w", destination, err)
	}

	directions, err := s.config.Router.ComputeRoutes(ctx, routing.DirectionsRequest{
		Origin:      originMatch.Point,
		Destination: destMatch.Point,
		Mode:        mode,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoRoute, err)
	}
	if len(directions.Routes) == 0 {
		return nil, ErrNoRoute
	}

	routeIndex := req.RouteIndex
	if routeIndex < 0 || routeIndex >= len(directions.Routes) {
		routeIndex = 0
	}
	selected := directions.Routes[routeIndex]

	line := polyline.Decode(selected.GeometryPolyline)
	samplePoints := sampling.Sample(line, s.config.Sampling)

	s.logger.Info().
		Str("search_id", searchID).
		Str("origin", origin).
		Str("destination", destination).
		Str("mode", string(mode)).
		Str("route_source", string(selected.Source)).
		Int("route_options", len(directions.Routes)).
		Int("polyline_points", len(line)).
		Int("sample_points", len(samplePoints)).
		Msg("route established, searching along it")

	raw := s.config.Engine.SearchAlongRoute(ctx, samplePoints)
	residential := s.classifier.Filter(raw)
	unique := places.Dedupe(residential, s.config.DedupeCellDecimals)

	cutoff := s.config.OuterCutoffMiles
	if req.MaxDistanceMiles > 0 {
		cutoff = req.MaxDistanceMiles
	}

	listings := s.bucketByDistance(unique, line, cutoff)

	result := &SearchResult{
		SearchID:      searchID,
		RouteOptions:  directions.Routes,
		SelectedRoute: selected,
		Apartments:    listings,
	}
	for _, bucket := range Buckets {
		result.TotalFound += len(listings[bucket])
	}

	s.logger.Info().
		Str("search_id", searchID).
		Int("raw_results", len(raw)).
		Int("residential", len(residential)).
		Int("unique", len(unique)).
		Int("total_found", result.TotalFound).
		Dur("duration", time.Since(start)).
		Msg("apartment search completed")

	return result, nil
}

// bucketByDistance computes each candidate's distance to the route,
// drops those beyond the cutoff, and groups the rest into buckets
// sorted by distance ascending.
func (s *Service) bucketByDistance(candidates []places.RawPlace, route []geo.Point, cutoffMiles float64) map[DistanceBucket][]ApartmentListing {
	out := map[DistanceBucket][]ApartmentListing{
		BucketOneMile:    {},
		BucketTwoMiles:   {},
		BucketThreeMiles: {},
	}

	for i := range candidates {
		miles := DistanceToRouteMiles(candidates[i].Point, route)
		bucket, ok := BucketFor(miles, cutoffMiles)
		if !ok {
			continue
		}
		out[bucket] = append(out[bucket], ApartmentListing{
			Place:                candidates[i],
			DistanceToRouteMiles: miles,
			Bucket:               bucket,
		})
	}

	for _, bucket := range Buckets {
		listings := out[bucket]
		sort.Slice(listings, func(i, j int) bool {
			return listings[i].DistanceToRouteMiles < listings[j].DistanceToRouteMiles
		})
	}

	return out
}
