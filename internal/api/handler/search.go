package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/routenest/routenest/internal/api/models"
	"github.com/routenest/routenest/internal/api/response"
	"github.com/routenest/routenest/internal/routing"
	"github.com/routenest/routenest/internal/search"
)

// SearchHandler handles apartment search endpoints.
type SearchHandler struct {
	service *search.Service
}

// NewSearchHandler creates a new SearchHandler.
func NewSearchHandler(service *search.Service) *SearchHandler {
	return &SearchHandler{service: service}
}

var apiModeToTravelMode = map[models.Mode]routing.TravelMode{
	models.ModeDrive:   routing.ModeDrive,
	models.ModeWalk:    routing.ModeWalk,
	models.ModeBike:    routing.ModeBike,
	models.ModeTransit: routing.ModeTransit,
}

// ApartmentSearch handles POST /v1/apartments:search - find apartments
// along a commute route, bucketed by distance to the route.
func (h *SearchHandler) ApartmentSearch(w http.ResponseWriter, r *http.Request) {
	var input models.ApartmentSearchRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	var fieldErrors []models.FieldError
	if input.Origin == "" {
		fieldErrors = append(fieldErrors, models.FieldError{Field: "origin", Message: "required"})
	}
	if input.Destination == "" {
		fieldErrors = append(fieldErrors, models.FieldError{Field: "destination", Message: "required"})
	}
	if len(fieldErrors) > 0 {
		response.BadRequest(w, r, "origin and destination are required", fieldErrors)
		return
	}

	mode := routing.ModeDrive
	if input.Mode != "" {
		m, ok := apiModeToTravelMode[input.Mode]
		if !ok {
			response.BadRequest(w, r, "unknown travel mode", []models.FieldError{
				{Field: "mode", Message: "must be one of DRIVE, WALK, BIKE, TRANSIT"},
			})
			return
		}
		mode = m
	}

	req := search.SearchRequest{
		Origin:      input.Origin,
		Destination: input.Destination,
		Mode:        mode,
	}
	if input.RouteIndex != nil {
		req.RouteIndex = *input.RouteIndex
	}
	if input.MaxDistanceMiles != nil {
		req.MaxDistanceMiles = *input.MaxDistanceMiles
	}

	result, err := h.service.RouteAndApartments(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, search.ErrInvalidInput):
			response.BadRequest(w, r, err.Error(), nil)
		case errors.Is(err, search.ErrOriginNotFound),
			errors.Is(err, search.ErrDestinationNotFound):
			response.NotFound(w, r, err.Error())
		case errors.Is(err, search.ErrNoRoute):
			response.ServiceUnavailable(w, r, err.Error())
		default:
			response.InternalError(w, r, "unexpected failure during apartment search")
		}
		return
	}

	resp := toSearchResponse(result)
	w.Header().Set("Cache-Control", "private, max-age=60")
	response.JSON(w, r, http.StatusOK, resp)
}

func toSearchResponse(result *search.SearchResult) models.ApartmentSearchResponse {
	resp := models.ApartmentSearchResponse{
		SearchID:        result.SearchID,
		GeneratedAt:     models.Timestamp(time.Now()),
		RouteOptions:    make([]models.RouteOption, 0, len(result.RouteOptions)),
		SelectedRouteID: result.SelectedRoute.ID,
		Apartments:      make(map[string][]models.ApartmentListing, len(result.Apartments)),
		TotalFound:      result.TotalFound,
	}

	for i := range result.RouteOptions {
		route := &result.RouteOptions[i]
		option := models.RouteOption{
			ID:              route.ID,
			Polyline:        route.GeometryPolyline,
			DistanceMeters:  route.DistanceMeters,
			DurationSeconds: route.DurationSeconds,
			Summary:         route.Summary,
			Source:          string(route.Source),
		}
		if route.Bound != nil {
			option.Bounds = &models.GeoBox{
				MinLat: route.Bound.MinLat,
				MinLon: route.Bound.MinLon,
				MaxLat: route.Bound.MaxLat,
				MaxLon: route.Bound.MaxLon,
			}
		}
		resp.RouteOptions = append(resp.RouteOptions, option)
	}

	for bucket, listings := range result.Apartments {
		out := make([]models.ApartmentListing, 0, len(listings))
		for _, l := range listings {
			out = append(out, models.ApartmentListing{
				PlaceID:              l.Place.PlaceID,
				Name:                 l.Place.Name,
				Location:             models.Point{Lat: l.Place.Point.Lat, Lon: l.Place.Point.Lon},
				Vicinity:             l.Place.Vicinity,
				Types:                l.Place.Types,
				Rating:               l.Place.Rating,
				RatingCount:          l.Place.RatingCount,
				DistanceToRouteMiles: l.DistanceToRouteMiles,
				Bucket:               string(l.Bucket),
			})
		}
		resp.Apartments[string(bucket)] = out
	}

	return resp
}
