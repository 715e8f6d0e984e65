// Package main provides the entrypoint for the RouteNest API server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/routenest/routenest/internal/api"
	"github.com/routenest/routenest/internal/api/middleware"
	"github.com/routenest/routenest/internal/geocoding"
	"github.com/routenest/routenest/internal/geocoding/nominatim"
	"github.com/routenest/routenest/internal/places"
	"github.com/routenest/routenest/internal/places/googleplaces"
	"github.com/routenest/routenest/internal/provider/resilience"
	"github.com/routenest/routenest/internal/quota"
	"github.com/routenest/routenest/internal/routing"
	"github.com/routenest/routenest/internal/routing/openrouteservice"
	"github.com/routenest/routenest/internal/search"
	"github.com/routenest/routenest/internal/telemetry"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "routenest-api"

	// Setup structured logging
	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting RouteNest API")

	// Get configuration from environment
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	otlpEndpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	if otlpEndpoint == "" {
		otlpEndpoint = "localhost:4317"
	}

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}

	// Initialize OpenTelemetry
	ctx := context.Background()
	telemetryEnabled := os.Getenv("OTEL_ENABLED") == "true"

	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    env,
		OTLPEndpoint:   otlpEndpoint,
		Enabled:        telemetryEnabled,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	if telemetryEnabled {
		log.Info().
			Str("otlp_endpoint", otlpEndpoint).
			Msg("OpenTelemetry initialized")
	}

	// Initialize metrics
	metrics, err := middleware.NewMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize metrics")
		os.Exit(1) //nolint:gocritic // intentional exit, telemetry cleanup is best-effort
	}

	// Provider health registry, exposed via /v1/ops/providers
	registry := resilience.NewRegistry()

	// Initialize geocoding (Nominatim-compatible provider)
	geocodeClient := nominatim.NewClient(nominatim.ClientConfig{
		BaseURL:   os.Getenv("NOMINATIM_BASE_URL"),
		UserAgent: os.Getenv("NOMINATIM_USER_AGENT"),
		Registry:  registry,
		Logger:    log,
	})
	geocoder := geocoding.NewService(geocoding.ServiceConfig{
		Provider: geocodeClient,
		Logger:   log,
	})
	log.Info().Msg("geocoding service initialized")

	// Initialize routing. Without an API key the router serves synthetic
	// straight-line routes, so searches still work in degraded form.
	var directionsProvider routing.Provider
	orsAPIKey := os.Getenv("ORS_API_KEY")
	if orsAPIKey != "" {
		directionsProvider = openrouteservice.NewClient(openrouteservice.ClientConfig{
			APIKey:   orsAPIKey,
			BaseURL:  os.Getenv("ORS_BASE_URL"),
			Registry: registry,
			Logger:   log,
		})
		log.Info().Msg("directions provider initialized")
	} else {
		log.Warn().Msg("ORS_API_KEY not set - serving synthetic routes only")
	}
	router := routing.NewService(routing.ServiceConfig{
		Provider: directionsProvider,
		Logger:   log,
	})

	// Initialize place search
	placesClient := googleplaces.NewClient(googleplaces.ClientConfig{
		APIKey:   os.Getenv("PLACES_API_KEY"),
		BaseURL:  os.Getenv("PLACES_BASE_URL"),
		Registry: registry,
		Logger:   log,
	})
	if os.Getenv("PLACES_API_KEY") == "" {
		log.Warn().Msg("PLACES_API_KEY not set - place searches will return empty results")
	}

	placesMetrics, err := middleware.NewProviderMetrics(googleplaces.ProviderName)
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize places provider metrics")
		os.Exit(1)
	}

	budget := quota.NewBudget(envInt("SEARCH_QUOTA_PER_HOUR", 500), time.Hour)
	engine := places.NewEngine(places.EngineConfig{
		Provider:    placesClient,
		Logger:      log,
		Concurrency: envInt("SEARCH_CONCURRENCY", 5),
		Budget:      budget,
		Metrics:     placesMetrics,
	})
	log.Info().Msg("place search engine initialized")

	// Initialize the search pipeline
	searchService := search.NewService(search.ServiceConfig{
		Geocoder: geocoder,
		Router:   router,
		Engine:   engine,
		Logger:   log,
	})
	log.Info().Msg("search service initialized")

	// Create router with configuration
	apiRouter := api.NewRouter(api.RouterConfig{
		Version:       Version,
		BuildTime:     BuildTime,
		Logger:        log,
		ServiceName:   serviceName,
		Metrics:       metrics,
		SearchService: searchService,
		Registry:      registry,
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      apiRouter,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("addr", server.Addr).
			Msg("server listening")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		os.Exit(1)
	}

	log.Info().Msg("server stopped")
}

func envInt(name string, fallback int) int {
	v := os.Getenv(name)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
