package places

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"

	"github.com/routenest/routenest/internal/cache"
	"github.com/routenest/routenest/internal/quota"
	"github.com/routenest/routenest/pkg/geo"
)

// DefaultKeywords are the keyword-scoped queries issued per sample point.
var DefaultKeywords = []string{"apartment", "apartment complex", "condo", "housing"}

const opNearbySearch = "nearby-search"

// errBudgetExhausted halts a query when the rolling call budget denies
// another provider attempt.
var errBudgetExhausted = errors.New("call budget exhausted")

// MetricsRecorder receives provider call and cache signals from the
// engine. *middleware.ProviderMetrics satisfies it.
type MetricsRecorder interface {
	RecordRequest(provider, operation string, duration time.Duration, err error)
	RecordCacheHit(provider, operation string)
	RecordCacheMiss(provider, operation string)
}

// EngineConfig holds configuration for the place search engine.
type EngineConfig struct {
	// Provider is the place-search backend (required).
	Provider Provider

	// Logger for engine operations.
	Logger zerolog.Logger

	// Keywords are the queries run at each sample point.
	// Default: DefaultKeywords.
	Keywords []string

	// FallbackType is the category-scoped query run when keyword
	// results are sparse. Default: "apartment_complex".
	FallbackType string

	// SparseThreshold triggers the fallback type query when a point's
	// keyword results total fewer hits. Default: 3.
	SparseThreshold int

	// RadiusMeters is the per-point search radius. Default: 1600.
	RadiusMeters int

	// MaxPages bounds pagination per query. Default: 2.
	MaxPages int

	// PageDelay is the provider-required wait before a continuation
	// token becomes valid. Default: 2s.
	PageDelay time.Duration

	// MaxRetries bounds rate-limit retries per call. Default: 3.
	MaxRetries uint64

	// Concurrency caps in-flight sample points. Default: 5.
	Concurrency int

	// PointTimeout bounds one sample point's full search. Default: 15s.
	PointTimeout time.Duration

	// CacheTTL for per-query result caching. Default: 10 minutes.
	CacheTTL time.Duration

	// CacheCapacity is the max cached queries. Default: 2048.
	CacheCapacity int

	// CacheCellDecimals rounds the cache-key coordinate. Default: 3
	// (about 100m cells, so adjacent sample points share entries only
	// when they nearly coincide).
	CacheCellDecimals int

	// Budget is the rolling call budget, debited once per provider
	// attempt, retries included. Nil means unlimited.
	Budget *quota.Budget

	// Metrics is an optional sink for call and cache signals.
	Metrics MetricsRecorder
}

func (cfg EngineConfig) withDefaults() EngineConfig {
	if len(cfg.Keywords) == 0 {
		cfg.Keywords = DefaultKeywords
	}
	if cfg.FallbackType == "" {
		cfg.FallbackType = "apartment_complex"
	}
	if cfg.SparseThreshold == 0 {
		cfg.SparseThreshold = 3
	}
	if cfg.RadiusMeters == 0 {
		cfg.RadiusMeters = 1600
	}
	if cfg.MaxPages == 0 {
		cfg.MaxPages = 2
	}
	if cfg.PageDelay == 0 {
		cfg.PageDelay = 2 * time.Second
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.Concurrency == 0 {
		cfg.Concurrency = 5
	}
	if cfg.PointTimeout == 0 {
		cfg.PointTimeout = 15 * time.Second
	}
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = 10 * time.Minute
	}
	if cfg.CacheCapacity == 0 {
		cfg.CacheCapacity = 2048
	}
	if cfg.CacheCellDecimals == 0 {
		cfg.CacheCellDecimals = 3
	}
	return cfg
}

// Engine runs nearby-place searches along a route with bounded
// concurrency, pagination, rate-limit backoff, caching and a rolling
// call budget. Individual point and query failures degrade to empty
// results; the engine never fails an entire search.
type Engine struct {
	config EngineConfig
	logger zerolog.Logger
	cache  *cache.Cache[[]RawPlace]

	providerCalls atomic.Int64
}

// NewEngine creates a place search engine.
func NewEngine(cfg EngineConfig) *Engine {
	cfg = cfg.withDefaults()
	return &Engine{
		config: cfg,
		logger: cfg.Logger,
		cache: cache.New[[]RawPlace](cache.Config{
			TTL:      cfg.CacheTTL,
			Capacity: cfg.CacheCapacity,
		}),
	}
}

// ProviderCalls returns the number of network calls issued so far.
func (e *Engine) ProviderCalls() int64 {
	return e.providerCalls.Load()
}

// CacheStats returns cache hit/miss counters.
func (e *Engine) CacheStats() cache.Stats {
	return e.cache.Stats()
}

// ResetCache clears the query cache.
func (e *Engine) ResetCache() {
	e.cache.Reset()
}

// SearchNear runs the configured keyword queries at one point, plus the
// fallback type query when results are sparse. Queries run sequentially
// to avoid bursting the same point past provider limits. Duplicate hits
// across queries are removed by place ID.
func (e *Engine) SearchNear(ctx context.Context, pt geo.Point) []RawPlace {
	var collected []RawPlace

	for _, kw := range e.config.Keywords {
		results := e.runQuery(ctx, NearbyQuery{
			Point:        pt,
			RadiusMeters: e.config.RadiusMeters,
			Keyword:      kw,
		}, "kw:"+kw)
		collected = append(collected, results...)
	}

	if len(collected) < e.config.SparseThreshold {
		results := e.runQuery(ctx, NearbyQuery{
			Point:        pt,
			RadiusMeters: e.config.RadiusMeters,
			Type:         e.config.FallbackType,
		}, "type:"+e.config.FallbackType)
		collected = append(collected, results...)
	}

	return DedupeByID(collected)
}

// SearchAlongRoute fans SearchNear out over all sample points through a
// bounded worker pool. Per-point failures are logged and skipped; the
// result preserves sample-point order.
func (e *Engine) SearchAlongRoute(ctx context.Context, points []geo.Point) []RawPlace {
	if len(points) == 0 {
		return nil
	}

	e.logger.Info().
		Int("sample_points", len(points)).
		Int("concurrency", e.config.Concurrency).
		Msg("starting place search along route")

	type job struct {
		index int
		point geo.Point
	}

	jobs := make(chan job, len(points))
	perPoint := make([][]RawPlace, len(points))

	var wg sync.WaitGroup
	for i := 0; i < e.config.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				select {
				case <-ctx.Done():
					return
				default:
				}
				pointCtx, cancel := context.WithTimeout(ctx, e.config.PointTimeout)
				perPoint[j.index] = e.SearchNear(pointCtx, j.point)
				cancel()
			}
		}()
	}

	for i, p := range points {
		jobs <- job{index: i, point: p}
	}
	close(jobs)
	wg.Wait()

	var all []RawPlace
	for _, results := range perPoint {
		all = append(all, results...)
	}

	e.logger.Info().
		Int("raw_results", len(all)).
		Int64("provider_calls", e.providerCalls.Load()).
		Msg("place search along route completed")

	return all
}

// runQuery executes one query with pagination, consulting the cache and
// call budget first. Failures degrade to whatever was collected.
func (e *Engine) runQuery(ctx context.Context, query NearbyQuery, label string) []RawPlace {
	key := e.cacheKey(query.Point, label)
	if cached, ok := e.cache.Get(key); ok {
		if e.config.Metrics != nil {
			e.config.Metrics.RecordCacheHit(e.config.Provider.Name(), opNearbySearch)
		}
		return cached
	}
	if e.config.Metrics != nil {
		e.config.Metrics.RecordCacheMiss(e.config.Provider.Name(), opNearbySearch)
	}

	var collected []RawPlace
	failed := false

	for page := 0; page < e.config.MaxPages; page++ {
		result, err := e.fetchPage(ctx, query)
		if err != nil {
			if errors.Is(err, errBudgetExhausted) {
				e.logger.Warn().
					Str("query", label).
					Msg("place search call budget exhausted, returning partial results")
				return collected
			}
			e.logger.Warn().
				Err(err).
				Str("query", label).
				Float64("lat", query.Point.Lat).
				Float64("lon", query.Point.Lon).
				Msg("place search query failed, skipping")
			failed = true
			break
		}

		collected = append(collected, result.Results...)

		if result.NextPageToken == "" {
			break
		}
		query.PageToken = result.NextPageToken

		// Continuation tokens need a short delay before they validate.
		select {
		case <-ctx.Done():
			return collected
		case <-time.After(e.config.PageDelay):
		}
	}

	// Failed queries are not cached so the next request can retry.
	if !failed {
		e.cache.Set(key, collected)
	}
	return collected
}

// fetchPage issues one provider call, retrying rate-limit responses
// with jittered exponential backoff. Other failures are permanent.
// Every attempt, retries included, debits the call budget.
func (e *Engine) fetchPage(ctx context.Context, query NearbyQuery) (*NearbyPage, error) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 500 * time.Millisecond
	bo.MaxInterval = 5 * time.Second
	bo.MaxElapsedTime = 0

	policy := backoff.WithContext(backoff.WithMaxRetries(bo, e.config.MaxRetries), ctx)

	var page *NearbyPage
	operation := func() error {
		if e.config.Budget != nil && !e.config.Budget.Allow() {
			return backoff.Permanent(errBudgetExhausted)
		}
		e.providerCalls.Add(1)
		start := time.Now()
		result, err := e.config.Provider.NearbySearch(ctx, query)
		if e.config.Metrics != nil {
			e.config.Metrics.RecordRequest(e.config.Provider.Name(), opNearbySearch, time.Since(start), err)
		}
		if err != nil {
			if errors.Is(err, ErrRateLimitExceeded) {
				return err
			}
			return backoff.Permanent(err)
		}
		page = result
		return nil
	}

	if err := backoff.Retry(operation, policy); err != nil {
		return nil, err
	}
	if page == nil {
		return nil, &Error{
			Provider: e.config.Provider.Name(),
			Code:     "EMPTY_RESPONSE",
			Message:  "provider returned no page",
			Err:      ErrMalformedResponse,
		}
	}
	return page, nil
}

func (e *Engine) cacheKey(pt geo.Point, label string) string {
	return fmt.Sprintf("%s:%s:%s",
		e.config.Provider.Name(),
		geo.CellKey(pt, e.config.CacheCellDecimals),
		label,
	)
}
