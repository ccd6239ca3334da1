package nominatim

import (
	"context"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jonboulle/clockwork"

	"github.com/meteorwatch/skyfall-alert/internal/domain"
	"github.com/meteorwatch/skyfall-alert/internal/observability"
)

// minQueryLen rejects queries too short to resolve meaningfully; they would
// burn a rate-limited external call on an ambiguous lookup.
const minQueryLen = 3

// GeocacheStore is the durable cache consulted before any external call.
type GeocacheStore interface {
	GetGeocache(ctx context.Context, query string) (domain.GeocacheEntry, bool, error)
	UpsertGeocache(ctx context.Context, entry *domain.GeocacheEntry) error
}

// Searcher performs one external geocoding lookup.
type Searcher interface {
	Search(ctx context.Context, query string) (*domain.Coordinates, error)
}

// Resolver translates place queries to coordinates through the cache, the
// rate limiter, and the external client, in that order. A cache hit costs
// nothing; a miss blocks for at least the configured interval.
type Resolver struct {
	cache   GeocacheStore
	client  Searcher
	limiter *intervalLimiter
	clock   clockwork.Clock
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewResolver creates a Resolver. minInterval is the mandatory spacing after
// each external call (the service policy asks for roughly one per second).
func NewResolver(cache GeocacheStore, client Searcher, clock clockwork.Clock, minInterval time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Resolver {
	return &Resolver{
		cache:   cache,
		client:  client,
		limiter: newIntervalLimiter(clock, minInterval),
		clock:   clock,
		logger:  logger,
		metrics: metrics,
	}
}

// Resolve returns coordinates for query, or nil when the query is too short
// or the service finds nothing. Only successful resolutions are cached, so a
// "no result" query is retried on the next scan that produces it.
func (r *Resolver) Resolve(ctx context.Context, query string) (*domain.Coordinates, error) {
	query = strings.TrimSpace(query)
	if utf8.RuneCountInString(query) < minQueryLen {
		return nil, nil
	}

	entry, ok, err := r.cache.GetGeocache(ctx, query)
	if err != nil {
		return nil, err
	}
	if ok {
		r.metrics.GeocodeCache.WithLabelValues("hit").Inc()
		return &domain.Coordinates{
			Latitude:    entry.Latitude,
			Longitude:   entry.Longitude,
			DisplayName: entry.DisplayName,
		}, nil
	}
	r.metrics.GeocodeCache.WithLabelValues("miss").Inc()

	if err := r.limiter.wait(ctx); err != nil {
		return nil, err
	}
	result, err := r.client.Search(ctx, query)
	r.limiter.mark()
	if err != nil {
		r.metrics.GeocodeRequests.WithLabelValues("error").Inc()
		return nil, err
	}
	if result == nil {
		r.metrics.GeocodeRequests.WithLabelValues("empty").Inc()
		return nil, nil
	}
	r.metrics.GeocodeRequests.WithLabelValues("success").Inc()

	cacheEntry := &domain.GeocacheEntry{
		Query:       query,
		Latitude:    result.Latitude,
		Longitude:   result.Longitude,
		DisplayName: result.DisplayName,
		CreatedAt:   r.clock.Now().UTC(),
	}
	if err := r.cache.UpsertGeocache(ctx, cacheEntry); err != nil {
		// The resolution itself succeeded; a cache write failure only costs
		// a repeat lookup later.
		r.logger.Warn("geocache write failed", "query", query, "error", err)
	}

	return result, nil
}
