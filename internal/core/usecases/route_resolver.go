package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/samirrijal/seacorridor/internal/core/domain"
	"github.com/samirrijal/seacorridor/internal/core/geometry"
	"github.com/samirrijal/seacorridor/internal/core/ports"
	"github.com/samirrijal/seacorridor/internal/pkg/metrics"
	"github.com/samirrijal/seacorridor/internal/pkg/telemetry"
)

// SeaRouteResolver asks the sea graph for a shortest path and corrects it
// for the antimeridian.
type SeaRouteResolver struct {
	graph    ports.SeaGraph
	cache    ports.CacheService
	cacheTTL int
}

// NewSeaRouteResolver creates a new SeaRouteResolver. cache may be nil.
func NewSeaRouteResolver(graph ports.SeaGraph, cache ports.CacheService, cacheTTLSeconds int) *SeaRouteResolver {
	if cacheTTLSeconds <= 0 {
		cacheTTLSeconds = 3600
	}
	return &SeaRouteResolver{graph: graph, cache: cache, cacheTTL: cacheTTLSeconds}
}

// ShortestPath returns the corrected sea path from origin to destination.
// A missing path is reported as a *domain.RoutingError.
func (r *SeaRouteResolver) ShortestPath(ctx context.Context, origin, destination domain.GeoPoint) ([]domain.GeoPoint, error) {
	ctx, span := telemetry.Tracer().Start(ctx, telemetry.SpanResolveRoute)
	defer span.End()
	span.SetAttributes(
		attribute.Float64("origin.lat", origin.Lat), attribute.Float64("origin.lon", origin.Lon),
		attribute.Float64("destination.lat", destination.Lat), attribute.Float64("destination.lon", destination.Lon),
	)

	cacheKey := fmt.Sprintf("route:%.5f:%.5f:%.5f:%.5f", origin.Lat, origin.Lon, destination.Lat, destination.Lon)
	if r.cache != nil {
		if data, err := r.cache.Get(ctx, cacheKey); err == nil {
			var path []domain.GeoPoint
			if err := json.Unmarshal(data, &path); err == nil && len(path) >= 2 {
				metrics.CacheHits.WithLabelValues("route").Inc()
				return path, nil
			}
		}
		metrics.CacheMisses.WithLabelValues("route").Inc()
	}

	start := time.Now()
	raw, err := r.graph.ShortestPath(ctx, origin, destination)
	metrics.RouteResolveDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("shortest path: %w", ctxErr)
		}
		span.RecordError(err)
		return nil, &domain.RoutingError{Origin: origin, Destination: destination, Err: err}
	}
	if len(raw) < 2 {
		return nil, &domain.RoutingError{
			Origin:      origin,
			Destination: destination,
			Err:         fmt.Errorf("%w: graph returned %d points", domain.ErrNoPath, len(raw)),
		}
	}

	path := geometry.CorrectAntimeridian(raw)

	if r.cache != nil {
		if data, err := json.Marshal(path); err == nil {
			_ = r.cache.Set(ctx, cacheKey, data, r.cacheTTL)
		}
	}

	return path, nil
}
