package ports

import (
	"context"

	"github.com/samirrijal/seacorridor/internal/core/domain"
)

// SeaGraph finds shortest sea paths. Implementations snap both points to
// their nearest graph nodes and return domain.ErrNoPath when the nodes are
// not connected.
type SeaGraph interface {
	ShortestPath(ctx context.Context, origin, destination domain.GeoPoint) ([]domain.GeoPoint, error)
}

// RegionIndex answers point-in-region queries against a dataset loaded once.
type RegionIndex interface {
	Contains(p domain.GeoPoint) bool
}

// RenderSink consumes the output of a run for display.
type RenderSink interface {
	Render(ctx context.Context, result *domain.RunResult, observations []domain.Observation) ([]byte, error)
	ContentType() string
}

// EventPublisher publishes domain events to a message broker.
type EventPublisher interface {
	PublishCorridor(ctx context.Context, runID string, corridor *domain.Corridor) error
	PublishOverlap(ctx context.Context, runID string, overlap *domain.OverlapRegion) error
	PublishRunCompleted(ctx context.Context, summary *domain.RunSummary) error
	PublishBroadcast(ctx context.Context, data []byte) error
}

// EventSubscriber subscribes to domain events from a message broker.
type EventSubscriber interface {
	SubscribeRunRequests(ctx context.Context, handler func(ctx context.Context, req *domain.RunRequest) error) error
	SubscribeRunCompleted(ctx context.Context, handler func(ctx context.Context, summary *domain.RunSummary) error) error
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}
