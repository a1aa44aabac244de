package usecases

import (
	"math"

	"github.com/google/uuid"

	"github.com/samirrijal/seacorridor/internal/core/domain"
	"github.com/samirrijal/seacorridor/internal/core/geometry"
)

// CorridorBuilder smooths a resolved sea path and closes a corridor around it.
type CorridorBuilder struct {
	sampleCount int
	smoothing   float64
}

// NewCorridorBuilder creates a new CorridorBuilder. Non-positive arguments
// fall back to the geometry defaults.
func NewCorridorBuilder(sampleCount int, smoothing float64) *CorridorBuilder {
	if sampleCount < 2 {
		sampleCount = geometry.DefaultSampleCount
	}
	if smoothing <= 0 {
		smoothing = geometry.DefaultSmoothing
	}
	return &CorridorBuilder{sampleCount: sampleCount, smoothing: smoothing}
}

// SampleCount returns the number of points a smoothed route has.
func (b *CorridorBuilder) SampleCount() int {
	return b.sampleCount
}

// Build turns a sea path between two cluster circles into a route and its
// corridor. The corridor is offset on each side by the larger radius.
// sampleCount overrides the builder default when positive.
func (b *CorridorBuilder) Build(groupID int64, path []domain.GeoPoint, origin, destination domain.Circle, sampleCount int) (*domain.Route, *domain.Corridor, error) {
	if sampleCount < 2 {
		sampleCount = b.sampleCount
	}

	route := &domain.Route{
		ID:          uuid.NewString(),
		GroupID:     groupID,
		Points:      geometry.SmoothWith(path, sampleCount, b.smoothing),
		Origin:      origin,
		Destination: destination,
	}

	radius := math.Max(origin.RadiusMeters, destination.RadiusMeters)
	boundary, err := geometry.CorridorBoundary(route.Points, radius)
	if err != nil {
		return nil, nil, err
	}

	return route, &domain.Corridor{
		RouteID:      route.ID,
		GroupID:      groupID,
		RadiusMeters: radius,
		Boundary:     boundary,
	}, nil
}
