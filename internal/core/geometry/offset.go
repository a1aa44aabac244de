package geometry

import (
	"fmt"

	"github.com/samirrijal/seacorridor/internal/core/domain"
)

// Side selects the direction of a perpendicular offset relative to travel.
type Side int

const (
	Left Side = iota
	Right
)

func (s Side) String() string {
	if s == Right {
		return "right"
	}
	return "left"
}

func (s Side) turn() float64 {
	if s == Right {
		return 90
	}
	return -90
}

// OffsetPolyline displaces path sideways by distance meters. Each segment is
// shifted along its initial bearing turned by 90 degrees; adjacent segments
// share the shifted interior vertex, so N points in give N points out.
func OffsetPolyline(path []domain.GeoPoint, distance float64, side Side) []domain.GeoPoint {
	switch len(path) {
	case 0:
		return nil
	case 1:
		return []domain.GeoPoint{path[0]}
	}

	out := make([]domain.GeoPoint, 0, len(path))
	for i := 0; i+1 < len(path); i++ {
		a, b := path[i], path[i+1]
		heading := normalizeBearing(Bearing(a, b) + side.turn())
		if i == 0 {
			out = append(out, Destination(a, heading, distance))
		}
		out = append(out, Destination(b, heading, distance))
	}
	return out
}

// CorridorBoundary closes a ring around path: the left offset followed by the
// reversed right offset, each corrected for the antimeridian on its own.
func CorridorBoundary(path []domain.GeoPoint, radius float64) ([]domain.GeoPoint, error) {
	if len(path) < 2 {
		return nil, &domain.GeometryError{
			Op:  "corridor boundary",
			Err: fmt.Errorf("path has %d points, need at least 2", len(path)),
		}
	}
	left := CorrectAntimeridian(OffsetPolyline(path, radius, Left))
	right := CorrectAntimeridian(OffsetPolyline(path, radius, Right))

	ring := make([]domain.GeoPoint, 0, len(left)+len(right))
	ring = append(ring, left...)
	for i := len(right) - 1; i >= 0; i-- {
		ring = append(ring, right[i])
	}
	return ring, nil
}
