package geometry

import (
	"github.com/samirrijal/seacorridor/internal/core/domain"
)

// FitCircle returns an enclosing circle for points. The center is the plain
// arithmetic mean of latitudes and longitudes; the radius is the largest
// great-circle distance from that center to any point.
func FitCircle(points []domain.GeoPoint) (domain.Circle, error) {
	if len(points) == 0 {
		return domain.Circle{}, &domain.GeometryError{Op: "fit circle", Err: domain.ErrEmptyPointSet}
	}

	var sumLat, sumLon float64
	for _, p := range points {
		sumLat += p.Lat
		sumLon += p.Lon
	}
	n := float64(len(points))
	center := domain.GeoPoint{Lat: sumLat / n, Lon: sumLon / n}

	var radius float64
	for _, p := range points {
		if d := GeodesicDistance(center, p); d > radius {
			radius = d
		}
	}
	return domain.Circle{Center: center, RadiusMeters: radius}, nil
}
