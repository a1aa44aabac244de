package geometry

import (
	"math"

	"github.com/samirrijal/seacorridor/internal/core/domain"
)

// Densify inserts linearly interpolated points so that no segment spans more
// than step degrees on either axis. A non-positive step returns a copy.
func Densify(path []domain.GeoPoint, step float64) []domain.GeoPoint {
	if step <= 0 || len(path) < 2 {
		out := make([]domain.GeoPoint, len(path))
		copy(out, path)
		return out
	}

	out := make([]domain.GeoPoint, 0, len(path))
	out = append(out, path[0])
	for i := 1; i < len(path); i++ {
		a, b := path[i-1], path[i]
		span := math.Max(math.Abs(b.Lat-a.Lat), math.Abs(b.Lon-a.Lon))
		n := int(math.Ceil(span / step))
		for k := 1; k < n; k++ {
			f := float64(k) / float64(n)
			out = append(out, domain.GeoPoint{
				Lat: a.Lat + f*(b.Lat-a.Lat),
				Lon: a.Lon + f*(b.Lon-a.Lon),
			})
		}
		out = append(out, b)
	}
	return out
}
