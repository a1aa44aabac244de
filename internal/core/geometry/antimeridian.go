package geometry

import (
	"math"

	"github.com/samirrijal/seacorridor/internal/core/domain"
)

// CorrectAntimeridian shifts longitudes by multiples of 360 so that every
// consecutive delta falls in (-180, 180]. Each point depends only on the
// corrected value of its predecessor, so the result is stable under repeated
// application. The input is not modified.
func CorrectAntimeridian(path []domain.GeoPoint) []domain.GeoPoint {
	out := make([]domain.GeoPoint, len(path))
	copy(out, path)
	for i := 1; i < len(out); i++ {
		d := out[i].Lon - out[i-1].Lon
		if math.IsNaN(d) || math.IsInf(d, 0) {
			continue
		}
		if d > 180 || d <= -180 {
			out[i].Lon -= 360 * math.Ceil((d-180)/360)
		}
	}
	return out
}
