package geometry

import (
	"sort"

	"github.com/samirrijal/seacorridor/internal/core/domain"
	"github.com/samirrijal/seacorridor/internal/pkg/geospatial"
)

// OverlapPolygon returns the polygon formed by the boundary points of a and b
// that lie within threshold meters (haversine) of a point on the other
// boundary. Each side keeps its boundary order. If both sides run the same way
// (non-negative planar dot product of last-minus-first), side b is appended
// reversed so the ring does not cross itself. Points of b identical to a point
// already taken from a are emitted once. Nil is returned when the result has
// fewer than three vertices.
func OverlapPolygon(a, b []domain.GeoPoint, threshold float64) []domain.GeoPoint {
	if len(a) == 0 || len(b) == 0 || threshold < 0 {
		return nil
	}

	hitA := make(map[int]struct{})
	hitB := make(map[int]struct{})
	for i, p := range a {
		for j, q := range b {
			if geospatial.Distance(p, q) <= threshold {
				hitA[i] = struct{}{}
				hitB[j] = struct{}{}
			}
		}
	}
	if len(hitA) == 0 || len(hitB) == 0 {
		return nil
	}

	sideA := pick(a, hitA)
	sideB := pick(b, hitB)

	if dot(direction(sideA), direction(sideB)) >= 0 {
		for l, r := 0, len(sideB)-1; l < r; l, r = l+1, r-1 {
			sideB[l], sideB[r] = sideB[r], sideB[l]
		}
	}

	seen := make(map[domain.GeoPoint]struct{}, len(sideA))
	poly := make([]domain.GeoPoint, 0, len(sideA)+len(sideB))
	for _, p := range sideA {
		seen[p] = struct{}{}
		poly = append(poly, p)
	}
	for _, q := range sideB {
		if _, dup := seen[q]; dup {
			continue
		}
		poly = append(poly, q)
	}

	if len(poly) <= 2 {
		return nil
	}
	return poly
}

func pick(points []domain.GeoPoint, hits map[int]struct{}) []domain.GeoPoint {
	idx := make([]int, 0, len(hits))
	for i := range hits {
		idx = append(idx, i)
	}
	sort.Ints(idx)
	out := make([]domain.GeoPoint, len(idx))
	for k, i := range idx {
		out[k] = points[i]
	}
	return out
}

func direction(side []domain.GeoPoint) domain.GeoPoint {
	first, last := side[0], side[len(side)-1]
	return domain.GeoPoint{Lat: last.Lat - first.Lat, Lon: last.Lon - first.Lon}
}

func dot(u, v domain.GeoPoint) float64 {
	return u.Lat*v.Lat + u.Lon*v.Lon
}
