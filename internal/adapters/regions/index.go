// Package regions answers point-in-region queries, typically "is this point
// at sea", against polygon datasets loaded once at startup.
package regions

import (
	"fmt"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"

	"github.com/samirrijal/seacorridor/internal/core/domain"
	"github.com/samirrijal/seacorridor/internal/pkg/geospatial"
)

type region struct {
	bound orb.Bound
	geom  orb.Geometry
}

// Index holds polygons with precomputed bounds. It is safe for concurrent
// reads.
type Index struct {
	regions []region
}

// Load reads a GeoJSON FeatureCollection of Polygon/MultiPolygon features.
func Load(file string) (*Index, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("read regions: %w", err)
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("parse regions: %w", err)
	}
	idx := FromFeatures(fc)
	if idx.Len() == 0 {
		return nil, fmt.Errorf("regions %s: no polygon features", file)
	}
	return idx, nil
}

// FromFeatures indexes the polygonal features of fc and ignores the rest.
func FromFeatures(fc *geojson.FeatureCollection) *Index {
	idx := &Index{}
	for _, f := range fc.Features {
		switch g := f.Geometry.(type) {
		case orb.Polygon, orb.MultiPolygon:
			idx.regions = append(idx.regions, region{bound: g.Bound(), geom: g})
		}
	}
	return idx
}

// FromBounds builds an index of axis-aligned boxes.
func FromBounds(boxes ...domain.Bounds) *Index {
	idx := &Index{}
	for _, b := range boxes {
		ring := orb.Ring{
			{b.MinLon, b.MinLat}, {b.MaxLon, b.MinLat}, {b.MaxLon, b.MaxLat},
			{b.MinLon, b.MaxLat}, {b.MinLon, b.MinLat},
		}
		poly := orb.Polygon{ring}
		idx.regions = append(idx.regions, region{bound: poly.Bound(), geom: poly})
	}
	return idx
}

// Len returns the number of indexed regions.
func (idx *Index) Len() int {
	return len(idx.regions)
}

// Contains reports whether p falls inside any region. Longitudes are folded
// into [-180, 180) first.
func (idx *Index) Contains(p domain.GeoPoint) bool {
	if !p.IsFinite() {
		return false
	}
	pt := orb.Point{geospatial.NormalizeLon(p.Lon), p.Lat}
	for _, r := range idx.regions {
		if !r.bound.Contains(pt) {
			continue
		}
		switch g := r.geom.(type) {
		case orb.Polygon:
			if planar.PolygonContains(g, pt) {
				return true
			}
		case orb.MultiPolygon:
			if planar.MultiPolygonContains(g, pt) {
				return true
			}
		}
	}
	return false
}
