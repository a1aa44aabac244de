package render

import (
	"context"
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/samirrijal/seacorridor/internal/core/domain"
)

// GeoJSON renders a run as a FeatureCollection using simplestyle properties.
type GeoJSON struct{}

func (GeoJSON) ContentType() string { return "application/geo+json" }

// Render implements ports.RenderSink.
func (GeoJSON) Render(ctx context.Context, result *domain.RunResult, observations []domain.Observation) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, &domain.RenderingError{Format: "geojson", Err: err}
	}
	data, err := FeatureCollection(Scene(result, observations)).MarshalJSON()
	if err != nil {
		return nil, &domain.RenderingError{Format: "geojson", Err: err}
	}
	return data, nil
}

// FeatureCollection converts shapes to GeoJSON features.
func FeatureCollection(shapes []Shape) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, s := range shapes {
		var f *geojson.Feature
		switch {
		case s.Kind == LayerMarker:
			f = geojson.NewFeature(toOrb(s.Points[0]))
			f.Properties["marker-color"] = s.Color.Hex()
			f.Properties["individual_id"] = s.IndividualID
			f.Properties["role"] = string(s.Role)
			f.Properties["popup"] = fmt.Sprintf("/v1/individuals/%d/popup", s.IndividualID)
		case s.Closed():
			f = geojson.NewFeature(orb.Polygon{toRing(s.Points)})
			f.Properties["stroke"] = s.Color.Hex()
			f.Properties["fill"] = s.Color.Hex()
			f.Properties["fill-opacity"] = 0.4
		default:
			f = geojson.NewFeature(toLineString(s.Points))
			f.Properties["stroke"] = s.Color.Hex()
			f.Properties["stroke-width"] = 2
		}
		f.Properties["kind"] = string(s.Kind)
		f.Properties["name"] = s.Name
		f.Properties["group_id"] = s.GroupID
		fc.Append(f)
	}
	return fc
}

func toOrb(p domain.GeoPoint) orb.Point {
	return orb.Point{p.Lon, p.Lat}
}

func toLineString(pts []domain.GeoPoint) orb.LineString {
	ls := make(orb.LineString, len(pts))
	for i, p := range pts {
		ls[i] = toOrb(p)
	}
	return ls
}

func toRing(pts []domain.GeoPoint) orb.Ring {
	return orb.Ring(toLineString(pts))
}
