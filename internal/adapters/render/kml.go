package render

import (
	"bytes"
	"context"
	"fmt"

	"github.com/twpayne/go-kml"

	"github.com/samirrijal/seacorridor/internal/core/domain"
)

// KML renders a run as a KML document with one shared style per color.
type KML struct {
	Name string
}

func (KML) ContentType() string { return "application/vnd.google-earth.kml+xml" }

// Render implements ports.RenderSink.
func (k KML) Render(ctx context.Context, result *domain.RunResult, observations []domain.Observation) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, &domain.RenderingError{Format: "kml", Err: err}
	}

	name := k.Name
	if name == "" {
		name = "Migration corridors"
		if result != nil {
			name = fmt.Sprintf("Migration corridors %s", result.ID)
		}
	}

	shapes := Scene(result, observations)
	children := []kml.Element{kml.Name(name)}
	seen := make(map[string]bool)
	for _, s := range shapes {
		id := styleID(s)
		if seen[id] {
			continue
		}
		seen[id] = true
		children = append(children, style(id, s))
	}
	for _, s := range shapes {
		children = append(children, placemark(s))
	}

	var buf bytes.Buffer
	if err := kml.KML(kml.Document(children...)).WriteIndent(&buf, "", "  "); err != nil {
		return nil, &domain.RenderingError{Format: "kml", Err: err}
	}
	return buf.Bytes(), nil
}

func styleID(s Shape) string {
	return fmt.Sprintf("%s-%s", s.Kind, s.Color.Name)
}

func style(id string, s Shape) kml.Element {
	switch {
	case s.Kind == LayerMarker:
		return kml.SharedStyle(id, kml.IconStyle(kml.Color(s.Color.RGBA)))
	case s.Closed():
		fill := s.Color.RGBA
		fill.A = 0x66
		return kml.SharedStyle(id,
			kml.LineStyle(kml.Color(s.Color.RGBA), kml.Width(2)),
			kml.PolyStyle(kml.Color(fill)),
		)
	default:
		return kml.SharedStyle(id, kml.LineStyle(kml.Color(s.Color.RGBA), kml.Width(3)))
	}
}

func placemark(s Shape) kml.Element {
	coords := make([]kml.Coordinate, len(s.Points))
	for i, p := range s.Points {
		coords[i] = kml.Coordinate{Lon: p.Lon, Lat: p.Lat}
	}

	var geom kml.Element
	switch {
	case s.Kind == LayerMarker:
		geom = kml.Point(kml.Coordinates(coords...))
	case s.Closed():
		geom = kml.Polygon(kml.OuterBoundaryIs(kml.LinearRing(kml.Coordinates(coords...))))
	default:
		geom = kml.LineString(kml.Tessellate(true), kml.Coordinates(coords...))
	}
	return kml.Placemark(
		kml.Name(s.Name),
		kml.StyleURL("#"+styleID(s)),
		geom,
	)
}
