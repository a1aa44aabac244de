// Package render turns run results into map documents (GeoJSON and KML) and
// serves the per-individual popups shown on observation markers.
package render

import (
	"fmt"
	"image/color"
	"sort"

	"github.com/samirrijal/seacorridor/internal/core/domain"
	"github.com/samirrijal/seacorridor/internal/core/geometry"
)

// circleSegments is the number of vertices used to draw endpoint circles.
const circleSegments = 64

// Palette cycles across groups for route, corridor and circle layers.
var Palette = []Color{
	{"darkred", color.RGBA{0x8b, 0x00, 0x00, 0xff}},
	{"darkblue", color.RGBA{0x00, 0x00, 0x8b, 0xff}},
	{"purple", color.RGBA{0x80, 0x00, 0x80, 0xff}},
	{"maroon", color.RGBA{0x80, 0x00, 0x00, 0xff}},
	{"navy", color.RGBA{0x00, 0x00, 0x80, 0xff}},
	{"teal", color.RGBA{0x00, 0x80, 0x80, 0xff}},
	{"indigo", color.RGBA{0x4b, 0x00, 0x82, 0xff}},
	{"chocolate", color.RGBA{0xd2, 0x69, 0x1e, 0xff}},
	{"crimson", color.RGBA{0xdc, 0x14, 0x3c, 0xff}},
}

var (
	markerStart  = Color{"blue", color.RGBA{0x00, 0x00, 0xff, 0xff}}
	markerFinish = Color{"purple", color.RGBA{0x80, 0x00, 0x80, 0xff}}
	markerOther  = Color{"red", color.RGBA{0xff, 0x00, 0x00, 0xff}}
	overlapColor = Color{"yellow", color.RGBA{0xff, 0xff, 0x00, 0xff}}
)

// Color is a named display color.
type Color struct {
	Name string
	RGBA color.RGBA
}

// Hex returns the color as #rrggbb.
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.RGBA.R, c.RGBA.G, c.RGBA.B)
}

// MarkerColor picks the marker color for an observation role.
func MarkerColor(role domain.Role) Color {
	switch role {
	case domain.RoleStart:
		return markerStart
	case domain.RoleFinish:
		return markerFinish
	default:
		return markerOther
	}
}

// GroupColor returns the palette entry for the i-th rendered group.
func GroupColor(i int) Color {
	return Palette[i%len(Palette)]
}

// LayerKind names the kind of a rendered shape.
type LayerKind string

const (
	LayerMarker   LayerKind = "marker"
	LayerRoute    LayerKind = "route"
	LayerCorridor LayerKind = "corridor"
	LayerCircle   LayerKind = "circle"
	LayerOverlap  LayerKind = "overlap"
)

// Shape is one drawable element. Polygons are closed rings.
type Shape struct {
	Kind         LayerKind
	Name         string
	Color        Color
	GroupID      int64
	IndividualID int64
	Role         domain.Role
	Points       []domain.GeoPoint
}

// Closed reports whether the shape is drawn as a polygon.
func (s Shape) Closed() bool {
	return s.Kind == LayerCorridor || s.Kind == LayerCircle || s.Kind == LayerOverlap
}

// Scene lays out every shape of a run: markers first, then one color per
// group for its route, corridor and both endpoint circles, then overlaps.
func Scene(result *domain.RunResult, observations []domain.Observation) []Shape {
	var shapes []Shape

	for _, o := range observations {
		shapes = append(shapes, Shape{
			Kind:         LayerMarker,
			Name:         fmt.Sprintf("individual %d", o.IndividualID),
			Color:        MarkerColor(o.Role),
			GroupID:      o.GroupID,
			IndividualID: o.IndividualID,
			Role:         o.Role,
			Points:       []domain.GeoPoint{o.Location},
		})
	}
	if result == nil {
		return shapes
	}

	radius := make(map[string]float64, len(result.Corridors))
	for _, c := range result.Corridors {
		radius[c.RouteID] = c.RadiusMeters
	}

	routes := make([]domain.Route, len(result.Routes))
	copy(routes, result.Routes)
	sort.SliceStable(routes, func(i, j int) bool { return routes[i].GroupID < routes[j].GroupID })

	for i, r := range routes {
		col := GroupColor(i)
		shapes = append(shapes, Shape{
			Kind:    LayerRoute,
			Name:    fmt.Sprintf("group %d route", r.GroupID),
			Color:   col,
			GroupID: r.GroupID,
			Points:  r.Points,
		})
		for _, c := range result.Corridors {
			if c.RouteID != r.ID {
				continue
			}
			shapes = append(shapes, Shape{
				Kind:    LayerCorridor,
				Name:    fmt.Sprintf("group %d corridor", r.GroupID),
				Color:   col,
				GroupID: r.GroupID,
				Points:  closeRing(c.Boundary),
			})
		}
		rad, ok := radius[r.ID]
		for _, circle := range []domain.Circle{r.Origin, r.Destination} {
			if !ok {
				rad = circle.RadiusMeters
			}
			shapes = append(shapes, Shape{
				Kind:    LayerCircle,
				Name:    fmt.Sprintf("group %d area", r.GroupID),
				Color:   col,
				GroupID: r.GroupID,
				Points:  CirclePolygon(circle.Center, rad),
			})
		}
	}

	for _, o := range result.Overlaps {
		if len(o.Polygon) < 3 {
			continue
		}
		shapes = append(shapes, Shape{
			Kind:    LayerOverlap,
			Name:    fmt.Sprintf("overlap %d/%d", o.GroupA, o.GroupB),
			Color:   overlapColor,
			GroupID: o.GroupA,
			Points:  closeRing(o.Polygon),
		})
	}
	return shapes
}

// CirclePolygon approximates a geodesic circle as a closed ring.
func CirclePolygon(center domain.GeoPoint, radius float64) []domain.GeoPoint {
	ring := make([]domain.GeoPoint, 0, circleSegments+1)
	for i := 0; i < circleSegments; i++ {
		ring = append(ring, geometry.Destination(center, 360*float64(i)/circleSegments, radius))
	}
	ring = geometry.CorrectAntimeridian(ring)
	return append(ring, ring[0])
}

func closeRing(pts []domain.GeoPoint) []domain.GeoPoint {
	out := make([]domain.GeoPoint, len(pts), len(pts)+1)
	copy(out, pts)
	if len(out) > 0 && out[0] != out[len(out)-1] {
		out = append(out, out[0])
	}
	return out
}
