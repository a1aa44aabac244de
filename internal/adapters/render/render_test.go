package render

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samirrijal/seacorridor/internal/core/domain"
	"github.com/samirrijal/seacorridor/internal/core/geometry"
)

func fixture() (*domain.RunResult, []domain.Observation) {
	route := func(id string, group int64, lat float64) domain.Route {
		return domain.Route{
			ID:          id,
			GroupID:     group,
			Points:      []domain.GeoPoint{{Lat: lat, Lon: 0}, {Lat: lat, Lon: 10}},
			Origin:      domain.Circle{Center: domain.GeoPoint{Lat: lat, Lon: 0}, RadiusMeters: 1000},
			Destination: domain.Circle{Center: domain.GeoPoint{Lat: lat, Lon: 10}, RadiusMeters: 2000},
		}
	}
	corridor := func(id string, group int64, lat float64) domain.Corridor {
		return domain.Corridor{
			RouteID:      id,
			GroupID:      group,
			RadiusMeters: 2000,
			Boundary: []domain.GeoPoint{
				{Lat: lat + 0.1, Lon: 0}, {Lat: lat + 0.1, Lon: 10},
				{Lat: lat - 0.1, Lon: 10}, {Lat: lat - 0.1, Lon: 0},
			},
		}
	}
	result := &domain.RunResult{
		ID:        "run-1",
		WidthKm:   50,
		Routes:    []domain.Route{route("r2", 2, 5), route("r1", 1, 0)},
		Corridors: []domain.Corridor{corridor("r2", 2, 5), corridor("r1", 1, 0)},
		Overlaps: []domain.OverlapRegion{
			{GroupA: 1, GroupB: 2, Polygon: []domain.GeoPoint{{Lat: 0, Lon: 0}, {Lat: 0, Lon: 1}, {Lat: 1, Lon: 1}}},
			{GroupA: 1, GroupB: 2, Polygon: []domain.GeoPoint{{Lat: 0, Lon: 0}, {Lat: 0, Lon: 1}}},
		},
	}
	obs := []domain.Observation{
		{IndividualID: 10, GroupID: 1, Role: domain.RoleStart, Location: domain.GeoPoint{Lat: 0, Lon: 0}},
		{IndividualID: 10, GroupID: 1, Role: domain.RoleFinish, Location: domain.GeoPoint{Lat: 0, Lon: 10}},
	}
	return result, obs
}

func TestMarkerColor(t *testing.T) {
	assert.Equal(t, "#0000ff", MarkerColor(domain.RoleStart).Hex())
	assert.Equal(t, "#800080", MarkerColor(domain.RoleFinish).Hex())
	assert.Equal(t, "#ff0000", MarkerColor("other").Hex())
	assert.Equal(t, Palette[0], GroupColor(len(Palette)))
}

func TestScene(t *testing.T) {
	result, obs := fixture()
	shapes := Scene(result, obs)
	require.Len(t, shapes, 11)

	counts := make(map[LayerKind]int)
	for _, s := range shapes {
		counts[s.Kind]++
		if s.Closed() {
			assert.Equal(t, s.Points[0], s.Points[len(s.Points)-1], s.Name)
		}
	}
	assert.Equal(t, map[LayerKind]int{
		LayerMarker: 2, LayerRoute: 2, LayerCorridor: 2, LayerCircle: 4, LayerOverlap: 1,
	}, counts)

	// groups are colored in id order
	assert.Equal(t, int64(1), shapes[2].GroupID)
	assert.Equal(t, "darkred", shapes[2].Color.Name)
	assert.Equal(t, "darkblue", shapes[6].Color.Name)
	assert.Equal(t, "yellow", shapes[10].Color.Name)
}

func TestScene_NilResult(t *testing.T) {
	_, obs := fixture()
	assert.Len(t, Scene(nil, obs), 2)
}

func TestCirclePolygon(t *testing.T) {
	center := domain.GeoPoint{Lat: 10, Lon: 20}
	ring := CirclePolygon(center, 5000)
	require.Len(t, ring, circleSegments+1)
	assert.Equal(t, ring[0], ring[len(ring)-1])
	for _, p := range ring {
		assert.InDelta(t, 5000, geometry.GeodesicDistance(center, p), 1)
	}
}

func TestGeoJSON_Render(t *testing.T) {
	result, obs := fixture()
	data, err := GeoJSON{}.Render(context.Background(), result, obs)
	require.NoError(t, err)

	fc, err := geojson.UnmarshalFeatureCollection(data)
	require.NoError(t, err)
	require.Len(t, fc.Features, 11)

	marker := fc.Features[0]
	assert.Equal(t, "Point", marker.Geometry.GeoJSONType())
	assert.Equal(t, "#0000ff", marker.Properties.MustString("marker-color"))
	assert.Equal(t, "/v1/individuals/10/popup", marker.Properties.MustString("popup"))
	assert.Equal(t, "Polygon", fc.Features[3].Geometry.GeoJSONType())
	assert.Equal(t, "application/geo+json", GeoJSON{}.ContentType())
}

func TestKML_Render(t *testing.T) {
	result, obs := fixture()
	data, err := KML{}.Render(context.Background(), result, obs)
	require.NoError(t, err)

	out := string(data)
	assert.Contains(t, out, "<kml")
	assert.Contains(t, out, "Migration corridors run-1")
	assert.Equal(t, 11, strings.Count(out, "<Placemark>"))
	assert.Contains(t, out, "<styleUrl>#overlap-yellow</styleUrl>")
	assert.Contains(t, out, "<styleUrl>#marker-blue</styleUrl>")
}

func TestRender_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, sink := range []interface {
		Render(context.Context, *domain.RunResult, []domain.Observation) ([]byte, error)
	}{GeoJSON{}, KML{}} {
		_, err := sink.Render(ctx, nil, nil)
		var renderErr *domain.RenderingError
		assert.True(t, errors.As(err, &renderErr))
		assert.Equal(t, domain.KindRendering, domain.KindOf(err))
	}
}

func TestPolyline(t *testing.T) {
	points := []domain.GeoPoint{{Lat: 38.5, Lon: -120.2}, {Lat: 40.7, Lon: -120.95}, {Lat: 43.252, Lon: -126.453}}
	encoded := EncodePolyline(points)
	assert.Equal(t, "_p~iF~ps|U_ulLnnqC_mqNvxq`@", encoded)

	decoded, err := DecodePolyline(encoded)
	require.NoError(t, err)
	require.Len(t, decoded, 3)
	for i := range points {
		assert.InDelta(t, points[i].Lat, decoded[i].Lat, 1e-5)
		assert.InDelta(t, points[i].Lon, decoded[i].Lon, 1e-5)
	}
}

func TestPopupCache(t *testing.T) {
	dir := t.TempDir()
	photo := filepath.Join(dir, "whale.png")
	require.NoError(t, os.WriteFile(photo, []byte("\x89PNG\r\n\x1a\nrest"), 0o644))

	cache, err := NewPopupCache(dir, 2)
	require.NoError(t, err)

	ind := &domain.Individual{ID: 1, GroupID: 7, Species: "Blue <whale>", Photo: "whale.png"}
	html := cache.Popup(ind)
	assert.Contains(t, html, "data:image/png;base64,")
	assert.Contains(t, html, "Blue &lt;whale&gt;")

	require.NoError(t, os.Remove(photo))
	assert.Equal(t, html, cache.Popup(ind), "served from cache")

	cache.Invalidate(1)
	assert.Contains(t, cache.Popup(ind), "No photo available")

	cache.Popup(&domain.Individual{ID: 2})
	cache.Popup(&domain.Individual{ID: 3})
	assert.Equal(t, 2, cache.Len())
}

func TestPopupCache_PathTraversal(t *testing.T) {
	cache, err := NewPopupCache(t.TempDir(), 0)
	require.NoError(t, err)
	html := cache.Popup(&domain.Individual{ID: 1, Photo: "../../etc/passwd"})
	assert.Contains(t, html, "No photo available")
}
