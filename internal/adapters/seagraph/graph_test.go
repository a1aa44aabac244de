package seagraph

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samirrijal/seacorridor/internal/core/domain"
	"github.com/samirrijal/seacorridor/internal/pkg/geospatial"
)

// two routes from (0,0) to (0,10): a direct northern arc and a long southern detour
func testLines() []orb.LineString {
	return []orb.LineString{
		{{0, 0}, {5, 1}, {10, 0}},
		{{0, 0}, {2, -20}, {8, -20}, {10, 0}},
		{{50, 50}, {51, 51}},
	}
}

func TestGraph_ShortestPath(t *testing.T) {
	g, err := FromLines(testLines())
	require.NoError(t, err)
	assert.Equal(t, 7, g.Nodes())

	origin := domain.GeoPoint{Lat: 0.1, Lon: -0.1}
	dest := domain.GeoPoint{Lat: -0.1, Lon: 10.1}
	p, err := g.ShortestPath(context.Background(), origin, dest)
	require.NoError(t, err)

	assert.Equal(t, []domain.GeoPoint{
		origin,
		{Lat: 0, Lon: 0},
		{Lat: 1, Lon: 5},
		{Lat: 0, Lon: 10},
		dest,
	}, p)
}

func TestGraph_NoPath(t *testing.T) {
	g, err := FromLines(testLines())
	require.NoError(t, err)

	_, err = g.ShortestPath(context.Background(), domain.GeoPoint{Lat: 0, Lon: 0}, domain.GeoPoint{Lat: 51, Lon: 51})
	assert.True(t, errors.Is(err, domain.ErrNoPath))
}

func TestGraph_SameNode(t *testing.T) {
	g, err := FromLines(testLines())
	require.NoError(t, err)

	p, err := g.ShortestPath(context.Background(), domain.GeoPoint{Lat: 0.01, Lon: 0}, domain.GeoPoint{Lat: -0.01, Lon: 0})
	require.NoError(t, err)
	assert.Len(t, p, 3)
}

func TestGraph_Densify(t *testing.T) {
	g, err := FromLines(testLines(), WithDensify(1))
	require.NoError(t, err)

	p, err := g.ShortestPath(context.Background(), domain.GeoPoint{Lat: 0, Lon: 0}, domain.GeoPoint{Lat: 0, Lon: 10})
	require.NoError(t, err)
	for i := 1; i < len(p); i++ {
		assert.LessOrEqual(t, p[i].Lon-p[i-1].Lon, 1.0+1e-9)
	}
	assert.Equal(t, 11, len(p))
}

func TestGraph_Cancelled(t *testing.T) {
	g, err := FromLines(testLines())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = g.ShortestPath(ctx, domain.GeoPoint{}, domain.GeoPoint{Lat: 0, Lon: 10})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoad_GeoJSON(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "net.geojson")
	require.NoError(t, os.WriteFile(file, []byte(`{
		"type": "FeatureCollection",
		"features": [
			{"type": "Feature", "properties": {}, "geometry": {"type": "LineString", "coordinates": [[0,0],[1,1]]}},
			{"type": "Feature", "properties": {}, "geometry": {"type": "MultiLineString", "coordinates": [[[1,1],[2,2]],[[2,2],[3,3]]]}},
			{"type": "Feature", "properties": {}, "geometry": {"type": "Point", "coordinates": [9,9]}}
		]
	}`), 0o644))

	g, err := Load(file)
	require.NoError(t, err)
	assert.Equal(t, 4, g.Nodes())

	_, err = Load(filepath.Join(dir, "missing.geojson"))
	assert.Error(t, err)
}

func TestFromLines_Empty(t *testing.T) {
	_, err := FromLines(nil)
	assert.Error(t, err)
}

func nodeAt(t *testing.T, g *Graph, p domain.GeoPoint) int64 {
	t.Helper()
	for id, c := range g.coords {
		if c == p {
			return id
		}
	}
	t.Fatalf("no node at %v", p)
	return -1
}

func TestGraph_NearestUsesGreatCircle(t *testing.T) {
	// at 80N three degrees of longitude are shorter than one of latitude
	g, err := FromLines([]orb.LineString{
		{{0, 81}, {0, 82}},
		{{3, 80}, {3, 79}},
	})
	require.NoError(t, err)

	got := g.Nearest(domain.GeoPoint{Lat: 80, Lon: 0})
	assert.Equal(t, nodeAt(t, g, domain.GeoPoint{Lat: 80, Lon: 3}), got)
}

func TestGraph_NearestAcrossAntimeridian(t *testing.T) {
	eastward := make(orb.LineString, 20)
	for i := range eastward {
		eastward[i] = orb.Point{-170 + float64(i), 0}
	}
	g, err := FromLines([]orb.LineString{eastward, {{179.5, 0}, {179, 0}}})
	require.NoError(t, err)

	got := g.Nearest(domain.GeoPoint{Lat: 0, Lon: -179.8})
	assert.Equal(t, nodeAt(t, g, domain.GeoPoint{Lat: 0, Lon: 179.5}), got)
}

func TestGraph_NearestTieBreak(t *testing.T) {
	g, err := FromLines([]orb.LineString{{{1, 0}, {-1, 0}}})
	require.NoError(t, err)

	west := nodeAt(t, g, domain.GeoPoint{Lat: 0, Lon: -1})
	east := nodeAt(t, g, domain.GeoPoint{Lat: 0, Lon: 1})
	assert.Equal(t, min(west, east), g.Nearest(domain.GeoPoint{Lat: 0, Lon: 0}))
}

func TestGraph_NearestMatchesScan(t *testing.T) {
	g, err := FromLines(testLines())
	require.NoError(t, err)

	for _, q := range []domain.GeoPoint{{Lat: 0.2, Lon: 0.1}, {Lat: -19, Lon: 3}, {Lat: 49, Lon: 52}, {Lat: 2, Lon: 9}} {
		want, wantDist := int64(-1), math.Inf(1)
		for id, c := range g.coords {
			if d := geospatial.Distance(q, c); d < wantDist || (d == wantDist && id < want) {
				want, wantDist = id, d
			}
		}
		assert.Equal(t, want, g.Nearest(q), "query %v", q)
	}
}
