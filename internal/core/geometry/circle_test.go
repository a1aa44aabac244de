package geometry

import (
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samirrijal/seacorridor/internal/core/domain"
)

func TestFitCircle_Square(t *testing.T) {
	pts := []domain.GeoPoint{{Lat: 0, Lon: 0}, {Lat: 0, Lon: 2}, {Lat: 2, Lon: 0}, {Lat: 2, Lon: 2}}

	c, err := FitCircle(pts)
	require.NoError(t, err)

	assert.InDelta(t, 1.0, c.Center.Lat, 1e-12)
	assert.InDelta(t, 1.0, c.Center.Lon, 1e-12)
	// corners on the equator sit slightly farther from (1,1) than the northern ones
	assert.InDelta(t, GeodesicDistance(domain.GeoPoint{Lat: 1, Lon: 1}, pts[0]), c.RadiusMeters, 1e-6)
	assert.InDelta(t, 157400, c.RadiusMeters, 100)
}

func TestFitCircle_Empty(t *testing.T) {
	_, err := FitCircle(nil)
	require.Error(t, err)

	var geomErr *domain.GeometryError
	assert.True(t, errors.As(err, &geomErr))
	assert.True(t, errors.Is(err, domain.ErrEmptyPointSet))
}

func TestFitCircle_SinglePoint(t *testing.T) {
	c, err := FitCircle([]domain.GeoPoint{{Lat: 43.3, Lon: -2.9}})
	require.NoError(t, err)
	assert.Equal(t, domain.GeoPoint{Lat: 43.3, Lon: -2.9}, c.Center)
	assert.Equal(t, 0.0, c.RadiusMeters)
}

func TestFitCircle_EnclosesAllPoints(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	for trial := 0; trial < 50; trial++ {
		n := 1 + rng.IntN(12)
		pts := make([]domain.GeoPoint, n)
		for i := range pts {
			pts[i] = domain.GeoPoint{Lat: rng.Float64()*160 - 80, Lon: rng.Float64()*340 - 170}
		}

		c, err := FitCircle(pts)
		require.NoError(t, err)

		var hit bool
		for _, p := range pts {
			d := GeodesicDistance(c.Center, p)
			assert.LessOrEqual(t, d, c.RadiusMeters)
			if d == c.RadiusMeters {
				hit = true
			}
		}
		assert.True(t, hit, "radius should equal the distance to at least one point")
	}
}

func TestFitCircle_OrderIndependent(t *testing.T) {
	pts := []domain.GeoPoint{{Lat: 10, Lon: 20}, {Lat: 12, Lon: 21}, {Lat: 11, Lon: 25}, {Lat: 9, Lon: 19}}
	rev := []domain.GeoPoint{pts[3], pts[2], pts[1], pts[0]}

	a, err := FitCircle(pts)
	require.NoError(t, err)
	b, err := FitCircle(rev)
	require.NoError(t, err)

	assert.InDelta(t, a.Center.Lat, b.Center.Lat, 1e-12)
	assert.InDelta(t, a.Center.Lon, b.Center.Lon, 1e-12)
	assert.InDelta(t, a.RadiusMeters, b.RadiusMeters, 1e-6)
}
