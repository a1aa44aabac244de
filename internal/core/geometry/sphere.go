package geometry

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"

	"github.com/samirrijal/seacorridor/internal/core/domain"
)

func toOrb(p domain.GeoPoint) orb.Point {
	return orb.Point{p.Lon, p.Lat}
}

func fromOrb(p orb.Point) domain.GeoPoint {
	return domain.GeoPoint{Lat: p.Lat(), Lon: p.Lon()}
}

// GeodesicDistance returns the great-circle distance in meters.
func GeodesicDistance(a, b domain.GeoPoint) float64 {
	return geo.DistanceHaversine(toOrb(a), toOrb(b))
}

// Bearing returns the initial azimuth from a to b in degrees, in [0, 360).
func Bearing(a, b domain.GeoPoint) float64 {
	return normalizeBearing(geo.Bearing(toOrb(a), toOrb(b)))
}

// Destination projects p by distance meters along bearing degrees.
func Destination(p domain.GeoPoint, bearing, distance float64) domain.GeoPoint {
	return fromOrb(geo.PointAtBearingAndDistance(toOrb(p), bearing, distance))
}

func normalizeBearing(b float64) float64 {
	for b < 0 {
		b += 360
	}
	for b >= 360 {
		b -= 360
	}
	return b
}
