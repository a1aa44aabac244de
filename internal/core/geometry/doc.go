// Package geometry holds the pure spherical geometry used to turn observation
// clusters into corridors: enclosing circles, antimeridian correction,
// spline smoothing, perpendicular offsets and boundary overlap.
//
// Points are domain.GeoPoint (lat, lon); orb points are (lon, lat) and are
// converted at the edges of this package only.
package geometry
