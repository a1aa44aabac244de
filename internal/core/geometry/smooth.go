package geometry

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/interp"
	"gonum.org/v1/gonum/mat"

	"github.com/samirrijal/seacorridor/internal/core/domain"
)

const (
	// DefaultSampleCount is the number of points a smoothed path is resampled to.
	DefaultSampleCount = 100
	// DefaultSmoothing is the roughness penalty weight of the spline fit.
	DefaultSmoothing = 0.1

	minSplinePoints = 4
)

var errNotPositiveDefinite = errors.New("penalty matrix is not positive definite")

// Smooth fits a smoothing spline through path and resamples it to
// outputCount points using DefaultSmoothing.
func Smooth(path []domain.GeoPoint, outputCount int) []domain.GeoPoint {
	return SmoothWith(path, outputCount, DefaultSmoothing)
}

// SmoothWith fits a parametric smoothing spline through path and resamples it
// at outputCount evenly spaced parameter values. Latitude and longitude are
// smoothed as two curves over the shared chord-length parameter: a penalized
// least-squares pass pulls each curve toward low curvature, then a natural
// cubic spline interpolates the smoothed values.
//
// Paths shorter than four points are returned unchanged. An outputCount of
// zero or less selects DefaultSampleCount; an outputCount of one yields the
// start of the fitted curve.
func SmoothWith(path []domain.GeoPoint, outputCount int, smoothing float64) []domain.GeoPoint {
	if len(path) < minSplinePoints {
		out := make([]domain.GeoPoint, len(path))
		copy(out, path)
		return out
	}
	if outputCount <= 0 {
		outputCount = DefaultSampleCount
	}
	if smoothing < 0 || math.IsNaN(smoothing) || math.IsInf(smoothing, 0) {
		smoothing = DefaultSmoothing
	}

	pts := clean(path)
	switch len(pts) {
	case 0:
		return nil
	case 1:
		return repeat(pts[0], outputCount)
	}

	t, ok := chordParams(pts)
	if !ok {
		return resampleLinear(pts, outputCount)
	}

	lats := make([]float64, len(pts))
	lons := make([]float64, len(pts))
	for i, p := range pts {
		lats[i] = p.Lat
		lons[i] = p.Lon
	}

	latFit, err := penalize(lats, smoothing)
	if err != nil {
		return resampleLinear(pts, outputCount)
	}
	lonFit, err := penalize(lons, smoothing)
	if err != nil {
		return resampleLinear(pts, outputCount)
	}

	var latSpline, lonSpline interp.NaturalCubic
	if err := latSpline.Fit(t, latFit); err != nil {
		return resampleLinear(pts, outputCount)
	}
	if err := lonSpline.Fit(t, lonFit); err != nil {
		return resampleLinear(pts, outputCount)
	}

	out := make([]domain.GeoPoint, outputCount)
	for i := range out {
		u := fraction(i, outputCount)
		p := domain.GeoPoint{Lat: latSpline.Predict(u), Lon: lonSpline.Predict(u)}
		if !p.IsFinite() {
			return resampleLinear(pts, outputCount)
		}
		out[i] = p
	}
	return out
}

// penalize solves (I + λ·DᵀD) g = y where D is the second-difference operator.
func penalize(y []float64, lambda float64) ([]float64, error) {
	n := len(y)
	a := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		a.SetSym(i, i, 1)
	}
	for k := 0; k+2 < n; k++ {
		idx := [3]int{k, k + 1, k + 2}
		w := [3]float64{1, -2, 1}
		for r := 0; r < 3; r++ {
			for c := r; c < 3; c++ {
				i, j := idx[r], idx[c]
				a.SetSym(i, j, a.At(i, j)+lambda*w[r]*w[c])
			}
		}
	}

	var chol mat.Cholesky
	if ok := chol.Factorize(a); !ok {
		return nil, &domain.GeometryError{Op: "smooth", Err: errNotPositiveDefinite}
	}
	var g mat.VecDense
	if err := chol.SolveVecTo(&g, mat.NewVecDense(n, append([]float64(nil), y...))); err != nil {
		return nil, err
	}
	return g.RawVector().Data, nil
}

// chordParams maps cumulative segment length onto [0, 1]. It reports false
// when the parameter is not strictly increasing.
func chordParams(pts []domain.GeoPoint) ([]float64, bool) {
	t := make([]float64, len(pts))
	for i := 1; i < len(pts); i++ {
		t[i] = t[i-1] + math.Hypot(pts[i].Lat-pts[i-1].Lat, pts[i].Lon-pts[i-1].Lon)
	}
	total := t[len(t)-1]
	if total == 0 || math.IsNaN(total) || math.IsInf(total, 0) {
		return nil, false
	}
	for i := range t {
		t[i] /= total
		if i > 0 && t[i] <= t[i-1] {
			return nil, false
		}
	}
	t[len(t)-1] = 1
	return t, true
}

// resampleLinear walks the polyline at evenly spaced chord fractions.
func resampleLinear(pts []domain.GeoPoint, n int) []domain.GeoPoint {
	cum := make([]float64, len(pts))
	for i := 1; i < len(pts); i++ {
		cum[i] = cum[i-1] + math.Hypot(pts[i].Lat-pts[i-1].Lat, pts[i].Lon-pts[i-1].Lon)
	}
	total := cum[len(cum)-1]
	if total == 0 || math.IsNaN(total) || math.IsInf(total, 0) {
		return repeat(pts[0], n)
	}

	out := make([]domain.GeoPoint, n)
	seg := 0
	for i := range out {
		target := total * fraction(i, n)
		for seg < len(pts)-2 && cum[seg+1] < target {
			seg++
		}
		span := cum[seg+1] - cum[seg]
		f := 0.0
		if span > 0 {
			f = (target - cum[seg]) / span
		}
		a, b := pts[seg], pts[seg+1]
		out[i] = domain.GeoPoint{Lat: a.Lat + f*(b.Lat-a.Lat), Lon: a.Lon + f*(b.Lon-a.Lon)}
	}
	return out
}

// clean drops non-finite points and consecutive duplicates.
func clean(path []domain.GeoPoint) []domain.GeoPoint {
	out := make([]domain.GeoPoint, 0, len(path))
	for _, p := range path {
		if !p.IsFinite() || (len(out) > 0 && p == out[len(out)-1]) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// fraction spaces n samples evenly over [0, 1]. A single sample sits at 0.
func fraction(i, n int) float64 {
	if n < 2 {
		return 0
	}
	return float64(i) / float64(n-1)
}

func repeat(p domain.GeoPoint, n int) []domain.GeoPoint {
	out := make([]domain.GeoPoint, n)
	for i := range out {
		out[i] = p
	}
	return out
}
