// Package geo: geodesic distance, robust centre-of-mass estimators, and the
// triangle/bearing helpers used by the drift detector's collinearity test.
package geo

import (
	"errors"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// EarthRadiusMeters is the mean Earth radius used by the haversine formula
// and by the local-tangent approximation in the anomaly simulator.
const EarthRadiusMeters = 6371000.0

// ErrEmptySet is returned by Centroid and MedianPoint when given no points.
// Reaching it is a programmer error (spec: EmptyDomain), never a property
// of well-formed input data.
var ErrEmptySet = errors.New("geo: empty point set")

// Point is the minimal (lat, lng) pair the geometry kernel operates on.
// gpsfix.Fix satisfies this shape positionally; callers pass Lat/Lng
// directly so this package has no dependency on gpsfix.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Distance returns the great-circle distance between a and b in meters,
// using the haversine formula with EarthRadiusMeters.
func Distance(a, b Point) float64 {
	lat1, lat2 := deg2rad(a.Lat), deg2rad(b.Lat)
	dLat := deg2rad(b.Lat - a.Lat)
	dLng := deg2rad(b.Lng - a.Lng)

	sinDLat := math.Sin(dLat / 2)
	sinDLng := math.Sin(dLng / 2)
	h := sinDLat*sinDLat + math.Cos(lat1)*math.Cos(lat2)*sinDLng*sinDLng
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return EarthRadiusMeters * c
}

// Centroid returns the arithmetic mean of lat and lng across points. This is
// acceptable (rather than a proper spherical centroid) because the window
// the detector maintains spans far less than a kilometre. Returns
// ErrEmptySet for an empty input.
func Centroid(points []Point) (Point, error) {
	if len(points) == 0 {
		return Point{}, ErrEmptySet
	}
	lats := make([]float64, len(points))
	lngs := make([]float64, len(points))
	for i, p := range points {
		lats[i] = p.Lat
		lngs[i] = p.Lng
	}
	return Point{Lat: stat.Mean(lats, nil), Lng: stat.Mean(lngs, nil)}, nil
}

// MedianPoint returns the coordinate-wise median of points: lat and lng are
// sorted and median'd independently, so the result is not required to be
// one of the input points. Returns ErrEmptySet for an empty input.
func MedianPoint(points []Point) (Point, error) {
	if len(points) == 0 {
		return Point{}, ErrEmptySet
	}
	lats := make([]float64, len(points))
	lngs := make([]float64, len(points))
	for i, p := range points {
		lats[i] = p.Lat
		lngs[i] = p.Lng
	}
	return Point{Lat: median(lats), Lng: median(lngs)}, nil
}

// median returns the middle element of xs (or the average of the two
// middle elements for an even-length xs), per-coordinate sort first.
func median(xs []float64) float64 {
	sorted := append([]float64(nil), xs...)
	sort.Float64s(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// MedianDistance returns the median of the distances from center to each of
// points, used to derive the median-radius base-point variant.
func MedianDistance(center Point, points []Point) float64 {
	if len(points) == 0 {
		return 0
	}
	ds := make([]float64, len(points))
	for i, p := range points {
		ds[i] = Distance(center, p)
	}
	return median(ds)
}

// MaxDistance returns the largest distance from center to any of points.
func MaxDistance(center Point, points []Point) float64 {
	var max float64
	for _, p := range points {
		if d := Distance(center, p); d > max {
			max = d
		}
	}
	return max
}

// MinTriangleAngle converts the three pairwise sides of p, q, r via
// Distance and applies the law of cosines to obtain all three interior
// angles in degrees, returning the smallest. Returns 0 if any side has
// length 0 (a degenerate triangle has no well-defined smallest angle).
func MinTriangleAngle(p, q, r Point) float64 {
	a := Distance(q, r) // side opposite p
	b := Distance(p, r) // side opposite q
	c := Distance(p, q) // side opposite r

	if a == 0 || b == 0 || c == 0 {
		return 0
	}

	angleP := lawOfCosinesAngle(b, c, a)
	angleQ := lawOfCosinesAngle(a, c, b)
	angleR := lawOfCosinesAngle(a, b, c)

	min := angleP
	if angleQ < min {
		min = angleQ
	}
	if angleR < min {
		min = angleR
	}
	return min
}

// lawOfCosinesAngle returns, in degrees, the angle opposite side `opposite`
// in a triangle with the other two sides `adjacent1` and `adjacent2`.
func lawOfCosinesAngle(adjacent1, adjacent2, opposite float64) float64 {
	cosAngle := (adjacent1*adjacent1 + adjacent2*adjacent2 - opposite*opposite) / (2 * adjacent1 * adjacent2)
	cosAngle = clamp(cosAngle, -1, 1)
	return math.Acos(cosAngle) * 180 / math.Pi
}

// Bearing returns the forward azimuth from a to b in degrees, in [0, 360).
func Bearing(a, b Point) float64 {
	lat1, lat2 := deg2rad(a.Lat), deg2rad(b.Lat)
	dLng := deg2rad(b.Lng - a.Lng)

	y := math.Sin(dLng) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(dLng)
	theta := math.Atan2(y, x) * 180 / math.Pi
	return math.Mod(theta+360, 360)
}

// AngleDiff returns the circular difference between two bearings alpha and
// beta, in degrees, in [0, 180].
func AngleDiff(alpha, beta float64) float64 {
	diff := math.Mod(math.Abs(alpha-beta), 360)
	if diff > 180 {
		diff = 360 - diff
	}
	return diff
}

func deg2rad(d float64) float64 { return d * math.Pi / 180 }

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
