package gcj02

import (
	"math"

	"github.com/arcfix-nav/driftfilter/internal/gpsfix"
)

// Ellipsoid constants for the GCJ-02 (Krasovsky 1940) perturbation, per
// spec.md §6.
const (
	semiMajorAxis       = 6378245.0
	eccentricitySquared = 0.00669342162296943
)

// China bounding box outside which the shift is bypassed (spec.md §6).
const (
	minLng = 72.004
	maxLng = 137.8347
	minLat = 0.8293
	maxLat = 55.8271
)

// Transform shifts a WGS-84 (lat, lng) to GCJ-02, returning the input
// unchanged when it falls outside the China bounding box.
func Transform(lat, lng float64) (float64, float64) {
	if outOfChina(lat, lng) {
		return lat, lng
	}

	dLat := transformLat(lng-105.0, lat-35.0)
	dLng := transformLng(lng-105.0, lat-35.0)

	radLat := lat / 180.0 * math.Pi
	magic := math.Sin(radLat)
	magic = 1 - eccentricitySquared*magic*magic
	sqrtMagic := math.Sqrt(magic)

	dLat = (dLat * 180.0) / ((semiMajorAxis * (1 - eccentricitySquared)) / (magic * sqrtMagic) * math.Pi)
	dLng = (dLng * 180.0) / (semiMajorAxis / sqrtMagic * math.Cos(radLat) * math.Pi)

	return lat + dLat, lng + dLng
}

// TransformFix shifts a gpsfix.Fix's coordinates, leaving its timestamp
// untouched.
func TransformFix(f gpsfix.Fix) gpsfix.Fix {
	lat, lng := Transform(f.Lat, f.Lng)
	return gpsfix.Fix{Lat: lat, Lng: lng, TimeMs: f.TimeMs}
}

func outOfChina(lat, lng float64) bool {
	return lng < minLng || lng > maxLng || lat < minLat || lat > maxLat
}

func transformLat(x, y float64) float64 {
	ret := -100.0 + 2.0*x + 3.0*y + 0.2*y*y + 0.1*x*y + 0.2*math.Sqrt(math.Abs(x))
	ret += (20.0*math.Sin(6.0*x*math.Pi) + 20.0*math.Sin(2.0*x*math.Pi)) * 2.0 / 3.0
	ret += (20.0*math.Sin(y*math.Pi) + 40.0*math.Sin(y/3.0*math.Pi)) * 2.0 / 3.0
	ret += (160.0*math.Sin(y/12.0*math.Pi) + 320.0*math.Sin(y*math.Pi/30.0)) * 2.0 / 3.0
	return ret
}

func transformLng(x, y float64) float64 {
	ret := 300.0 + x + 2.0*y + 0.1*x*x + 0.1*x*y + 0.1*math.Sqrt(math.Abs(x))
	ret += (20.0*math.Sin(6.0*x*math.Pi) + 20.0*math.Sin(2.0*x*math.Pi)) * 2.0 / 3.0
	ret += (20.0*math.Sin(x*math.Pi) + 40.0*math.Sin(x/3.0*math.Pi)) * 2.0 / 3.0
	ret += (150.0*math.Sin(x/12.0*math.Pi) + 300.0*math.Sin(x/30.0*math.Pi)) * 2.0 / 3.0
	return ret
}
