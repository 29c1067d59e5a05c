// Package geo implements the spherical math behind radius searches.
package geo

import (
	"math"
	"strings"
)

const (
	// EarthRadiusMiles is the radius used to turn a distance in miles into radians
	EarthRadiusMiles = 3963.0
	// EarthRadiusKm is the radius used for distances given in kilometers
	EarthRadiusKm = 6378.0
)

// Point is a WGS84 coordinate in degrees
type Point struct {
	Latitude  float64
	Longitude float64
}

// Valid reports whether p lies inside the coordinate ranges
func (p Point) Valid() bool {
	return p.Latitude >= -90 && p.Latitude <= 90 &&
		p.Longitude >= -180 && p.Longitude <= 180
}

// Box is a latitude/longitude rectangle. When WrapsAntimeridian is set the
// longitude range is MinLng..180 plus -180..MaxLng.
type Box struct {
	MinLat, MaxLat    float64
	MinLng, MaxLng    float64
	WrapsAntimeridian bool
}

// EarthRadius returns the radius for unit, defaulting to miles
func EarthRadius(unit string) float64 {
	switch strings.ToLower(unit) {
	case "km", "kilometers", "kilometres":
		return EarthRadiusKm
	default:
		return EarthRadiusMiles
	}
}

// AngularRadius converts a surface distance into radians
func AngularRadius(distance float64, unit string) float64 {
	return distance / EarthRadius(unit)
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

func toDegrees(rad float64) float64 {
	return rad * 180 / math.Pi
}

// CentralAngle returns the angle in radians between a and b using the haversine formula
func CentralAngle(a, b Point) float64 {
	lat1, lat2 := toRadians(a.Latitude), toRadians(b.Latitude)
	dLat := lat2 - lat1
	dLng := toRadians(b.Longitude - a.Longitude)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	if h > 1 {
		h = 1
	}
	return 2 * math.Asin(math.Sqrt(h))
}

// Distance returns the great-circle distance between a and b in unit
func Distance(a, b Point, unit string) float64 {
	return CentralAngle(a, b) * EarthRadius(unit)
}

// WithinCap reports whether p lies inside the spherical cap centred on center
// with the given angular radius. Points on the boundary are inside.
func WithinCap(center, p Point, radians float64) bool {
	return CentralAngle(center, p) <= radians
}

// BoundingBox returns the smallest lat/lng rectangle containing the spherical cap.
// Caps reaching a pole span every longitude.
func BoundingBox(center Point, radians float64) Box {
	lat := toRadians(center.Latitude)
	lng := toRadians(center.Longitude)

	minLat := lat - radians
	maxLat := lat + radians

	box := Box{MinLng: -180, MaxLng: 180}
	if minLat <= -math.Pi/2 || maxLat >= math.Pi/2 {
		box.MinLat = toDegrees(math.Max(minLat, -math.Pi/2))
		box.MaxLat = toDegrees(math.Min(maxLat, math.Pi/2))
		return box
	}

	dLng := math.Asin(math.Sin(radians) / math.Cos(lat))
	minLng := lng - dLng
	maxLng := lng + dLng

	box.MinLat = toDegrees(minLat)
	box.MaxLat = toDegrees(maxLat)

	switch {
	case minLng < -math.Pi:
		box.MinLng = toDegrees(minLng + 2*math.Pi)
		box.MaxLng = toDegrees(maxLng)
		box.WrapsAntimeridian = true
	case maxLng > math.Pi:
		box.MinLng = toDegrees(minLng)
		box.MaxLng = toDegrees(maxLng - 2*math.Pi)
		box.WrapsAntimeridian = true
	default:
		box.MinLng = toDegrees(minLng)
		box.MaxLng = toDegrees(maxLng)
	}

	return box
}

// Contains reports whether p falls inside the rectangle
func (b Box) Contains(p Point) bool {
	if p.Latitude < b.MinLat || p.Latitude > b.MaxLat {
		return false
	}
	if b.WrapsAntimeridian {
		return p.Longitude >= b.MinLng || p.Longitude <= b.MaxLng
	}
	return p.Longitude >= b.MinLng && p.Longitude <= b.MaxLng
}
