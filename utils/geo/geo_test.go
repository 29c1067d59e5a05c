package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

// pointNorth returns the point distance miles due north of p
func pointNorth(p Point, miles float64) Point {
	return Point{Latitude: p.Latitude + toDegrees(miles/EarthRadiusMiles), Longitude: p.Longitude}
}

func TestAngularRadius(t *testing.T) {
	assert.InDelta(t, 10.0/3963.0, AngularRadius(10, "miles"), 1e-12)
	assert.InDelta(t, 10.0/3963.0, AngularRadius(10, ""), 1e-12)
	assert.InDelta(t, 10.0/6378.0, AngularRadius(10, "km"), 1e-12)
}

func TestWithinCapBoundary(t *testing.T) {
	boston := Point{Latitude: 42.3601, Longitude: -71.0589}
	radius := AngularRadius(10, "miles")

	assert.True(t, WithinCap(boston, boston, radius))
	assert.True(t, WithinCap(boston, pointNorth(boston, 9.99), radius))
	assert.False(t, WithinCap(boston, pointNorth(boston, 10.01), radius))
}

func TestDistance(t *testing.T) {
	a := Point{Latitude: 0, Longitude: 0}
	b := Point{Latitude: 0, Longitude: 1}
	assert.InDelta(t, EarthRadiusMiles*math.Pi/180, Distance(a, b, "miles"), 1e-9)
}

func TestBoundingBoxContainsCap(t *testing.T) {
	tests := map[string]struct {
		center Point
		miles  float64
		wraps  bool
	}{
		"boston":      {Point{42.3601, -71.0589}, 30, false},
		"date line":   {Point{0, 179.9}, 50, true},
		"date line w": {Point{10, -179.95}, 20, true},
	}

	for name, tt := range tests {
		radius := AngularRadius(tt.miles, "miles")
		box := BoundingBox(tt.center, radius)
		assert.Equal(t, tt.wraps, box.WrapsAntimeridian, "%s - invalid wrap", name)

		for bearing := 0.0; bearing < 360; bearing += 15 {
			p := destination(tt.center, radius*0.999, bearing)
			assert.True(t, box.Contains(p), "%s - box misses point at bearing %v", name, bearing)
			assert.True(t, WithinCap(tt.center, p, radius), "%s - cap misses point at bearing %v", name, bearing)
		}
	}
}

func TestBoundingBoxPole(t *testing.T) {
	box := BoundingBox(Point{Latitude: 89.99, Longitude: 10}, AngularRadius(100, "miles"))
	assert.InDelta(t, 90.0, box.MaxLat, 1e-9)
	assert.Equal(t, -180.0, box.MinLng)
	assert.Equal(t, 180.0, box.MaxLng)
	assert.True(t, box.Contains(Point{Latitude: 89.5, Longitude: -170}))
}

func TestPointValid(t *testing.T) {
	assert.True(t, Point{Latitude: 90, Longitude: -180}.Valid())
	assert.False(t, Point{Latitude: 91, Longitude: 0}.Valid())
	assert.False(t, Point{Latitude: 0, Longitude: 181}.Valid())
}

// destination returns the point reached from p after travelling radians along bearing degrees
func destination(p Point, radians, bearing float64) Point {
	lat1 := toRadians(p.Latitude)
	lng1 := toRadians(p.Longitude)
	brg := toRadians(bearing)

	lat2 := math.Asin(math.Sin(lat1)*math.Cos(radians) + math.Cos(lat1)*math.Sin(radians)*math.Cos(brg))
	lng2 := lng1 + math.Atan2(math.Sin(brg)*math.Sin(radians)*math.Cos(lat1), math.Cos(radians)-math.Sin(lat1)*math.Sin(lat2))

	lng := toDegrees(lng2)
	for lng > 180 {
		lng -= 360
	}
	for lng < -180 {
		lng += 360
	}
	return Point{Latitude: toDegrees(lat2), Longitude: lng}
}
