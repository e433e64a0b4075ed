// Package geo holds the pure geometry used by the tracking engine and the stop finder.
package geo

import (
	"math"

	"github.com/paulmach/orb"
	orbgeo "github.com/paulmach/orb/geo"
)

// Point is a WGS84 position in decimal degrees.
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Orb converts the point to an orb.Point, which is ordered lon/lat.
func (p Point) Orb() orb.Point {
	return orb.Point{p.Lon, p.Lat}
}

// FromOrb converts an orb.Point back into a Point.
func FromOrb(p orb.Point) Point {
	return Point{Lat: p.Lat(), Lon: p.Lon()}
}

// Valid reports whether lat/lon are finite and inside the WGS84 range.
func Valid(lat, lon float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lon) || math.IsInf(lat, 0) || math.IsInf(lon, 0) {
		return false
	}
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

// Haversine returns the great-circle distance between a and b in meters.
func Haversine(a, b Point) float64 {
	return orbgeo.DistanceHaversine(a.Orb(), b.Orb())
}

// Bearing returns the initial compass bearing travelling from a to b, in [0, 360).
func Bearing(a, b Point) float64 {
	return NormalizeBearing(orbgeo.Bearing(a.Orb(), b.Orb()))
}

// NormalizeBearing maps any finite angle in degrees into [0, 360).
func NormalizeBearing(deg float64) float64 {
	b := math.Mod(deg, 360)
	if b < 0 {
		b += 360
	}
	// math.Mod(-1e-15, 360) + 360 rounds to exactly 360
	if b >= 360 {
		b = 0
	}
	return b
}

// ProjectOntoSegment returns the closest point to p on the segment start-end and the
// clamped projection parameter t. Longitudes are scaled by cos(lat) so the projection
// is taken in a locally conformal frame. Zero-length segments return start with t=0;
// callers are expected to skip them.
func ProjectOntoSegment(p, start, end Point) (Point, float64) {
	scale := math.Cos(p.Lat * math.Pi / 180)

	dx := (end.Lon - start.Lon) * scale
	dy := end.Lat - start.Lat

	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		return start, 0
	}

	px := (p.Lon - start.Lon) * scale
	py := p.Lat - start.Lat

	t := (px*dx + py*dy) / lenSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}

	return Point{
		Lat: start.Lat + t*(end.Lat-start.Lat),
		Lon: start.Lon + t*(end.Lon-start.Lon),
	}, t
}

// Offset returns the point reached by moving the given number of meters north and east
// of p. It is a flat-earth approximation good for the short distances used in tests
// and bounding boxes.
func Offset(p Point, northMeters, eastMeters float64) Point {
	const metersPerDegree = orb.EarthRadius * math.Pi / 180
	return Point{
		Lat: p.Lat + northMeters/metersPerDegree,
		Lon: p.Lon + eastMeters/(metersPerDegree*math.Cos(p.Lat*math.Pi/180)),
	}
}

// BoundingBox returns the lat/lon box that contains the circle of radius meters around p.
// Latitudes are clamped to the poles, and a circle reaching a pole spans every
// longitude. Longitudes may run past ±180; split them with LonRanges.
func BoundingBox(p Point, radius float64) (minLat, maxLat, minLon, maxLon float64) {
	sw := Offset(p, -radius, -radius)
	ne := Offset(p, radius, radius)
	if sw.Lat <= -90 || ne.Lat >= 90 {
		return math.Max(sw.Lat, -90), math.Min(ne.Lat, 90), -180, 180
	}
	return sw.Lat, ne.Lat, sw.Lon, ne.Lon
}

// LonRange is a closed longitude interval inside [-180, 180].
type LonRange struct {
	Min, Max float64
}

// LonRanges splits [minLon, maxLon] into at most two ranges inside
// [-180, 180], wrapping whatever part crosses the antimeridian.
func LonRanges(minLon, maxLon float64) []LonRange {
	switch {
	case maxLon-minLon >= 360:
		return []LonRange{{Min: -180, Max: 180}}
	case minLon < -180:
		return []LonRange{{Min: minLon + 360, Max: 180}, {Min: -180, Max: maxLon}}
	case maxLon > 180:
		return []LonRange{{Min: minLon, Max: 180}, {Min: -180, Max: maxLon - 360}}
	}
	return []LonRange{{Min: minLon, Max: maxLon}}
}
