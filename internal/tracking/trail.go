package tracking

import (
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/twpayne/go-polyline"

	"livemap.onebusaway.org/internal/geo"
)

const (
	trailMinOpacity = 0.15
	trailMaxOpacity = 1.0
	trailMinWidth   = 2.0
	trailMaxWidth   = 6.0
)

// TrailRecorder keeps the recent raw positions of the followed vehicle. The trail is
// bounded by both a point count and an age window; whichever evicts more wins.
type TrailRecorder struct {
	maxPoints int
	maxAge    time.Duration

	vehicleID string
	points    []TrailPoint
}

// NewTrailRecorder returns an empty recorder. A bound <= 0 is not applied.
func NewTrailRecorder(maxPoints int, maxAge time.Duration) *TrailRecorder {
	return &TrailRecorder{maxPoints: maxPoints, maxAge: maxAge}
}

// TrailSegment is one drawable piece of a trail.
type TrailSegment struct {
	From    geo.Point `json:"from"`
	To      geo.Point `json:"to"`
	Opacity float64   `json:"opacity"`
	Width   float64   `json:"width"`
}

// Record appends a position for vehicleID. A different vehicle id discards the
// current trail first. Points not newer than the last one are ignored, which keeps
// a repeated snapshot from growing the trail. It reports whether the point was kept.
func (t *TrailRecorder) Record(vehicleID string, p geo.Point, ts time.Time) bool {
	if vehicleID != t.vehicleID {
		t.Reset()
		t.vehicleID = vehicleID
	}
	if n := len(t.points); n > 0 && !ts.After(t.points[n-1].Timestamp) {
		return false
	}
	t.points = append(t.points, TrailPoint{Lat: p.Lat, Lon: p.Lon, Timestamp: ts})
	t.evict()
	return true
}

func (t *TrailRecorder) evict() {
	if len(t.points) == 0 {
		return
	}
	newest := t.points[len(t.points)-1].Timestamp
	start := 0
	if t.maxAge > 0 {
		for start < len(t.points) && newest.Sub(t.points[start].Timestamp) > t.maxAge {
			start++
		}
	}
	if t.maxPoints > 0 && len(t.points)-start > t.maxPoints {
		start = len(t.points) - t.maxPoints
	}
	if start > 0 {
		t.points = append(t.points[:0], t.points[start:]...)
	}
}

// Reset discards the trail entirely.
func (t *TrailRecorder) Reset() {
	t.vehicleID = ""
	t.points = nil
}

// VehicleID is the vehicle the current trail belongs to.
func (t *TrailRecorder) VehicleID() string {
	return t.vehicleID
}

// Len is the number of recorded points.
func (t *TrailRecorder) Len() int {
	return len(t.points)
}

// Points returns a copy of the trail, oldest first.
func (t *TrailRecorder) Points() []TrailPoint {
	out := make([]TrailPoint, len(t.points))
	copy(out, t.points)
	return out
}

// Segments returns the trail as line segments whose opacity and width grow from the
// oldest segment to the newest.
func (t *TrailRecorder) Segments() []TrailSegment {
	return trailSegments(t.points)
}

func trailSegments(points []TrailPoint) []TrailSegment {
	n := len(points) - 1
	if n < 1 {
		return nil
	}
	segments := make([]TrailSegment, n)
	for i := 0; i < n; i++ {
		frac := float64(i+1) / float64(n)
		segments[i] = TrailSegment{
			From:    points[i].Point(),
			To:      points[i+1].Point(),
			Opacity: trailMinOpacity + (trailMaxOpacity-trailMinOpacity)*frac,
			Width:   trailMinWidth + (trailMaxWidth-trailMinWidth)*frac,
		}
	}
	return segments
}

// GeoJSON renders the trail segments as a feature collection of line strings
// carrying their opacity and width.
func (t *TrailRecorder) GeoJSON() *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for i, seg := range t.Segments() {
		f := geojson.NewFeature(orb.LineString{seg.From.Orb(), seg.To.Orb()})
		f.Properties["vehicleId"] = t.vehicleID
		f.Properties["index"] = i
		f.Properties["opacity"] = seg.Opacity
		f.Properties["width"] = seg.Width
		fc.Append(f)
	}
	return fc
}

// Polyline encodes the trail as a Google encoded polyline.
func (t *TrailRecorder) Polyline() string {
	coords := make([][]float64, len(t.points))
	for i, p := range t.points {
		coords[i] = []float64{p.Lat, p.Lon}
	}
	return string(polyline.EncodeCoords(coords))
}
