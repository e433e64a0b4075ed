package tracking

import (
	"math"

	"livemap.onebusaway.org/internal/geo"
)

// RouteProjector snaps positions onto a directed polyline.
type RouteProjector struct {
	ThresholdMeters float64
}

// Project finds the segment of shape closest to p. ok is false when the shape has
// no usable segment.
func (rp RouteProjector) Project(p geo.Point, shape []geo.Point) (result ProjectionResult, ok bool) {
	best := math.Inf(1)
	for i := 0; i+1 < len(shape); i++ {
		start, end := shape[i], shape[i+1]
		if start == end {
			continue
		}
		projected, _ := geo.ProjectOntoSegment(p, start, end)
		d := geo.Haversine(p, projected)
		if d < best {
			best = d
			result = ProjectionResult{
				Point:            projected,
				Bearing:          geo.Bearing(start, end),
				SegmentIndex:     i,
				OffRouteDistance: d,
			}
			ok = true
		}
	}
	return result, ok
}

// Accept reports whether the result is close enough to the route to be applied.
func (rp RouteProjector) Accept(result ProjectionResult) bool {
	return result.OffRouteDistance <= rp.ThresholdMeters
}
