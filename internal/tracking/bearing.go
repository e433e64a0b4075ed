package tracking

import (
	"math"

	"livemap.onebusaway.org/internal/geo"
)

// BearingEstimator derives a heading for fixes that arrive without one.
type BearingEstimator struct {
	MinMovementMeters float64
}

// Estimate returns the bearing for fix. A source bearing wins. Otherwise the bearing
// from prev is used when the vehicle moved more than MinMovementMeters. The second
// return value is false when no bearing can be trusted.
func (e BearingEstimator) Estimate(fix VehicleFix, prev *geo.Point) (float64, bool) {
	if b, ok := sourceBearing(fix); ok {
		return b, true
	}
	if prev == nil {
		return 0, false
	}
	current := fix.Point()
	if geo.Haversine(*prev, current) <= e.MinMovementMeters {
		return 0, false
	}
	return geo.Bearing(*prev, current), true
}

func sourceBearing(fix VehicleFix) (float64, bool) {
	if fix.Bearing == nil || math.IsNaN(*fix.Bearing) || math.IsInf(*fix.Bearing, 0) {
		return 0, false
	}
	return geo.NormalizeBearing(*fix.Bearing), true
}
