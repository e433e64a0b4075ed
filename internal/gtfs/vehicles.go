package gtfs

import (
	"math"
	"time"

	"github.com/jamespfennell/gtfs"

	"livemap.onebusaway.org/gtfsdb"
	"livemap.onebusaway.org/internal/tracking"
)

// Snapshot converts the latest vehicle positions into a tracking snapshot.
func (manager *Manager) Snapshot() tracking.Snapshot {
	manager.realTimeMutex.RLock()
	vehicles := manager.realTimeVehicles
	receivedAt := manager.realTimeUpdated
	manager.realTimeMutex.RUnlock()

	fixes := make([]tracking.VehicleFix, 0, len(vehicles))
	for _, v := range vehicles {
		if fix, ok := manager.vehicleFix(v, receivedAt); ok {
			fixes = append(fixes, fix)
		}
	}
	return tracking.Snapshot{Fixes: fixes, ReceivedAt: receivedAt}
}

// vehicleFix maps one GTFS-RT vehicle. Missing coordinates become NaN so the
// reconciler counts the fix as malformed instead of silently losing it.
// Vehicles with neither a vehicle id nor a trip id cannot be tracked.
func (manager *Manager) vehicleFix(v gtfs.Vehicle, receivedAt time.Time) (tracking.VehicleFix, bool) {
	fix := tracking.VehicleFix{
		Lat:         math.NaN(),
		Lon:         math.NaN(),
		DirectionID: tracking.DirectionUnknown,
		Status:      vehicleStatus(v.CurrentStatus),
		Timestamp:   receivedAt,
	}

	if v.ID != nil {
		fix.ID = v.ID.ID
	}
	if v.Trip != nil {
		fix.TripID = v.Trip.ID.ID
		fix.RouteID = v.Trip.ID.RouteID
		fix.DirectionID = int(gtfsdb.DirectionIndex(v.Trip.ID.DirectionID))
	}
	if fix.ID == "" {
		fix.ID = fix.TripID
	}
	if fix.ID == "" {
		return tracking.VehicleFix{}, false
	}

	if fix.TripID != "" && (fix.RouteID == "" || fix.DirectionID == tracking.DirectionUnknown) {
		if trip, ok := manager.scheduledTrip(fix.TripID); ok {
			if fix.RouteID == "" && trip.Route != nil {
				fix.RouteID = trip.Route.Id
			}
			if fix.DirectionID == tracking.DirectionUnknown {
				fix.DirectionID = int(gtfsdb.DirectionIndex(trip.DirectionId))
			}
		}
	}

	if p := v.Position; p != nil {
		if p.Latitude != nil && p.Longitude != nil {
			fix.Lat = float64(*p.Latitude)
			fix.Lon = float64(*p.Longitude)
		}
		if p.Bearing != nil {
			b := float64(*p.Bearing)
			fix.Bearing = &b
		}
		if p.Speed != nil {
			s := float64(*p.Speed)
			fix.Speed = &s
		}
	}
	if v.StopID != nil {
		fix.StopID = *v.StopID
	}
	if v.Timestamp != nil {
		fix.Timestamp = *v.Timestamp
	}
	return fix, true
}

func vehicleStatus(status *gtfs.CurrentStatus) string {
	if status == nil {
		return "SCHEDULED"
	}
	switch *status {
	case 0:
		return "INCOMING_AT"
	case 1:
		return "STOPPED_AT"
	case 2:
		return "IN_TRANSIT_TO"
	default:
		return "SCHEDULED"
	}
}
