package gtfs

import (
	"context"
	"time"

	"github.com/jamespfennell/gtfs"

	"livemap.onebusaway.org/internal/stops"
)

// ArrivalUpdates flattens the realtime trip updates into per-stop arrival
// estimates. Stop ids missing from the feed are recovered from the static
// schedule by stop sequence, and scheduled times are attached when the trip
// is known.
func (manager *Manager) ArrivalUpdates(now time.Time) []stops.ArrivalUpdate {
	trips := manager.GetRealTimeTrips()
	vehicleByTrip := manager.vehiclesByTrip()
	loc := manager.Location()

	var updates []stops.ArrivalUpdate
	for _, trip := range trips {
		scheduled, _ := manager.scheduledTrip(trip.ID.ID)

		routeID := trip.ID.RouteID
		if routeID == "" && scheduled != nil && scheduled.Route != nil {
			routeID = scheduled.Route.Id
		}

		for _, stu := range trip.StopTimeUpdates {
			update := stops.ArrivalUpdate{
				TripID:    trip.ID.ID,
				RouteID:   routeID,
				VehicleID: vehicleByTrip[trip.ID.ID],
			}

			var st *gtfs.ScheduledStopTime
			if scheduled != nil {
				st = matchStopTime(scheduled, stu)
			}

			switch {
			case stu.StopID != nil:
				update.StopID = *stu.StopID
			case st != nil && st.Stop != nil:
				update.StopID = st.Stop.Id
			default:
				continue
			}

			event := stu.Arrival
			if event == nil {
				event = stu.Departure
			}
			if event != nil {
				update.Arrival = event.Time
				update.Delay = event.Delay
			}

			if st != nil {
				at := serviceTime(st.ArrivalTime, now, loc)
				update.Scheduled = &at
			}

			updates = append(updates, update)
		}
	}
	return updates
}

// NextArrivals returns the upcoming arrivals at a known stop.
func (manager *Manager) NextArrivals(ctx context.Context, stopID string, now time.Time, limit int) ([]stops.Arrival, error) {
	if _, err := manager.stopFinder.Stop(ctx, stopID); err != nil {
		return nil, err
	}
	return stops.NextArrivals(stopID, manager.ArrivalUpdates(now), now, limit), nil
}

func (manager *Manager) vehiclesByTrip() map[string]string {
	out := map[string]string{}
	for _, v := range manager.GetRealTimeVehicles() {
		if v.Trip == nil || v.ID == nil {
			continue
		}
		out[v.Trip.ID.ID] = v.ID.ID
	}
	return out
}

func matchStopTime(trip *gtfs.ScheduledTrip, stu gtfs.StopTimeUpdate) *gtfs.ScheduledStopTime {
	for i := range trip.StopTimes {
		st := &trip.StopTimes[i]
		if stu.StopSequence != nil && st.StopSequence == int(*stu.StopSequence) {
			return st
		}
		if stu.StopSequence == nil && stu.StopID != nil && st.Stop != nil && st.Stop.Id == *stu.StopID {
			return st
		}
	}
	return nil
}

// serviceTime anchors a GTFS stop time (an offset from the service day's noon
// minus 12h) on the service day, among yesterday, today and tomorrow in loc,
// that lands closest to now.
func serviceTime(offset time.Duration, now time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)

	var best time.Time
	for _, day := range []int{-1, 0, 1} {
		noon := time.Date(local.Year(), local.Month(), local.Day()+day, 12, 0, 0, 0, loc)
		candidate := noon.Add(-12 * time.Hour).Add(offset)
		if best.IsZero() || absDuration(candidate.Sub(now)) < absDuration(best.Sub(now)) {
			best = candidate
		}
	}
	return best
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
