package stops

import (
	"slices"
	"strings"
	"time"
)

// DefaultArrivalLimit caps NextArrivals when no limit is given.
const DefaultArrivalLimit = 5

// ArrivalUpdate is one stop-time estimate from a realtime trip update.
// Arrival is the predicted time when the feed supplies one. Otherwise the
// arrival is Scheduled shifted by Delay.
type ArrivalUpdate struct {
	TripID    string
	RouteID   string
	StopID    string
	VehicleID string
	Arrival   *time.Time
	Delay     *time.Duration
	Scheduled *time.Time
}

// Arrival is a resolved upcoming arrival at a stop.
type Arrival struct {
	TripID      string        `json:"tripId"`
	RouteID     string        `json:"routeId"`
	StopID      string        `json:"stopId"`
	VehicleID   string        `json:"vehicleId,omitempty"`
	ArrivalTime time.Time     `json:"arrivalTime"`
	Predicted   bool          `json:"predicted"`
	Delay       time.Duration `json:"delay"`
}

func (u ArrivalUpdate) resolve() (Arrival, bool) {
	a := Arrival{
		TripID:    u.TripID,
		RouteID:   u.RouteID,
		StopID:    u.StopID,
		VehicleID: u.VehicleID,
	}
	if u.Delay != nil {
		a.Delay = *u.Delay
	}

	switch {
	case u.Arrival != nil:
		a.ArrivalTime = *u.Arrival
		a.Predicted = true
		if u.Delay == nil && u.Scheduled != nil {
			a.Delay = u.Arrival.Sub(*u.Scheduled)
		}
	case u.Scheduled != nil:
		a.ArrivalTime = u.Scheduled.Add(a.Delay)
		a.Predicted = u.Delay != nil
	default:
		return Arrival{}, false
	}
	return a, true
}

// NextArrivals returns the soonest arrivals at stopID that are not before now,
// ordered by arrival time. limit <= 0 uses DefaultArrivalLimit.
func NextArrivals(stopID string, updates []ArrivalUpdate, now time.Time, limit int) []Arrival {
	if limit <= 0 {
		limit = DefaultArrivalLimit
	}

	arrivals := make([]Arrival, 0)
	for _, u := range updates {
		if u.StopID != stopID {
			continue
		}
		a, ok := u.resolve()
		if !ok || a.ArrivalTime.Before(now) {
			continue
		}
		arrivals = append(arrivals, a)
	}

	slices.SortStableFunc(arrivals, func(a, b Arrival) int {
		if c := a.ArrivalTime.Compare(b.ArrivalTime); c != 0 {
			return c
		}
		return strings.Compare(a.TripID, b.TripID)
	})

	if len(arrivals) > limit {
		arrivals = arrivals[:limit]
	}
	return arrivals
}
