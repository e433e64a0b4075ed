package gtfs

import (
	"time"

	"github.com/jamespfennell/gtfs"
)

// MockAddVehicle adds or replaces a realtime vehicle position.
func (m *Manager) MockAddVehicle(vehicleID, tripID, routeID string, lat, lon float32, timestamp time.Time) {
	m.realTimeMutex.Lock()
	defer m.realTimeMutex.Unlock()

	vehicle := gtfs.Vehicle{
		ID: &gtfs.VehicleID{ID: vehicleID},
		Trip: &gtfs.Trip{
			ID: gtfs.TripID{
				ID:      tripID,
				RouteID: routeID,
			},
		},
		Position:  &gtfs.Position{Latitude: &lat, Longitude: &lon},
		Timestamp: &timestamp,
	}
	m.realTimeUpdated = timestamp

	for i, v := range m.realTimeVehicles {
		if v.ID != nil && v.ID.ID == vehicleID {
			m.realTimeVehicles[i] = vehicle
			return
		}
	}
	m.realTimeVehicles = append(m.realTimeVehicles, vehicle)
}

// MockAddArrival adds a predicted arrival of tripID at stopID.
func (m *Manager) MockAddArrival(tripID, routeID, stopID string, arrival time.Time) {
	m.realTimeMutex.Lock()
	defer m.realTimeMutex.Unlock()

	update := gtfs.StopTimeUpdate{
		StopID:  &stopID,
		Arrival: &gtfs.StopTimeEvent{Time: &arrival},
	}

	for i, t := range m.realTimeTrips {
		if t.ID.ID == tripID {
			m.realTimeTrips[i].StopTimeUpdates = append(m.realTimeTrips[i].StopTimeUpdates, update)
			return
		}
	}
	m.realTimeTrips = append(m.realTimeTrips, gtfs.Trip{
		ID:              gtfs.TripID{ID: tripID, RouteID: routeID},
		StopTimeUpdates: []gtfs.StopTimeUpdate{update},
	})
}

// MockClearRealtime drops all realtime data.
func (m *Manager) MockClearRealtime() {
	m.realTimeMutex.Lock()
	defer m.realTimeMutex.Unlock()
	m.realTimeTrips = nil
	m.realTimeVehicles = nil
}
