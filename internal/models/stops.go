package models

import "livemap.onebusaway.org/internal/stops"

type StopEntry struct {
	ID             string  `json:"id"`
	Code           string  `json:"code"`
	Name           string  `json:"name"`
	Lat            float64 `json:"lat"`
	Lon            float64 `json:"lon"`
	Direction      string  `json:"direction,omitempty"`
	DistanceMeters float64 `json:"distanceMeters"`
}

func NewStopEntry(sd stops.StopDistance) StopEntry {
	return StopEntry{
		ID:             sd.Stop.ID,
		Code:           sd.Stop.Code,
		Name:           sd.Stop.Name,
		Lat:            sd.Stop.Lat,
		Lon:            sd.Stop.Lon,
		Direction:      sd.Direction,
		DistanceMeters: sd.DistanceMeters,
	}
}

// ArrivalEntry is one upcoming arrival. Times are epoch milliseconds.
type ArrivalEntry struct {
	TripID           string `json:"tripId"`
	RouteID          string `json:"routeId"`
	StopID           string `json:"stopId"`
	VehicleID        string `json:"vehicleId,omitempty"`
	ArrivalTime      int64  `json:"arrivalTime"`
	Predicted        bool   `json:"predicted"`
	DelaySeconds     int64  `json:"delaySeconds"`
	MinutesUntilNext int64  `json:"minutesUntil"`
}

func NewArrivalEntry(a stops.Arrival, nowMillis int64) ArrivalEntry {
	at := a.ArrivalTime.UnixMilli()
	return ArrivalEntry{
		TripID:           a.TripID,
		RouteID:          a.RouteID,
		StopID:           a.StopID,
		VehicleID:        a.VehicleID,
		ArrivalTime:      at,
		Predicted:        a.Predicted,
		DelaySeconds:     int64(a.Delay.Seconds()),
		MinutesUntilNext: (at - nowMillis) / 60000,
	}
}
