// Package tracking reconciles refreshed vehicle position snapshots with the state a
// map session has already rendered. It estimates headings, snaps the followed vehicle
// onto its route, keeps a fading trail and groups markers for display.
package tracking

import (
	"time"

	"livemap.onebusaway.org/internal/geo"
)

// DirectionUnknown marks a fix or shape whose direction of travel is not known.
const DirectionUnknown = -1

// VehicleFix is one reported position sample. Bearing and Speed are nil when the feed
// omits them.
type VehicleFix struct {
	ID          string
	Lat         float64
	Lon         float64
	Bearing     *float64
	Speed       *float64
	RouteID     string
	TripID      string
	DirectionID int
	StopID      string
	Status      string
	Timestamp   time.Time
}

// Point is the raw reported position.
func (f VehicleFix) Point() geo.Point {
	return geo.Point{Lat: f.Lat, Lon: f.Lon}
}

// Snapshot is the full list of fixes received in one refresh cycle.
type Snapshot struct {
	Fixes      []VehicleFix
	ReceivedAt time.Time
}

// RenderedVehicle is the per-vehicle render state held by the PositionStore.
type RenderedVehicle struct {
	ID                string    `json:"id"`
	Lat               float64   `json:"lat"`
	Lon               float64   `json:"lon"`
	Bearing           float64   `json:"bearing"`
	BearingKnown      bool      `json:"bearingKnown"`
	IsFollowed        bool      `json:"isFollowed"`
	IsOnSelectedRoute bool      `json:"isOnSelectedRoute"`
	RouteID           string    `json:"routeId,omitempty"`
	TripID            string    `json:"tripId,omitempty"`
	Status            string    `json:"status,omitempty"`
	Snapped           bool      `json:"snapped"`
	LastSeenTimestamp time.Time `json:"lastSeenTimestamp"`
}

// Point is the displayed position, snapped or raw.
func (v RenderedVehicle) Point() geo.Point {
	return geo.Point{Lat: v.Lat, Lon: v.Lon}
}

// TrailPoint is one raw position in a followed vehicle's history.
type TrailPoint struct {
	Lat       float64   `json:"lat"`
	Lon       float64   `json:"lon"`
	Timestamp time.Time `json:"timestamp"`
}

// Point drops the timestamp.
func (p TrailPoint) Point() geo.Point {
	return geo.Point{Lat: p.Lat, Lon: p.Lon}
}

// RouteShape is the ordered, directed vertex list for one direction of a route.
type RouteShape struct {
	RouteID     string
	DirectionID int
	ShapeID     string
	Points      []geo.Point
}

// ProjectionResult is the best match of a fix against a route shape.
type ProjectionResult struct {
	Point            geo.Point
	Bearing          float64
	SegmentIndex     int
	OffRouteDistance float64
}

// VehicleUpdate pairs the newly written state with the position that was rendered
// before the pass.
type VehicleUpdate struct {
	From    geo.Point
	Vehicle RenderedVehicle
}

// ChangeSet is the effect of one reconciliation pass. Created, Updated and Removed
// are disjoint.
type ChangeSet struct {
	Created []RenderedVehicle
	Updated []VehicleUpdate
	Removed []string
	// Dropped counts fixes rejected by validation.
	Dropped int
}

// Empty reports whether the pass changed nothing.
func (cs ChangeSet) Empty() bool {
	return len(cs.Created) == 0 && len(cs.Updated) == 0 && len(cs.Removed) == 0
}

// ShapeSource supplies route shapes. Implementations may load lazily.
type ShapeSource interface {
	RouteShape(routeID string, directionID int) (RouteShape, bool)
}

// ShapeSourceFunc adapts a function to the ShapeSource interface.
type ShapeSourceFunc func(routeID string, directionID int) (RouteShape, bool)

func (f ShapeSourceFunc) RouteShape(routeID string, directionID int) (RouteShape, bool) {
	return f(routeID, directionID)
}
