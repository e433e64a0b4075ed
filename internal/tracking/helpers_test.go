package tracking

import (
	"bytes"
	"log/slog"
	"time"

	"livemap.onebusaway.org/internal/geo"
	"livemap.onebusaway.org/internal/logging"
)

var baseTime = time.Date(2025, 3, 14, 8, 0, 0, 0, time.UTC)

func fixAt(id string, p geo.Point, ts time.Time) VehicleFix {
	return VehicleFix{
		ID:          id,
		Lat:         p.Lat,
		Lon:         p.Lon,
		RouteID:     "route_1",
		TripID:      "trip_" + id,
		DirectionID: 0,
		Timestamp:   ts,
	}
}

func snapshotOf(fixes ...VehicleFix) Snapshot {
	return Snapshot{Fixes: fixes, ReceivedAt: baseTime}
}

func floatPtr(f float64) *float64 {
	return &f
}

func newTestReconciler(shapes ShapeSource, cfg Config) (*Reconciler, *PositionStore, *TrailRecorder, *bytes.Buffer) {
	var buf bytes.Buffer
	logger := logging.NewStructuredLogger(&buf, slog.LevelInfo)
	cfg = cfg.WithDefaults()
	store := NewPositionStore()
	trail := NewTrailRecorder(cfg.TrailMaxPoints, cfg.TrailMaxAge)
	return NewReconciler(store, trail, shapes, cfg, logger), store, trail, &buf
}

// northSouthShape is a straight route along lon=33 through lat=35.
func northSouthShape() RouteShape {
	return RouteShape{
		RouteID: "route_1",
		Points: []geo.Point{
			{Lat: 34.99, Lon: 33.0},
			{Lat: 35.01, Lon: 33.0},
		},
	}
}

func staticShapes(shape RouteShape) ShapeSource {
	return ShapeSourceFunc(func(routeID string, directionID int) (RouteShape, bool) {
		if routeID != shape.RouteID {
			return RouteShape{}, false
		}
		return shape, true
	})
}

type commit struct {
	id       string
	from, to geo.Point
	duration time.Duration
}

type recordingRenderer struct {
	commits  []commit
	canceled []string
}

func (r *recordingRenderer) Commit(vehicleID string, from, to geo.Point, duration time.Duration) {
	r.commits = append(r.commits, commit{id: vehicleID, from: from, to: to, duration: duration})
}

func (r *recordingRenderer) Cancel(vehicleID string) {
	r.canceled = append(r.canceled, vehicleID)
}
