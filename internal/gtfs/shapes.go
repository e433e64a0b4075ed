package gtfs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"livemap.onebusaway.org/gtfsdb"
	"livemap.onebusaway.org/internal/geo"
	"livemap.onebusaway.org/internal/logging"
	"livemap.onebusaway.org/internal/tracking"
)

type shapeKey struct {
	routeID     string
	directionID int
}

// RouteShape returns the most used shape for a route direction, loading it
// into the LRU cache on first use. A DirectionUnknown request is answered
// with the route's first direction. Shapes with fewer than two points are
// reported as missing.
func (manager *Manager) RouteShape(routeID string, directionID int) (tracking.RouteShape, bool) {
	if routeID == "" {
		return tracking.RouteShape{}, false
	}

	value, err := manager.shapeCache.Get(shapeKey{routeID: routeID, directionID: directionID})
	if err != nil {
		logging.LogError(manager.logger, "route shape lookup failed", err,
			slog.String("route_id", routeID),
			slog.Int("direction_id", directionID))
		return tracking.RouteShape{}, false
	}

	shape := value.(tracking.RouteShape)
	if len(shape.Points) < 2 {
		return tracking.RouteShape{}, false
	}
	return shape, true
}

// loadRouteShape is the shape cache loader. A route without a matching shape
// yields an empty RouteShape so the miss is cached too.
func (manager *Manager) loadRouteShape(key interface{}) (interface{}, error) {
	k, ok := key.(shapeKey)
	if !ok {
		return nil, errors.New("invalid shape cache key")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	candidates, err := manager.GtfsDB.Queries.GetRouteShapes(ctx, k.routeID)
	if err != nil {
		return nil, fmt.Errorf("querying shapes for route %s: %w", k.routeID, err)
	}

	shape := tracking.RouteShape{RouteID: k.routeID, DirectionID: k.directionID}
	chosen, found := pickRouteShape(candidates, k.directionID)
	if !found {
		return shape, nil
	}

	points, err := manager.GtfsDB.Queries.GetShapePoints(ctx, chosen.ShapeID)
	if err != nil {
		return nil, fmt.Errorf("querying points for shape %s: %w", chosen.ShapeID, err)
	}

	shape.ShapeID = chosen.ShapeID
	shape.DirectionID = int(chosen.DirectionID)
	shape.Points = make([]geo.Point, 0, len(points))
	for _, p := range points {
		shape.Points = append(shape.Points, geo.Point{Lat: p.Lat, Lon: p.Lon})
	}
	return shape, nil
}

// pickRouteShape expects candidates ordered by direction, then by trip count
// descending, which is how GetRouteShapes returns them.
func pickRouteShape(candidates []gtfsdb.RouteShape, directionID int) (gtfsdb.RouteShape, bool) {
	for _, c := range candidates {
		if directionID == tracking.DirectionUnknown || int(c.DirectionID) == directionID {
			return c, true
		}
	}
	return gtfsdb.RouteShape{}, false
}
