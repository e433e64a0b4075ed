package gtfsdb

import (
	"context"
)

const createStop = `
INSERT OR REPLACE INTO stops (stop_id, stop_code, stop_name, stop_lat, stop_lon)
VALUES (?, ?, ?, ?, ?)
`

func (q *Queries) CreateStop(ctx context.Context, arg Stop) error {
	_, err := q.db.ExecContext(ctx, createStop, arg.ID, arg.Code, arg.Name, arg.Lat, arg.Lon)
	return err
}

const createShapePoint = `
INSERT OR REPLACE INTO shape_points (shape_id, shape_pt_sequence, lat, lon)
VALUES (?, ?, ?, ?)
`

func (q *Queries) CreateShapePoint(ctx context.Context, arg ShapePoint) error {
	_, err := q.db.ExecContext(ctx, createShapePoint, arg.ShapeID, arg.Sequence, arg.Lat, arg.Lon)
	return err
}

const createRouteShape = `
INSERT INTO route_shapes (route_id, direction_id, shape_id, trip_count)
VALUES (?, ?, ?, ?)
ON CONFLICT (route_id, direction_id, shape_id) DO UPDATE SET trip_count = excluded.trip_count
`

func (q *Queries) CreateRouteShape(ctx context.Context, arg RouteShape) error {
	_, err := q.db.ExecContext(ctx, createRouteShape, arg.RouteID, arg.DirectionID, arg.ShapeID, arg.TripCount)
	return err
}

const getStop = `
SELECT stop_id, stop_code, stop_name, stop_lat, stop_lon FROM stops WHERE stop_id = ?
`

func (q *Queries) GetStop(ctx context.Context, id string) (Stop, error) {
	row := q.db.QueryRowContext(ctx, getStop, id)
	var i Stop
	err := row.Scan(&i.ID, &i.Code, &i.Name, &i.Lat, &i.Lon)
	return i, err
}

const countStops = `SELECT COUNT(*) FROM stops`

func (q *Queries) CountStops(ctx context.Context) (int64, error) {
	row := q.db.QueryRowContext(ctx, countStops)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const getStopsWithinBounds = `
SELECT stop_id, stop_code, stop_name, stop_lat, stop_lon
FROM stops
WHERE stop_lat >= ? AND stop_lat <= ? AND stop_lon >= ? AND stop_lon <= ?
ORDER BY stop_id
`

type GetStopsWithinBoundsParams struct {
	Lat   float64
	Lat_2 float64
	Lon   float64
	Lon_2 float64
}

func (q *Queries) GetStopsWithinBounds(ctx context.Context, arg GetStopsWithinBoundsParams) ([]Stop, error) {
	rows, err := q.db.QueryContext(ctx, getStopsWithinBounds, arg.Lat, arg.Lat_2, arg.Lon, arg.Lon_2)
	if err != nil {
		return nil, err
	}
	defer rows.Close() // nolint:errcheck
	var items []Stop
	for rows.Next() {
		var i Stop
		if err := rows.Scan(&i.ID, &i.Code, &i.Name, &i.Lat, &i.Lon); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getShapePoints = `
SELECT shape_id, shape_pt_sequence, lat, lon
FROM shape_points
WHERE shape_id = ?
ORDER BY shape_pt_sequence
`

func (q *Queries) GetShapePoints(ctx context.Context, shapeID string) ([]ShapePoint, error) {
	rows, err := q.db.QueryContext(ctx, getShapePoints, shapeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close() // nolint:errcheck
	var items []ShapePoint
	for rows.Next() {
		var i ShapePoint
		if err := rows.Scan(&i.ShapeID, &i.Sequence, &i.Lat, &i.Lon); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getRouteShapes = `
SELECT route_id, direction_id, shape_id, trip_count
FROM route_shapes
WHERE route_id = ?
ORDER BY direction_id, trip_count DESC, shape_id
`

// GetRouteShapes lists the shapes of a route, most used first within each direction.
func (q *Queries) GetRouteShapes(ctx context.Context, routeID string) ([]RouteShape, error) {
	rows, err := q.db.QueryContext(ctx, getRouteShapes, routeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close() // nolint:errcheck
	var items []RouteShape
	for rows.Next() {
		var i RouteShape
		if err := rows.Scan(&i.RouteID, &i.DirectionID, &i.ShapeID, &i.TripCount); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
