package gtfsdb

// Stop is a row of the stops table.
type Stop struct {
	ID   string  // stop_id
	Code string  // stop_code
	Name string  // stop_name
	Lat  float64 // stop_lat
	Lon  float64 // stop_lon
}

// ShapePoint is one vertex of a shape.
type ShapePoint struct {
	ShapeID  string  // shape_id
	Sequence int64   // shape_pt_sequence
	Lat      float64 // lat
	Lon      float64 // lon
}

// RouteShape links a route direction to a shape used by its trips.
type RouteShape struct {
	RouteID     string // route_id
	DirectionID int64  // direction_id
	ShapeID     string // shape_id
	TripCount   int64  // trip_count
}
