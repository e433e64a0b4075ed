package stops

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"livemap.onebusaway.org/gtfsdb"
)

// DBSource reads stops from the sqlite stop index.
type DBSource struct {
	queries *gtfsdb.Queries
}

func NewDBSource(queries *gtfsdb.Queries) *DBSource {
	return &DBSource{queries: queries}
}

func (s *DBSource) StopsWithin(ctx context.Context, minLat, maxLat, minLon, maxLon float64) ([]Stop, error) {
	rows, err := s.queries.GetStopsWithinBounds(ctx, gtfsdb.GetStopsWithinBoundsParams{
		Lat:   minLat,
		Lat_2: maxLat,
		Lon:   minLon,
		Lon_2: maxLon,
	})
	if err != nil {
		return nil, fmt.Errorf("querying stops within bounds: %w", err)
	}

	out := make([]Stop, 0, len(rows))
	for _, row := range rows {
		out = append(out, fromRow(row))
	}
	return out, nil
}

func (s *DBSource) Stop(ctx context.Context, id string) (Stop, error) {
	row, err := s.queries.GetStop(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return Stop{}, ErrUnknownStop
	}
	if err != nil {
		return Stop{}, fmt.Errorf("querying stop %s: %w", id, err)
	}
	return fromRow(row), nil
}

func fromRow(row gtfsdb.Stop) Stop {
	return Stop{ID: row.ID, Code: row.Code, Name: row.Name, Lat: row.Lat, Lon: row.Lon}
}
