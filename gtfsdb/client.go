package gtfsdb

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jamespfennell/gtfs"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"livemap.onebusaway.org/internal/appconf"
	"livemap.onebusaway.org/internal/logging"
)

//go:embed schema.sql
var ddl string

// Client is the main entry point for the library
type Client struct {
	config        Config
	DB            *sql.DB
	Queries       *Queries
	importRuntime time.Duration
}

// NewClient creates a new Client with the provided configuration
func NewClient(config Config) (*Client, error) {
	db, err := createDB(config)
	if err != nil {
		return nil, err
	}

	return &Client{
		config:  config,
		DB:      db,
		Queries: New(db),
	}, nil
}

func (c *Client) Close() error {
	return c.DB.Close()
}

// ImportRuntime reports how long the last ImportStatic took.
func (c *Client) ImportRuntime() time.Duration {
	return c.importRuntime
}

func createDB(config Config) (*sql.DB, error) {
	if config.Env == appconf.Test && config.DBPath != ":memory:" {
		return nil, errors.New("test databases must be in memory, got " + config.DBPath)
	}

	db, err := sql.Open("sqlite", config.DBPath)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	// every connection to :memory: is a separate database
	if config.DBPath == ":memory:" {
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	if err := performDatabaseMigration(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("error performing database migration: %w", err)
	}

	return db, nil
}

func performDatabaseMigration(ctx context.Context, db *sql.DB) error {
	statements := strings.Split(ddl, "-- migrate") // Split DDL into individual statements
	for _, stmt := range statements {
		trimmedStmt := strings.TrimSpace(stmt)
		if trimmedStmt == "" {
			continue // Skip empty statements
		}
		if _, err := db.ExecContext(ctx, trimmedStmt); err != nil {
			return fmt.Errorf("error executing DDL statement [%s]: %w", trimmedStmt, err)
		}
	}
	return nil
}

// DirectionIndex maps a GTFS direction to 0 or 1, or -1 when unspecified.
func DirectionIndex(d gtfs.DirectionID) int64 {
	switch d {
	case gtfs.DirectionID_False:
		return 0
	case gtfs.DirectionID_True:
		return 1
	default:
		return -1
	}
}

// ImportStatic replaces the stop and shape index with the contents of staticData.
func (c *Client) ImportStatic(ctx context.Context, staticData *gtfs.Static) (err error) {
	startTime := time.Now()
	defer func() {
		c.importRuntime = time.Since(startTime)
		if c.config.verbose {
			logging.LogOperation(slog.Default(), "gtfsdb_import_complete",
				slog.Duration("duration", c.importRuntime),
				slog.Int("stops", len(staticData.Stops)),
				slog.Int("shapes", len(staticData.Shapes)))
		}
	}()

	tx, err := c.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer logging.SafeRollbackWithLogging(tx, slog.Default(), "gtfsdb_import")

	for _, table := range []string{"stops", "shape_points", "route_shapes"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("error clearing %s: %w", table, err)
		}
	}

	qtx := c.Queries.WithTx(tx)

	for _, s := range staticData.Stops {
		if s.Latitude == nil || s.Longitude == nil {
			continue
		}
		err := qtx.CreateStop(ctx, Stop{
			ID:   s.Id,
			Code: s.Code,
			Name: s.Name,
			Lat:  *s.Latitude,
			Lon:  *s.Longitude,
		})
		if err != nil {
			return fmt.Errorf("error inserting stop %s: %w", s.Id, err)
		}
	}

	for _, s := range staticData.Shapes {
		for idx, pt := range s.Points {
			err := qtx.CreateShapePoint(ctx, ShapePoint{
				ShapeID:  s.ID,
				Sequence: int64(idx),
				Lat:      pt.Latitude,
				Lon:      pt.Longitude,
			})
			if err != nil {
				return fmt.Errorf("error inserting shape %s: %w", s.ID, err)
			}
		}
	}

	for _, rs := range routeShapeCounts(staticData.Trips) {
		if err := qtx.CreateRouteShape(ctx, rs); err != nil {
			return fmt.Errorf("error inserting route shape %s/%s: %w", rs.RouteID, rs.ShapeID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("error committing transaction: %w", err)
	}
	return nil
}

func routeShapeCounts(trips []gtfs.ScheduledTrip) []RouteShape {
	type key struct {
		route     string
		direction int64
		shape     string
	}
	counts := map[key]int64{}
	var order []key
	for _, t := range trips {
		if t.Route == nil || t.Shape == nil {
			continue
		}
		k := key{route: t.Route.Id, direction: DirectionIndex(t.DirectionId), shape: t.Shape.ID}
		if _, ok := counts[k]; !ok {
			order = append(order, k)
		}
		counts[k]++
	}

	out := make([]RouteShape, 0, len(order))
	for _, k := range order {
		out = append(out, RouteShape{RouteID: k.route, DirectionID: k.direction, ShapeID: k.shape, TripCount: counts[k]})
	}
	return out
}
