// Package stops answers the companion-panel queries: which stops are near a
// point, and what is arriving soon at a stop.
package stops

import (
	"context"
	"errors"
	"math"
	"slices"
	"strings"

	"livemap.onebusaway.org/internal/geo"
)

// ErrUnknownStop is returned when a stop id is not in the stop source.
var ErrUnknownStop = errors.New("unknown stop")

type Stop struct {
	ID   string  `json:"id"`
	Code string  `json:"code,omitempty"`
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}

func (s Stop) Point() geo.Point {
	return geo.Point{Lat: s.Lat, Lon: s.Lon}
}

// StopDistance is a stop annotated with its distance from a reference point.
// Direction is the compass direction from the reference point to the stop.
type StopDistance struct {
	Stop           Stop    `json:"stop"`
	DistanceMeters float64 `json:"distanceMeters"`
	Direction      string  `json:"direction,omitempty"`
}

// Nearest returns the stops within radius meters of ref, nearest first, capped
// at limit. A limit <= 0 returns every stop inside the radius. Stops with
// invalid coordinates are ignored.
func Nearest(ref geo.Point, stops []Stop, radius float64, limit int) []StopDistance {
	results := make([]StopDistance, 0, len(stops))
	for _, s := range stops {
		if !geo.Valid(s.Lat, s.Lon) {
			continue
		}
		d := geo.Haversine(ref, s.Point())
		if d > radius || math.IsNaN(d) {
			continue
		}
		sd := StopDistance{Stop: s, DistanceMeters: d}
		if d > 0 {
			sd.Direction = geo.CompassDirection(ref, s.Point())
		}
		results = append(results, sd)
	}

	slices.SortStableFunc(results, func(a, b StopDistance) int {
		if a.DistanceMeters != b.DistanceMeters {
			if a.DistanceMeters < b.DistanceMeters {
				return -1
			}
			return 1
		}
		return strings.Compare(a.Stop.ID, b.Stop.ID)
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results
}

// StopSource supplies stop records. StopsWithin may return stops outside the
// box; Finder filters by exact distance afterwards.
type StopSource interface {
	StopsWithin(ctx context.Context, minLat, maxLat, minLon, maxLon float64) ([]Stop, error)
	Stop(ctx context.Context, id string) (Stop, error)
}

// SliceSource is an in-memory StopSource.
type SliceSource []Stop

func (s SliceSource) StopsWithin(_ context.Context, minLat, maxLat, minLon, maxLon float64) ([]Stop, error) {
	var out []Stop
	for _, stop := range s {
		if stop.Lat >= minLat && stop.Lat <= maxLat && stop.Lon >= minLon && stop.Lon <= maxLon {
			out = append(out, stop)
		}
	}
	return out, nil
}

func (s SliceSource) Stop(_ context.Context, id string) (Stop, error) {
	for _, stop := range s {
		if stop.ID == id {
			return stop, nil
		}
	}
	return Stop{}, ErrUnknownStop
}

// Finder answers nearest-stop queries against a StopSource, using the source's
// bounding-box query as a prefilter.
type Finder struct {
	source StopSource
}

func NewFinder(source StopSource) *Finder {
	return &Finder{source: source}
}

// Near returns up to limit stops within radius meters of ref, nearest first.
func (f *Finder) Near(ctx context.Context, ref geo.Point, radius float64, limit int) ([]StopDistance, error) {
	if !geo.Valid(ref.Lat, ref.Lon) {
		return nil, errors.New("invalid reference point")
	}
	if radius <= 0 {
		return []StopDistance{}, nil
	}

	minLat, maxLat, minLon, maxLon := geo.BoundingBox(ref, radius)
	var candidates []Stop
	for _, lons := range geo.LonRanges(minLon, maxLon) {
		found, err := f.source.StopsWithin(ctx, minLat, maxLat, lons.Min, lons.Max)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, found...)
	}
	return Nearest(ref, candidates, radius, limit), nil
}

// Stop looks up a single stop by id.
func (f *Finder) Stop(ctx context.Context, id string) (Stop, error) {
	return f.source.Stop(ctx, id)
}
