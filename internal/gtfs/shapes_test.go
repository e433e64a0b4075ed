package gtfs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"livemap.onebusaway.org/gtfsdb"
	"livemap.onebusaway.org/internal/tracking"
)

func TestRouteShape(t *testing.T) {
	manager := newTestManager(t)

	tests := []struct {
		name      string
		routeID   string
		direction int
		wantShape string
		wantDir   int
		wantOK    bool
	}{
		{name: "northbound", routeID: "10", direction: 0, wantShape: "shape_north", wantDir: 0, wantOK: true},
		{name: "southbound", routeID: "10", direction: 1, wantShape: "shape_south", wantDir: 1, wantOK: true},
		{name: "unknown direction picks first", routeID: "10", direction: tracking.DirectionUnknown, wantShape: "shape_north", wantDir: 0, wantOK: true},
		{name: "no such direction", routeID: "10", direction: 7, wantOK: false},
		{name: "unknown route", routeID: "99", direction: 0, wantOK: false},
		{name: "empty route", routeID: "", direction: 0, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shape, ok := manager.RouteShape(tt.routeID, tt.direction)
			require.Equal(t, tt.wantOK, ok)
			if !ok {
				return
			}
			assert.Equal(t, tt.wantShape, shape.ShapeID)
			assert.Equal(t, tt.wantDir, shape.DirectionID)
			assert.Equal(t, tt.routeID, shape.RouteID)
			assert.GreaterOrEqual(t, len(shape.Points), 2)
		})
	}

	t.Run("cached after first load", func(t *testing.T) {
		_, _ = manager.RouteShape("10", 0)
		assert.True(t, manager.shapeCache.Has(shapeKey{routeID: "10", directionID: 0}))
	})

	t.Run("satisfies the tracking shape source", func(t *testing.T) {
		var source tracking.ShapeSource = manager
		_, ok := source.RouteShape("10", 1)
		assert.True(t, ok)
	})
}

func TestPickRouteShape(t *testing.T) {
	candidates := []gtfsdb.RouteShape{
		{RouteID: "r", DirectionID: 0, ShapeID: "a", TripCount: 9},
		{RouteID: "r", DirectionID: 0, ShapeID: "b", TripCount: 2},
		{RouteID: "r", DirectionID: 1, ShapeID: "c", TripCount: 4},
	}

	got, ok := pickRouteShape(candidates, 1)
	require.True(t, ok)
	assert.Equal(t, "c", got.ShapeID)

	got, ok = pickRouteShape(candidates, 0)
	require.True(t, ok)
	assert.Equal(t, "a", got.ShapeID)

	_, ok = pickRouteShape(nil, tracking.DirectionUnknown)
	assert.False(t, ok)
}
