package restapi

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-polyline"
)

func TestShapeHandler(t *testing.T) {
	api := createTestApi(t)

	tests := []struct {
		name      string
		query     string
		shapeID   string
		direction float64
		points    int
	}{
		{name: "northbound", query: "direction=0", shapeID: "shape_north", direction: 0, points: 3},
		{name: "southbound", query: "direction=1", shapeID: "shape_south", direction: 1, points: 2},
		{name: "first direction by default", query: "", shapeID: "shape_north", direction: 0, points: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, model := getEndpoint(t, api, "/api/where/shape/10?"+tt.query+"&key="+testKey)
			require.Equal(t, http.StatusOK, resp.StatusCode)

			entry := entryOf(t, model)
			assert.Equal(t, "10", entry["routeId"])
			assert.Equal(t, tt.shapeID, entry["shapeId"])
			assert.Equal(t, tt.direction, entry["directionId"])
			assert.Equal(t, float64(tt.points), entry["length"])

			coords, rest, err := polyline.DecodeCoords([]byte(entry["points"].(string)))
			require.NoError(t, err)
			assert.Empty(t, rest)
			require.Len(t, coords, tt.points)
			assert.InDelta(t, 33.0, coords[0][1], 1e-5)
		})
	}
}

func TestShapeHandlerErrors(t *testing.T) {
	api := createTestApi(t)

	resp, _ := getEndpoint(t, api, "/api/where/shape/99?key="+testKey)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = getEndpoint(t, api, "/api/where/shape/10?direction=2&key="+testKey)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = getEndpoint(t, api, "/api/where/shape/10?direction=up&key="+testKey)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
