package restapi

import (
	"net/http"

	"github.com/twpayne/go-polyline"

	"livemap.onebusaway.org/internal/models"
	"livemap.onebusaway.org/internal/tracking"
	"livemap.onebusaway.org/internal/utils"
)

// shapeHandler returns the encoded polyline a route is drawn with. Without a
// direction parameter the route's first direction is used.
func (api *RestAPI) shapeHandler(w http.ResponseWriter, r *http.Request) {
	direction, hasDirection, fieldErrors := utils.ParseIntParam(r.URL.Query(), "direction", nil)
	if hasDirection && direction != 0 && direction != 1 {
		fieldErrors["direction"] = append(fieldErrors["direction"], "direction must be 0 or 1")
	}
	if len(fieldErrors) > 0 {
		api.validationErrorResponse(w, r, fieldErrors)
		return
	}
	if !hasDirection {
		direction = tracking.DirectionUnknown
	}

	routeID, ok := api.pathID(w, r, "route")
	if !ok {
		return
	}

	if _, found := api.GtfsManager.FindRoute(routeID); !found {
		api.sendNotFound(w, r)
		return
	}

	shape, found := api.GtfsManager.RouteShape(routeID, direction)
	if !found {
		api.sendNotFound(w, r)
		return
	}

	coords := make([][]float64, len(shape.Points))
	for i, p := range shape.Points {
		coords[i] = []float64{p.Lat, p.Lon}
	}

	entry := models.ShapeEntry{
		RouteID:     shape.RouteID,
		DirectionID: shape.DirectionID,
		ShapeID:     shape.ShapeID,
		Points:      string(polyline.EncodeCoords(coords)),
		Length:      len(coords),
	}
	api.sendResponse(w, r, models.NewEntryResponse(entry, api.routeReferences([]string{routeID})))
}
