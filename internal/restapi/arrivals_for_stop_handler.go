package restapi

import (
	"errors"
	"net/http"

	"livemap.onebusaway.org/internal/models"
	"livemap.onebusaway.org/internal/stops"
	"livemap.onebusaway.org/internal/utils"
)

// arrivalsForStopHandler lists the next arrivals at a stop, soonest first.
func (api *RestAPI) arrivalsForStopHandler(w http.ResponseWriter, r *http.Request) {
	limit, hasLimit, fieldErrors := utils.ParseIntParam(r.URL.Query(), "maxCount", nil)
	if len(fieldErrors) > 0 {
		api.validationErrorResponse(w, r, fieldErrors)
		return
	}
	if !hasLimit || limit <= 0 {
		limit = stops.DefaultArrivalLimit
	}

	stopID, ok := api.pathID(w, r, "id")
	if !ok {
		return
	}

	ctx := r.Context()
	now := api.now()

	arrivals, err := api.GtfsManager.NextArrivals(ctx, stopID, now, limit)
	if errors.Is(err, stops.ErrUnknownStop) {
		api.sendNotFound(w, r)
		return
	}
	if err != nil {
		api.serverErrorResponse(w, r, err)
		return
	}

	nowMillis := now.UnixMilli()
	entries := make([]models.ArrivalEntry, 0, len(arrivals))
	routeIDs := make([]string, 0, len(arrivals))
	for _, a := range arrivals {
		entries = append(entries, models.NewArrivalEntry(a, nowMillis))
		routeIDs = append(routeIDs, a.RouteID)
	}

	references := api.routeReferences(routeIDs)
	if stop, err := api.GtfsManager.Stops().Stop(ctx, stopID); err == nil {
		references.Stops = append(references.Stops, models.NewStopEntry(stops.StopDistance{Stop: stop}))
	}

	api.sendResponse(w, r, models.NewListResponse(entries, references))
}
