package restapi

import (
	"net/http"

	"livemap.onebusaway.org/internal/geo"
	"livemap.onebusaway.org/internal/models"
	"livemap.onebusaway.org/internal/utils"
)

const (
	defaultStopSearchRadius = 500
	defaultMaxStops         = 100
)

func (api *RestAPI) stopsForLocationHandler(w http.ResponseWriter, r *http.Request) {
	queryParams := r.URL.Query()

	lat, fieldErrors := utils.ParseFloatParam(queryParams, "lat", nil)
	lon, _ := utils.ParseFloatParam(queryParams, "lon", fieldErrors)
	radius, _ := utils.ParseFloatParam(queryParams, "radius", fieldErrors)
	maxCount, hasMaxCount, _ := utils.ParseIntParam(queryParams, "maxCount", fieldErrors)

	for _, key := range []string{"lat", "lon"} {
		if queryParams.Get(key) == "" {
			fieldErrors[key] = append(fieldErrors[key], "required")
		}
	}
	if len(fieldErrors) > 0 {
		api.validationErrorResponse(w, r, fieldErrors)
		return
	}

	if locationErrors := utils.ValidateLocationParams(lat, lon, radius); len(locationErrors) > 0 {
		api.validationErrorResponse(w, r, locationErrors)
		return
	}

	if radius == 0 {
		radius = defaultStopSearchRadius
	}
	if !hasMaxCount || maxCount <= 0 {
		maxCount = defaultMaxStops
	}

	ctx := r.Context()
	if ctx.Err() != nil {
		api.serverErrorResponse(w, r, ctx.Err())
		return
	}

	nearby, err := api.GtfsManager.Stops().Near(ctx, geo.Point{Lat: lat, Lon: lon}, radius, maxCount)
	if err != nil {
		api.serverErrorResponse(w, r, err)
		return
	}

	results := make([]models.StopEntry, 0, len(nearby))
	for _, sd := range nearby {
		results = append(results, models.NewStopEntry(sd))
	}

	api.sendResponse(w, r, models.NewListResponse(results, models.NewEmptyReferences()))
}
