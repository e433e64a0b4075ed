package restapi

import (
	"net/http"

	"livemap.onebusaway.org/internal/models"
)

func (api *RestAPI) trailForSessionHandler(w http.ResponseWriter, r *http.Request) {
	session, ok := api.sessionFromRequest(w, r)
	if !ok {
		return
	}

	entry := models.TrailEntry{
		Trail:   session.Trail(),
		GeoJSON: session.TrailGeoJSON(),
	}
	api.sendResponse(w, r, models.NewEntryResponse(entry, models.NewEmptyReferences()))
}
