package restapi

import (
	"net/http"

	"livemap.onebusaway.org/internal/models"
)

func (api *RestAPI) currentTimeHandler(w http.ResponseWriter, r *http.Request) {
	entry := models.NewCurrentTime(api.now())
	api.sendResponse(w, r, models.NewEntryResponse(entry, models.NewEmptyReferences()))
}
