package restapi

import (
	"net/http"

	"livemap.onebusaway.org/internal/models"
	"livemap.onebusaway.org/internal/utils"
)

// vehiclesForSessionHandler returns every rendered vehicle with its marker
// position at request time. Clusters are computed only when a zoom is given.
func (api *RestAPI) vehiclesForSessionHandler(w http.ResponseWriter, r *http.Request) {
	zoom, hasZoom, fieldErrors := utils.ParseIntParam(r.URL.Query(), "zoom", nil)
	if hasZoom {
		if err := utils.ValidateZoom(zoom); err != nil {
			fieldErrors["zoom"] = append(fieldErrors["zoom"], err.Error())
		}
	}
	if len(fieldErrors) > 0 {
		api.validationErrorResponse(w, r, fieldErrors)
		return
	}

	session, ok := api.sessionFromRequest(w, r)
	if !ok {
		return
	}

	vehicles := session.Vehicles(api.now())
	routeIDs := make([]string, 0, len(vehicles))
	for _, v := range vehicles {
		routeIDs = append(routeIDs, v.RouteID)
	}

	clusters := []models.ClusterEntry{}
	if hasZoom {
		for _, c := range session.Clusters(zoom) {
			clusters = append(clusters, models.NewClusterEntry(c))
		}
	}

	entry := models.VehiclesEntry{
		SessionID: session.ID(),
		Zoom:      zoom,
		Vehicles:  vehicles,
		Clusters:  clusters,
	}
	api.sendResponse(w, r, models.NewEntryResponse(entry, api.routeReferences(routeIDs)))
}
