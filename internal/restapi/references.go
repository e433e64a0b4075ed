package restapi

import (
	"livemap.onebusaway.org/internal/models"
)

// routeReferences builds the route and agency references for the given route
// ids. Unknown and repeated ids are skipped.
func (api *RestAPI) routeReferences(routeIDs []string) models.ReferencesModel {
	references := models.NewEmptyReferences()
	if api.GtfsManager == nil {
		return references
	}

	seenRoutes := make(map[string]bool)
	seenAgencies := make(map[string]bool)
	for _, id := range routeIDs {
		if id == "" || seenRoutes[id] {
			continue
		}
		seenRoutes[id] = true

		route, ok := api.GtfsManager.FindRoute(id)
		if !ok {
			continue
		}
		references.Routes = append(references.Routes, models.NewRouteReference(route))

		if route.Agency != nil && !seenAgencies[route.Agency.Id] {
			seenAgencies[route.Agency.Id] = true
			references.Agencies = append(references.Agencies, models.NewAgencyReference(*route.Agency))
		}
	}
	return references
}
