package restapi

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"livemap.onebusaway.org/internal/appconf"
	"livemap.onebusaway.org/internal/webui"
)

type handlerFunc func(w http.ResponseWriter, r *http.Request)

func validateAPIKey(api *RestAPI, finalHandler handlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if api.RequestHasInvalidAPIKey(r) {
			api.invalidAPIKeyResponse(w, r)
			return
		}
		finalHandler(w, r)
	})
}

func (api *RestAPI) SetRoutes(router *httprouter.Router) {
	router.Handler(http.MethodGet, "/api/where/current-time.json", validateAPIKey(api, api.currentTimeHandler))

	router.Handler(http.MethodPost, "/api/where/session.json", validateAPIKey(api, api.createSessionHandler))
	router.Handler(http.MethodGet, "/api/where/session/:id", validateAPIKey(api, api.sessionHandler))
	router.Handler(http.MethodDelete, "/api/where/session/:id", validateAPIKey(api, api.deleteSessionHandler))
	router.Handler(http.MethodPost, "/api/where/session/:id/follow/:vehicle", validateAPIKey(api, api.followVehicleHandler))
	router.Handler(http.MethodDelete, "/api/where/session/:id/follow", validateAPIKey(api, api.unfollowVehicleHandler))
	router.Handler(http.MethodPost, "/api/where/session/:id/route/:route", validateAPIKey(api, api.selectRouteHandler))
	router.Handler(http.MethodDelete, "/api/where/session/:id/route", validateAPIKey(api, api.clearRouteHandler))

	router.Handler(http.MethodGet, "/api/where/vehicles-for-session/:id", validateAPIKey(api, api.vehiclesForSessionHandler))
	router.Handler(http.MethodGet, "/api/where/trail-for-session/:id", validateAPIKey(api, api.trailForSessionHandler))

	router.Handler(http.MethodGet, "/api/where/stops-for-location.json", validateAPIKey(api, api.stopsForLocationHandler))
	router.Handler(http.MethodGet, "/api/where/arrivals-for-stop/:id", validateAPIKey(api, api.arrivalsForStopHandler))
	router.Handler(http.MethodGet, "/api/where/shape/:route", validateAPIKey(api, api.shapeHandler))
}

// Routes builds a router with every endpoint registered. The debug pages are
// only mounted in development.
func (api *RestAPI) Routes() *httprouter.Router {
	router := httprouter.New()
	router.NotFound = http.HandlerFunc(api.sendNotFound)
	api.SetRoutes(router)
	if api.Config.Env == appconf.Development {
		webui.New(api.Application).SetWebUIRoutes(router)
	}
	return router
}
