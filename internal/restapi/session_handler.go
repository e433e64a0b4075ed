package restapi

import (
	"errors"
	"net/http"

	"livemap.onebusaway.org/internal/app"
	"livemap.onebusaway.org/internal/models"
	"livemap.onebusaway.org/internal/tracking"
	"livemap.onebusaway.org/internal/utils"
)

// pathID extracts and validates a path parameter. It writes the validation
// error itself and reports false when the id is unusable.
func (api *RestAPI) pathID(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	id := utils.PathParam(r, name)
	if err := utils.ValidateID(id); err != nil {
		api.validationErrorResponse(w, r, map[string][]string{name: {err.Error()}})
		return "", false
	}
	return id, true
}

// sessionFromRequest resolves the :id path parameter to a live session.
func (api *RestAPI) sessionFromRequest(w http.ResponseWriter, r *http.Request) (*tracking.Session, bool) {
	id, ok := api.pathID(w, r, "id")
	if !ok {
		return nil, false
	}

	session, err := api.Sessions.Get(id)
	if errors.Is(err, app.ErrSessionNotFound) {
		api.sendNotFound(w, r)
		return nil, false
	}
	if err != nil {
		api.serverErrorResponse(w, r, err)
		return nil, false
	}
	return session, true
}

func (api *RestAPI) sendSession(w http.ResponseWriter, r *http.Request, session *tracking.Session) {
	references := models.NewEmptyReferences()
	if routeID := session.SelectedRouteID(); routeID != "" {
		references = api.routeReferences([]string{routeID})
	}
	api.sendResponse(w, r, models.NewEntryResponse(models.NewSessionEntry(session), references))
}

// createSessionHandler opens a map session seeded with the latest vehicle positions.
func (api *RestAPI) createSessionHandler(w http.ResponseWriter, r *http.Request) {
	var initial *tracking.Snapshot
	if api.GtfsManager != nil && !api.GtfsManager.RealTimeUpdated().IsZero() {
		snapshot := api.GtfsManager.Snapshot()
		initial = &snapshot
	}

	session := api.Sessions.Create(initial)
	api.sendSession(w, r, session)
}

func (api *RestAPI) sessionHandler(w http.ResponseWriter, r *http.Request) {
	session, ok := api.sessionFromRequest(w, r)
	if !ok {
		return
	}
	api.sendSession(w, r, session)
}

func (api *RestAPI) deleteSessionHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := api.pathID(w, r, "id")
	if !ok {
		return
	}

	if err := api.Sessions.Delete(id); err != nil {
		if errors.Is(err, app.ErrSessionNotFound) {
			api.sendNotFound(w, r)
			return
		}
		api.serverErrorResponse(w, r, err)
		return
	}

	api.sendResponse(w, r, models.NewOKResponse(nil))
}

// followVehicleHandler makes the vehicle the session's followed vehicle. Only
// vehicles the session is currently rendering can be followed.
func (api *RestAPI) followVehicleHandler(w http.ResponseWriter, r *http.Request) {
	session, ok := api.sessionFromRequest(w, r)
	if !ok {
		return
	}
	vehicleID, ok := api.pathID(w, r, "vehicle")
	if !ok {
		return
	}

	if _, found := session.Vehicle(vehicleID); !found {
		api.sendNotFound(w, r)
		return
	}

	session.Follow(vehicleID)
	api.sendSession(w, r, session)
}

func (api *RestAPI) unfollowVehicleHandler(w http.ResponseWriter, r *http.Request) {
	session, ok := api.sessionFromRequest(w, r)
	if !ok {
		return
	}
	session.Unfollow()
	api.sendSession(w, r, session)
}

// selectRouteHandler highlights a route in the session.
func (api *RestAPI) selectRouteHandler(w http.ResponseWriter, r *http.Request) {
	session, ok := api.sessionFromRequest(w, r)
	if !ok {
		return
	}
	routeID, ok := api.pathID(w, r, "route")
	if !ok {
		return
	}

	if _, found := api.GtfsManager.FindRoute(routeID); !found {
		api.sendNotFound(w, r)
		return
	}

	session.SelectRoute(routeID)
	api.sendSession(w, r, session)
}

func (api *RestAPI) clearRouteHandler(w http.ResponseWriter, r *http.Request) {
	session, ok := api.sessionFromRequest(w, r)
	if !ok {
		return
	}
	session.SelectRoute("")
	api.sendSession(w, r, session)
}
