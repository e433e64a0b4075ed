package restapi

import (
	"encoding/json"
	"net/http"

	"livemap.onebusaway.org/internal/logging"
	"livemap.onebusaway.org/internal/models"
)

func (api *RestAPI) sendResponse(w http.ResponseWriter, r *http.Request, response models.ResponseModel) {
	setJSONResponseType(w)
	err := json.NewEncoder(w).Encode(response)
	if err != nil {
		api.serverErrorResponse(w, r, err)
		return
	}
}

func (api *RestAPI) sendNotFound(w http.ResponseWriter, r *http.Request) {
	setJSONResponseType(w)
	w.WriteHeader(http.StatusNotFound)

	err := json.NewEncoder(w).Encode(models.NewResponse(http.StatusNotFound, nil, "resource not found"))
	if err != nil {
		logging.LogError(api.Logger, "failed to encode not found response", err)
	}
}

func setJSONResponseType(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
}
