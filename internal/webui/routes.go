// Package webui serves a development page that dumps the loaded feeds and the
// live map sessions.
package webui

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"livemap.onebusaway.org/internal/app"
)

type WebUI struct {
	*app.Application
}

func New(application *app.Application) *WebUI {
	return &WebUI{Application: application}
}

func (webUI *WebUI) SetWebUIRoutes(router *httprouter.Router) {
	router.HandlerFunc(http.MethodGet, "/debug/", webUI.debugIndexHandler)
}
