package webui

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	gtfsfeed "github.com/jamespfennell/gtfs"
	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"livemap.onebusaway.org/internal/app"
	"livemap.onebusaway.org/internal/appconf"
	"livemap.onebusaway.org/internal/gtfs"
)

func newTestWebUI(t *testing.T) *WebUI {
	t.Helper()

	lat, lon := 35.0, 33.0
	agency := gtfsfeed.Agency{Id: "1", Name: "Test Transit", Timezone: "UTC"}
	route := gtfsfeed.Route{Id: "10", Agency: &agency, ShortName: "10"}
	static := &gtfsfeed.Static{
		Agencies: []gtfsfeed.Agency{agency},
		Routes:   []gtfsfeed.Route{route},
		Stops:    []gtfsfeed.Stop{{Id: "B", Name: "Center", Latitude: &lat, Longitude: &lon}},
		Trips:    []gtfsfeed.ScheduledTrip{{ID: "north_1", Route: &route}},
	}

	manager, err := gtfs.NewManager(context.Background(), gtfs.Config{Env: appconf.Test, GTFSDataPath: ":memory:"}, static)
	require.NoError(t, err)
	t.Cleanup(manager.Shutdown)

	cfg := appconf.Default()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	application := &app.Application{
		Config:      cfg,
		Logger:      logger,
		GtfsManager: manager,
		Sessions:    app.NewSessionRegistry(manager, app.TrackingConfig(cfg), logger),
	}
	t.Cleanup(application.Sessions.CloseAll)
	return New(application)
}

func TestDebugIndexHandler(t *testing.T) {
	webUI := newTestWebUI(t)
	webUI.GtfsManager.MockAddVehicle("bus_1", "north_1", "10", 35.0, 33.0, time.Now())
	session := webUI.Sessions.Create(nil)

	router := httprouter.New()
	webUI.SetWebUIRoutes(router)

	tests := []struct {
		dataType string
		title    string
		contains string
	}{
		{dataType: "", title: "Choose a data type", contains: "activeSessions"},
		{dataType: "agencies", title: "GTFS Static - Agencies", contains: "Test Transit"},
		{dataType: "stops", title: "GTFS Static - Stops", contains: "Center"},
		{dataType: "realtime_vehicles", title: "GTFS Realtime - Vehicles", contains: "bus_1"},
		{dataType: "snapshot", title: "Tracking - Latest Snapshot", contains: "bus_1"},
		{dataType: "sessions", title: "Tracking - Map Sessions", contains: session.ID()},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/debug/?dataType="+tt.dataType, nil))

			assert.Equal(t, http.StatusOK, rr.Code)
			assert.Equal(t, "text/html", rr.Header().Get("Content-Type"))
			body := rr.Body.String()
			assert.Contains(t, body, "<title>"+tt.title+"</title>")
			assert.Contains(t, body, tt.contains)
			assert.Contains(t, body, `href="?dataType=sessions"`)
		})
	}
}
