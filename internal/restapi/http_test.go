package restapi

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	gtfsfeed "github.com/jamespfennell/gtfs"
	"github.com/stretchr/testify/require"

	"livemap.onebusaway.org/internal/app"
	"livemap.onebusaway.org/internal/appconf"
	"livemap.onebusaway.org/internal/gtfs"
	"livemap.onebusaway.org/internal/logging"
	"livemap.onebusaway.org/internal/models"
)

const testKey = "TEST"

var testNow = time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)

func floatPtr(f float64) *float64 {
	return &f
}

// testStatic is route 10 running north along lon 33 and back south, with
// stops at either end and one in the middle.
func testStatic() *gtfsfeed.Static {
	agency := gtfsfeed.Agency{Id: "1", Name: "Test Transit", Url: "https://example.com", Timezone: "UTC"}
	route := gtfsfeed.Route{Id: "10", Agency: &agency, ShortName: "10", LongName: "Main Street"}
	north := gtfsfeed.Shape{ID: "shape_north", Points: []gtfsfeed.ShapePoint{
		{Latitude: 34.99, Longitude: 33.0},
		{Latitude: 35.00, Longitude: 33.0},
		{Latitude: 35.01, Longitude: 33.0},
	}}
	south := gtfsfeed.Shape{ID: "shape_south", Points: []gtfsfeed.ShapePoint{
		{Latitude: 35.01, Longitude: 33.0},
		{Latitude: 34.99, Longitude: 33.0},
	}}
	stopA := gtfsfeed.Stop{Id: "A", Code: "100", Name: "South Terminal", Latitude: floatPtr(34.99), Longitude: floatPtr(33.0)}
	stopB := gtfsfeed.Stop{Id: "B", Code: "200", Name: "Center", Latitude: floatPtr(35.00), Longitude: floatPtr(33.0)}
	stopC := gtfsfeed.Stop{Id: "C", Code: "300", Name: "North Terminal", Latitude: floatPtr(35.01), Longitude: floatPtr(33.0)}

	return &gtfsfeed.Static{
		Agencies: []gtfsfeed.Agency{agency},
		Routes:   []gtfsfeed.Route{route},
		Stops:    []gtfsfeed.Stop{stopA, stopB, stopC},
		Shapes:   []gtfsfeed.Shape{north, south},
		Trips: []gtfsfeed.ScheduledTrip{
			{ID: "north_1", Route: &route, DirectionId: gtfsfeed.DirectionID_False, Shape: &north},
			{ID: "south_1", Route: &route, DirectionId: gtfsfeed.DirectionID_True, Shape: &south},
		},
	}
}

// createTestApi creates a RestAPI backed by an in-memory GTFS manager.
func createTestApi(t *testing.T) *RestAPI {
	t.Helper()

	gtfsConfig := gtfs.Config{Env: appconf.Test, GTFSDataPath: ":memory:"}
	manager, err := gtfs.NewManager(context.Background(), gtfsConfig, testStatic())
	require.NoError(t, err)

	cfg := appconf.Default()
	cfg.Env = appconf.Test
	cfg.ApiKeys = []string{testKey}
	cfg.RateLimit = 0

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	application := &app.Application{
		Config:      cfg,
		GtfsConfig:  gtfsConfig,
		Logger:      logger,
		GtfsManager: manager,
		Sessions:    app.NewSessionRegistry(manager, app.TrackingConfig(cfg), logger),
	}

	api := NewRestAPI(application)
	api.now = func() time.Time { return testNow }

	t.Cleanup(func() {
		api.Shutdown()
		application.Sessions.CloseAll()
		manager.Shutdown()
	})
	return api
}

// serveApiAndRetrieveEndpoint sends one request through the full handler
// chain and decodes the response envelope.
func serveApiAndRetrieveEndpoint(t *testing.T, api *RestAPI, method, endpoint string) (*http.Response, models.ResponseModel) {
	t.Helper()

	server := httptest.NewServer(api.Handler())
	defer server.Close()

	req, err := http.NewRequest(method, server.URL+endpoint, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer logging.SafeCloseWithLogging(resp.Body,
		slog.Default().With(slog.String("component", "test")),
		"http_response_body")

	var response models.ResponseModel
	err = json.NewDecoder(resp.Body).Decode(&response)
	require.NoError(t, err)

	return resp, response
}

func getEndpoint(t *testing.T, api *RestAPI, endpoint string) (*http.Response, models.ResponseModel) {
	return serveApiAndRetrieveEndpoint(t, api, http.MethodGet, endpoint)
}

func entryOf(t *testing.T, model models.ResponseModel) map[string]interface{} {
	t.Helper()
	data, ok := model.Data.(map[string]interface{})
	require.True(t, ok, "response data should be an object")
	entry, ok := data["entry"].(map[string]interface{})
	require.True(t, ok, "response should carry an entry")
	return entry
}

func listOf(t *testing.T, model models.ResponseModel) []interface{} {
	t.Helper()
	data, ok := model.Data.(map[string]interface{})
	require.True(t, ok, "response data should be an object")
	list, ok := data["list"].([]interface{})
	require.True(t, ok, "response should carry a list")
	return list
}

func referencesOf(t *testing.T, model models.ResponseModel) map[string]interface{} {
	t.Helper()
	data, ok := model.Data.(map[string]interface{})
	require.True(t, ok)
	refs, ok := data["references"].(map[string]interface{})
	require.True(t, ok)
	return refs
}

// createSession opens a session through the API and returns its id.
func createSession(t *testing.T, api *RestAPI) string {
	t.Helper()
	resp, model := serveApiAndRetrieveEndpoint(t, api, http.MethodPost, "/api/where/session.json?key="+testKey)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	id, ok := entryOf(t, model)["id"].(string)
	require.True(t, ok)
	require.NotEmpty(t, id)
	return id
}
