package webui

import (
	"embed"
	"html/template"
	"net/http"
	"time"

	"github.com/davecgh/go-spew/spew"

	"livemap.onebusaway.org/internal/models"
)

//go:embed debug_index.html
var templateFS embed.FS

var debugTemplate = template.Must(template.ParseFS(templateFS, "debug_index.html"))

var dataTypes = []string{
	"warnings", "agencies", "routes", "stops", "trips", "shapes",
	"realtime_trips", "realtime_vehicles", "snapshot", "sessions",
}

type debugData struct {
	Title     string
	Pre       string
	DataTypes []string
}

func writeDebugData(w http.ResponseWriter, title string, data interface{}) {
	w.Header().Set("Content-Type", "text/html")

	err := debugTemplate.Execute(w, debugData{
		Title:     title,
		Pre:       spew.Sdump(data),
		DataTypes: dataTypes,
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (webUI *WebUI) debugIndexHandler(w http.ResponseWriter, r *http.Request) {
	dataType := r.URL.Query().Get("dataType")

	var data interface{}
	var title string

	manager := webUI.GtfsManager
	staticData := manager.GetStaticData()

	switch dataType {
	case "warnings":
		data = staticData.Warnings
		title = "GTFS Static - Parse Warnings"
	case "agencies":
		data = staticData.Agencies
		title = "GTFS Static - Agencies"
	case "routes":
		data = staticData.Routes
		title = "GTFS Static - Routes"
	case "stops":
		data = staticData.Stops
		title = "GTFS Static - Stops"
	case "trips":
		data = staticData.Trips
		title = "GTFS Static - Trips"
	case "shapes":
		data = staticData.Shapes
		title = "GTFS Static - Shapes"
	case "realtime_trips":
		data = manager.GetRealTimeTrips()
		title = "GTFS Realtime - Trips"
	case "realtime_vehicles":
		data = manager.GetRealTimeVehicles()
		title = "GTFS Realtime - Vehicles"
	case "snapshot":
		data = manager.Snapshot()
		title = "Tracking - Latest Snapshot"
	case "sessions":
		data = webUI.sessions()
		title = "Tracking - Map Sessions"
	default:
		data = map[string]interface{}{
			"dataTypes":       dataTypes,
			"lastStaticLoad":  manager.LastUpdated().Format(time.RFC3339),
			"lastRealtime":    manager.RealTimeUpdated().Format(time.RFC3339),
			"activeSessions":  webUI.Sessions.Len(),
			"realtimeEnabled": webUI.Config.Gtfs.RealTimeEnabled(),
		}
		title = "Choose a data type"
	}

	writeDebugData(w, title, data)
}

// sessions lists the live sessions. Reading render state would count as
// viewer activity, so only the session entries are shown.
func (webUI *WebUI) sessions() []models.SessionEntry {
	ids := webUI.Sessions.IDs()
	out := make([]models.SessionEntry, 0, len(ids))
	for _, id := range ids {
		s, err := webUI.Sessions.Get(id)
		if err != nil {
			continue
		}
		out = append(out, models.NewSessionEntry(s))
	}
	return out
}
