package gtfs

import (
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jamespfennell/gtfs"
	gtfsrtpb "github.com/jamespfennell/gtfs/proto"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"

	"livemap.onebusaway.org/internal/appconf"
)

func floatPtr(f float64) *float64 {
	return &f
}

// testStatic is route 10 running north along lon 33 (direction 0) and back
// south (direction 1), with three stops on the line.
func testStatic() *gtfs.Static {
	agency := gtfs.Agency{Id: "1", Name: "Test Transit", Timezone: "UTC"}
	route := gtfs.Route{Id: "10", Agency: &agency, ShortName: "10"}
	north := gtfs.Shape{ID: "shape_north", Points: []gtfs.ShapePoint{
		{Latitude: 34.99, Longitude: 33.0},
		{Latitude: 35.00, Longitude: 33.0},
		{Latitude: 35.01, Longitude: 33.0},
	}}
	south := gtfs.Shape{ID: "shape_south", Points: []gtfs.ShapePoint{
		{Latitude: 35.01, Longitude: 33.0},
		{Latitude: 34.99, Longitude: 33.0},
	}}
	stopA := gtfs.Stop{Id: "A", Code: "100", Name: "South Terminal", Latitude: floatPtr(34.99), Longitude: floatPtr(33.0)}
	stopB := gtfs.Stop{Id: "B", Code: "200", Name: "Center", Latitude: floatPtr(35.00), Longitude: floatPtr(33.0)}
	stopC := gtfs.Stop{Id: "C", Code: "300", Name: "North Terminal", Latitude: floatPtr(35.01), Longitude: floatPtr(33.0)}

	static := &gtfs.Static{
		Agencies: []gtfs.Agency{agency},
		Routes:   []gtfs.Route{route},
		Stops:    []gtfs.Stop{stopA, stopB, stopC},
		Shapes:   []gtfs.Shape{north, south},
		Trips: []gtfs.ScheduledTrip{
			{ID: "north_1", Route: &route, DirectionId: gtfs.DirectionID_False, Shape: &north},
			{ID: "south_1", Route: &route, DirectionId: gtfs.DirectionID_True, Shape: &south},
		},
	}
	static.Trips[0].StopTimes = []gtfs.ScheduledStopTime{
		{Stop: &stopA, StopSequence: 1, ArrivalTime: 8 * time.Hour, DepartureTime: 8 * time.Hour},
		{Stop: &stopB, StopSequence: 2, ArrivalTime: 8*time.Hour + 5*time.Minute, DepartureTime: 8*time.Hour + 5*time.Minute},
		{Stop: &stopC, StopSequence: 3, ArrivalTime: 8*time.Hour + 10*time.Minute, DepartureTime: 8*time.Hour + 10*time.Minute},
	}
	return static
}

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	manager, err := NewManager(context.Background(), Config{Env: appconf.Test, GTFSDataPath: ":memory:"}, testStatic())
	require.NoError(t, err)
	t.Cleanup(manager.Shutdown)
	return manager
}

// writeTestFeed writes a minimal static GTFS zip and returns its path.
func writeTestFeed(t *testing.T) string {
	t.Helper()

	files := map[string]string{
		"agency.txt": "agency_id,agency_name,agency_url,agency_timezone\n" +
			"1,Test Transit,https://example.com,UTC\n",
		"routes.txt": "route_id,agency_id,route_short_name,route_long_name,route_type\n" +
			"10,1,10,Main Street,3\n",
		"stops.txt": "stop_id,stop_code,stop_name,stop_lat,stop_lon\n" +
			"A,100,South Terminal,34.99,33.0\n" +
			"B,200,Center,35.00,33.0\n" +
			"C,300,North Terminal,35.01,33.0\n",
		"calendar.txt": "service_id,monday,tuesday,wednesday,thursday,friday,saturday,sunday,start_date,end_date\n" +
			"wk,1,1,1,1,1,1,1,20240101,20351231\n",
		"shapes.txt": "shape_id,shape_pt_lat,shape_pt_lon,shape_pt_sequence\n" +
			"shape_north,34.99,33.0,1\n" +
			"shape_north,35.00,33.0,2\n" +
			"shape_north,35.01,33.0,3\n",
		"trips.txt": "route_id,service_id,trip_id,direction_id,shape_id\n" +
			"10,wk,north_1,0,shape_north\n",
		"stop_times.txt": "trip_id,arrival_time,departure_time,stop_id,stop_sequence\n" +
			"north_1,08:00:00,08:00:00,A,1\n" +
			"north_1,08:05:00,08:05:00,B,2\n" +
			"north_1,08:10:00,08:10:00,C,3\n",
	}

	path := filepath.Join(t.TempDir(), "feed.zip")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close() // nolint

	w := zip.NewWriter(f)
	for name, content := range files {
		fw, err := w.Create(name)
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return path
}

type rtVehicle struct {
	id, tripID, routeID string
	direction           *uint32
	lat, lon            float32
	bearing             *float32
	timestamp           time.Time
}

func feedMessage(entities ...*gtfsrtpb.FeedEntity) *gtfsrtpb.FeedMessage {
	return &gtfsrtpb.FeedMessage{
		Header: &gtfsrtpb.FeedHeader{
			GtfsRealtimeVersion: proto.String("2.0"),
			Incrementality:      gtfsrtpb.FeedHeader_FULL_DATASET.Enum(),
			Timestamp:           proto.Uint64(uint64(time.Now().Unix())),
		},
		Entity: entities,
	}
}

func vehicleEntity(v rtVehicle) *gtfsrtpb.FeedEntity {
	position := &gtfsrtpb.Position{
		Latitude:  proto.Float32(v.lat),
		Longitude: proto.Float32(v.lon),
		Bearing:   v.bearing,
	}
	return &gtfsrtpb.FeedEntity{
		Id: proto.String("vp_" + v.id),
		Vehicle: &gtfsrtpb.VehiclePosition{
			Trip: &gtfsrtpb.TripDescriptor{
				TripId:      proto.String(v.tripID),
				RouteId:     proto.String(v.routeID),
				DirectionId: v.direction,
			},
			Vehicle:   &gtfsrtpb.VehicleDescriptor{Id: proto.String(v.id)},
			Position:  position,
			Timestamp: proto.Uint64(uint64(v.timestamp.Unix())),
		},
	}
}

func tripUpdateEntity(tripID, routeID string, updates ...*gtfsrtpb.TripUpdate_StopTimeUpdate) *gtfsrtpb.FeedEntity {
	return &gtfsrtpb.FeedEntity{
		Id: proto.String("tu_" + tripID),
		TripUpdate: &gtfsrtpb.TripUpdate{
			Trip: &gtfsrtpb.TripDescriptor{
				TripId:  proto.String(tripID),
				RouteId: proto.String(routeID),
			},
			StopTimeUpdate: updates,
		},
	}
}

func marshalFeed(t *testing.T, msg *gtfsrtpb.FeedMessage) []byte {
	t.Helper()
	b, err := proto.Marshal(msg)
	require.NoError(t, err)
	return b
}
