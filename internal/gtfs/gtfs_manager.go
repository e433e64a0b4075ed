package gtfs

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/bluele/gcache"
	"github.com/jamespfennell/gtfs"

	"livemap.onebusaway.org/gtfsdb"
	"livemap.onebusaway.org/internal/logging"
	"livemap.onebusaway.org/internal/stops"
	"livemap.onebusaway.org/internal/tracking"
)

// Manager owns the static schedule, its sqlite index and the latest realtime
// feeds. It is the shape, stop and snapshot source for map sessions.
type Manager struct {
	gtfsSource  string
	isLocalFile bool
	config      Config
	logger      *slog.Logger
	httpClient  *http.Client

	staticMutex sync.RWMutex
	gtfsData    *gtfs.Static
	tripsByID   map[string]*gtfs.ScheduledTrip
	location    *time.Location
	lastUpdated time.Time

	GtfsDB     *gtfsdb.Client
	stopFinder *stops.Finder
	shapeCache gcache.Cache

	realTimeMutex    sync.RWMutex
	realTimeTrips    []gtfs.Trip
	realTimeVehicles []gtfs.Vehicle
	realTimeUpdated  time.Time

	subscribersMutex sync.RWMutex
	subscribers      []func(tracking.Snapshot)

	shutdownChan chan struct{}
	wg           sync.WaitGroup
	shutdownOnce sync.Once
}

// InitGTFSManager initializes the Manager with the GTFS data from the given source
// The source can be either a URL or a local file path
func InitGTFSManager(config Config) (*Manager, error) {
	isLocalFile := !strings.HasPrefix(config.GtfsURL, "http://") && !strings.HasPrefix(config.GtfsURL, "https://")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	staticData, err := loadGTFSData(ctx, http.DefaultClient, config.GtfsURL, isLocalFile)
	if err != nil {
		return nil, err
	}

	manager, err := NewManager(ctx, config, staticData)
	if err != nil {
		return nil, err
	}
	manager.isLocalFile = isLocalFile

	if !isLocalFile {
		manager.wg.Add(1)
		go manager.updateStaticGTFS()
	}

	if config.realTimeDataEnabled() {
		rtCtx, rtCancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer rtCancel()
		manager.updateGTFSRealtime(rtCtx)
		manager.wg.Add(1)
		go manager.updateGTFSRealtimePeriodically()
	}

	return manager, nil
}

// NewManager builds a manager around already parsed static data. No background
// refresh is started.
func NewManager(ctx context.Context, config Config, staticData *gtfs.Static) (*Manager, error) {
	dbConfig := gtfsdb.NewConfig(config.dataPath(), config.Env, config.Verbose)
	client, err := gtfsdb.NewClient(dbConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create GTFS database client: %w", err)
	}

	manager := &Manager{
		gtfsSource:   config.GtfsURL,
		config:       config,
		logger:       slog.Default().With(slog.String("component", "gtfs_manager")),
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		GtfsDB:       client,
		stopFinder:   stops.NewFinder(stops.NewDBSource(client.Queries)),
		shutdownChan: make(chan struct{}),
	}
	manager.shapeCache = gcache.New(config.shapeCacheSize()).
		LRU().
		LoaderFunc(manager.loadRouteShape).
		Build()

	if err := manager.setStaticGTFS(ctx, staticData); err != nil {
		_ = client.Close()
		return nil, err
	}
	return manager, nil
}

// Shutdown gracefully shuts down the manager and its background goroutines
func (manager *Manager) Shutdown() {
	manager.shutdownOnce.Do(func() {
		close(manager.shutdownChan)
		manager.wg.Wait()
		if manager.GtfsDB != nil {
			logging.SafeCloseWithLogging(manager.GtfsDB, manager.logger, "gtfs_database")
		}
	})
}

func (manager *Manager) GetStaticData() *gtfs.Static {
	manager.staticMutex.RLock()
	defer manager.staticMutex.RUnlock()
	return manager.gtfsData
}

func (manager *Manager) GetAgencies() []gtfs.Agency {
	return manager.GetStaticData().Agencies
}

func (manager *Manager) FindRoute(id string) (gtfs.Route, bool) {
	for _, route := range manager.GetStaticData().Routes {
		if route.Id == id {
			return route, true
		}
	}
	return gtfs.Route{}, false
}

// LastUpdated reports when the static schedule was last loaded.
func (manager *Manager) LastUpdated() time.Time {
	manager.staticMutex.RLock()
	defer manager.staticMutex.RUnlock()
	return manager.lastUpdated
}

// Location is the agency timezone, used to anchor scheduled stop times.
func (manager *Manager) Location() *time.Location {
	manager.staticMutex.RLock()
	defer manager.staticMutex.RUnlock()
	return manager.location
}

// Stops returns the nearest-stop finder backed by the sqlite stop index.
func (manager *Manager) Stops() *stops.Finder {
	return manager.stopFinder
}

// OnSnapshot registers fn to receive every vehicle snapshot produced by a
// realtime refresh. fn is called from the refresh goroutine.
func (manager *Manager) OnSnapshot(fn func(tracking.Snapshot)) {
	manager.subscribersMutex.Lock()
	defer manager.subscribersMutex.Unlock()
	manager.subscribers = append(manager.subscribers, fn)
}

func (manager *Manager) publishSnapshot(snapshot tracking.Snapshot) {
	manager.subscribersMutex.RLock()
	subscribers := append([]func(tracking.Snapshot){}, manager.subscribers...)
	manager.subscribersMutex.RUnlock()

	for _, fn := range subscribers {
		fn(snapshot)
	}
}

func (manager *Manager) LogStatistics() {
	static := manager.GetStaticData()
	logging.LogOperation(manager.logger, "gtfs_statistics",
		slog.String("source", manager.gtfsSource),
		slog.Bool("local_file", manager.isLocalFile),
		slog.Time("last_updated", manager.LastUpdated()),
		slog.Int("stops", len(static.Stops)),
		slog.Int("routes", len(static.Routes)),
		slog.Int("trips", len(static.Trips)),
		slog.Int("shapes", len(static.Shapes)),
		slog.Int("agencies", len(static.Agencies)))
}
