package gtfs

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/jamespfennell/gtfs"

	"livemap.onebusaway.org/internal/logging"
)

func rawGtfsData(ctx context.Context, client *http.Client, source string, isLocalFile bool) (b []byte, err error) {
	if isLocalFile {
		b, err = os.ReadFile(source)
		if err != nil {
			return nil, fmt.Errorf("error reading local GTFS file: %w", err)
		}
		return b, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating GTFS request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error downloading GTFS data: %w", err)
	}
	defer logging.HandleDeferredError(&err, resp.Body.Close,
		slog.Default().With(slog.String("component", "gtfs_static_downloader")),
		"close_gtfs_response")

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("error downloading GTFS data: unexpected status %d", resp.StatusCode)
	}

	b, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading GTFS data: %w", err)
	}
	return b, nil
}

// loadGTFSData loads and parses GTFS data from either a URL or a local file
func loadGTFSData(ctx context.Context, client *http.Client, source string, isLocalFile bool) (*gtfs.Static, error) {
	b, err := rawGtfsData(ctx, client, source, isLocalFile)
	if err != nil {
		return nil, fmt.Errorf("error reading GTFS data: %w", err)
	}

	staticData, err := gtfs.ParseStatic(b, gtfs.ParseStaticOptions{})
	if err != nil {
		return nil, fmt.Errorf("error parsing GTFS data: %w", err)
	}

	return staticData, nil
}

// updateStaticGTFS reloads a remote schedule once a day. Local files are not
// refreshed.
func (manager *Manager) updateStaticGTFS() {
	defer manager.wg.Done()

	logger := manager.logger.With(slog.String("component", "gtfs_static_updater"))

	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)

			staticData, err := loadGTFSData(ctx, manager.httpClient, manager.gtfsSource, false)
			if err != nil {
				cancel()
				logging.LogError(logger, "error updating GTFS data", err,
					slog.String("source", manager.gtfsSource))
				continue
			}

			if err := manager.setStaticGTFS(ctx, staticData); err != nil {
				logging.LogError(logger, "error indexing GTFS data", err,
					slog.String("source", manager.gtfsSource))
			}
			cancel()
		case <-manager.shutdownChan:
			logging.LogOperation(logger, "shutting_down_static_updates")
			return
		}
	}
}

// setStaticGTFS swaps in a new schedule, rebuilds the sqlite index and drops
// every cached route shape.
func (manager *Manager) setStaticGTFS(ctx context.Context, staticData *gtfs.Static) error {
	if err := manager.GtfsDB.ImportStatic(ctx, staticData); err != nil {
		return fmt.Errorf("error importing GTFS data: %w", err)
	}

	tripsByID := make(map[string]*gtfs.ScheduledTrip, len(staticData.Trips))
	for i := range staticData.Trips {
		tripsByID[staticData.Trips[i].ID] = &staticData.Trips[i]
	}

	manager.staticMutex.Lock()
	manager.gtfsData = staticData
	manager.tripsByID = tripsByID
	manager.location = agencyLocation(staticData)
	manager.lastUpdated = time.Now()
	manager.staticMutex.Unlock()

	manager.shapeCache.Purge()

	if manager.config.Verbose {
		logging.LogOperation(manager.logger, "gtfs_static_updated",
			slog.String("source", manager.gtfsSource),
			slog.Duration("duration", manager.GtfsDB.ImportRuntime()))
	}
	return nil
}

func agencyLocation(staticData *gtfs.Static) *time.Location {
	for _, agency := range staticData.Agencies {
		if agency.Timezone == "" {
			continue
		}
		if loc, err := time.LoadLocation(agency.Timezone); err == nil {
			return loc
		}
	}
	return time.UTC
}

func (manager *Manager) scheduledTrip(tripID string) (*gtfs.ScheduledTrip, bool) {
	manager.staticMutex.RLock()
	defer manager.staticMutex.RUnlock()
	trip, ok := manager.tripsByID[tripID]
	return trip, ok
}
