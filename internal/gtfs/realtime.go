package gtfs

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jamespfennell/gtfs"
	"github.com/sourcegraph/conc"

	"livemap.onebusaway.org/internal/logging"
)

const realtimeFetchAttempts = 3

// GetRealTimeTrips returns the real-time trip updates
func (manager *Manager) GetRealTimeTrips() []gtfs.Trip {
	manager.realTimeMutex.RLock()
	defer manager.realTimeMutex.RUnlock()
	return manager.realTimeTrips
}

// GetRealTimeVehicles returns the real-time vehicle positions
func (manager *Manager) GetRealTimeVehicles() []gtfs.Vehicle {
	manager.realTimeMutex.RLock()
	defer manager.realTimeMutex.RUnlock()
	return manager.realTimeVehicles
}

// RealTimeUpdated reports when the vehicle positions were last replaced.
func (manager *Manager) RealTimeUpdated() time.Time {
	manager.realTimeMutex.RLock()
	defer manager.realTimeMutex.RUnlock()
	return manager.realTimeUpdated
}

func fetchRealtime(ctx context.Context, client *http.Client, source string, headers map[string]string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, backoff.Permanent(err)
	}

	for key, value := range headers {
		req.Header.Add(key, value)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer logging.SafeCloseWithLogging(resp.Body,
		slog.Default().With(slog.String("component", "gtfs_realtime_downloader")),
		"http_response_body")

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	default:
		return nil, backoff.Permanent(fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	return io.ReadAll(resp.Body)
}

// loadRealtimeData downloads and parses one GTFS-RT feed, retrying transient
// failures with exponential backoff.
func loadRealtimeData(ctx context.Context, client *http.Client, source string, headers map[string]string, logger *slog.Logger) (*gtfs.Realtime, error) {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 200 * time.Millisecond
	policy.MaxInterval = 2 * time.Second

	var attempt int
	b, err := backoff.RetryNotifyWithData(
		func() ([]byte, error) {
			attempt++
			return fetchRealtime(ctx, client, source, headers)
		},
		backoff.WithContext(backoff.WithMaxRetries(policy, realtimeFetchAttempts-1), ctx),
		func(err error, wait time.Duration) {
			logging.LogWarning(logger, "realtime_fetch_retry", err,
				slog.String("url", source),
				slog.Int("attempt", attempt),
				slog.Duration("wait", wait))
		},
	)
	if err != nil {
		return nil, err
	}

	return gtfs.ParseRealtime(b, &gtfs.ParseRealtimeOptions{})
}

// updateGTFSRealtime fetches both feeds in parallel. A feed that fails keeps
// its previous data. Subscribers receive a snapshot whenever vehicle positions
// were replaced.
func (manager *Manager) updateGTFSRealtime(ctx context.Context) {
	logger := logging.FromContext(ctx).With(slog.String("component", "gtfs_realtime"))
	config := manager.config
	headers := config.realTimeHeaders()

	var tripData, vehicleData *gtfs.Realtime
	var tripErr, vehicleErr error

	var wg conc.WaitGroup
	if config.TripUpdatesURL != "" {
		wg.Go(func() {
			tripData, tripErr = loadRealtimeData(ctx, manager.httpClient, config.TripUpdatesURL, headers, logger)
			if tripErr != nil {
				logging.LogError(logger, "Error loading GTFS-RT trip updates data", tripErr,
					slog.String("url", config.TripUpdatesURL))
			}
		})
	}
	if config.VehiclePositionsURL != "" {
		wg.Go(func() {
			vehicleData, vehicleErr = loadRealtimeData(ctx, manager.httpClient, config.VehiclePositionsURL, headers, logger)
			if vehicleErr != nil {
				logging.LogError(logger, "Error loading GTFS-RT vehicle positions data", vehicleErr,
					slog.String("url", config.VehiclePositionsURL))
			}
		})
	}
	wg.Wait()

	if ctx.Err() != nil {
		return
	}

	vehiclesUpdated := false
	manager.realTimeMutex.Lock()
	if tripData != nil && tripErr == nil {
		manager.realTimeTrips = tripData.Trips
	}
	if vehicleData != nil && vehicleErr == nil {
		manager.realTimeVehicles = vehicleData.Vehicles
		manager.realTimeUpdated = time.Now()
		vehiclesUpdated = true
	}
	manager.realTimeMutex.Unlock()

	if vehiclesUpdated {
		manager.publishSnapshot(manager.Snapshot())
	}
}

func (manager *Manager) updateGTFSRealtimePeriodically() {
	defer manager.wg.Done()

	logger := manager.logger.With(slog.String("component", "gtfs_realtime_updater"))

	ticker := time.NewTicker(manager.config.refreshInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), manager.config.refreshInterval())
			ctx = logging.WithLogger(ctx, logger)

			if manager.config.Verbose {
				logging.LogOperation(logger, "updating_gtfs_realtime_data")
			}
			manager.updateGTFSRealtime(ctx)
			cancel()
		case <-manager.shutdownChan:
			logging.LogOperation(logger, "shutting_down_realtime_updates")
			return
		}
	}
}
