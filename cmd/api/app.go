package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/sourcegraph/conc"

	"livemap.onebusaway.org/internal/app"
	"livemap.onebusaway.org/internal/appconf"
	"livemap.onebusaway.org/internal/gtfs"
	"livemap.onebusaway.org/internal/logging"
	"livemap.onebusaway.org/internal/restapi"
)

const shutdownTimeout = 10 * time.Second

// newApplication wires the sessions to the manager's vehicle snapshots.
func newApplication(cfg appconf.Config, manager *gtfs.Manager, logger *slog.Logger) *app.Application {
	sessions := app.NewSessionRegistry(manager, app.TrackingConfig(cfg), logger)
	manager.OnSnapshot(sessions.Broadcast)

	return &app.Application{
		Config:      cfg,
		GtfsConfig:  gtfs.NewConfig(cfg),
		Logger:      logger,
		GtfsManager: manager,
		Sessions:    sessions,
	}
}

func newServer(cfg appconf.Config, handler http.Handler, logger *slog.Logger) *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      handler,
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}
}

// sweepInterval checks for idle sessions several times per TTL.
func sweepInterval(ttl time.Duration) time.Duration {
	interval := ttl / 4
	if interval < time.Second {
		return time.Second
	}
	if interval > time.Minute {
		return time.Minute
	}
	return interval
}

// serve runs the server and the session sweeper until ctx is cancelled, then
// shuts both down.
func serve(ctx context.Context, application *app.Application, srv *http.Server, api *restapi.RestAPI) error {
	logger := application.Logger
	sweepCtx, stopSweeper := context.WithCancel(ctx)
	defer stopSweeper()

	var wg conc.WaitGroup
	wg.Go(func() {
		application.Sessions.RunSweeper(sweepCtx, application.Config.SessionTTL, sweepInterval(application.Config.SessionTTL))
	})

	serveErr := make(chan error, 1)
	wg.Go(func() {
		logger.Info("starting server",
			slog.String("addr", srv.Addr),
			slog.String("env", application.Config.Env.String()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	})

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case runErr = <-serveErr:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.LogError(logger, "server shutdown failed", err)
		runErr = errors.Join(runErr, err)
	}

	stopSweeper()
	wg.Wait()

	api.Shutdown()
	application.Sessions.CloseAll()
	application.GtfsManager.Shutdown()
	logger.Info("server stopped")
	return runErr
}

// run loads the schedule and realtime feeds and serves the API until ctx is done.
func run(ctx context.Context, cfg appconf.Config, logger *slog.Logger) error {
	manager, err := gtfs.InitGTFSManager(gtfs.NewConfig(cfg))
	if err != nil {
		return fmt.Errorf("initializing GTFS manager: %w", err)
	}
	manager.LogStatistics()

	application := newApplication(cfg, manager, logger)
	api := restapi.NewRestAPI(application)
	return serve(ctx, application, newServer(cfg, api.Handler(), logger), api)
}
