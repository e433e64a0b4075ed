package app

import (
	"log/slog"

	"livemap.onebusaway.org/internal/appconf"
	"livemap.onebusaway.org/internal/gtfs"
	"livemap.onebusaway.org/internal/tracking"
)

// Application holds the dependencies for our HTTP handlers, helpers,
// and middleware.
type Application struct {
	Config      appconf.Config
	GtfsConfig  gtfs.Config
	Logger      *slog.Logger
	GtfsManager *gtfs.Manager
	Sessions    *SessionRegistry
}

// TrackingConfig maps the configured tunables onto a map session config. The
// realtime refresh interval bounds the marker animation.
func TrackingConfig(cfg appconf.Config) tracking.Config {
	t := cfg.Tracking
	return tracking.Config{
		MinMovementMeters:         t.MinMovementMeters,
		ProjectionThresholdMeters: t.ProjectionThresholdMeters,
		TrailMaxPoints:            t.TrailMaxPoints,
		TrailMaxAge:               t.TrailMaxAge,
		NoiseThresholdMeters:      t.NoiseThresholdMeters,
		AnimationDuration:         t.AnimationDuration,
		RefreshInterval:           cfg.Gtfs.RefreshInterval,
		ClusterRadiusPixels:       t.ClusterRadiusPixels,
		MinClusterSize:            t.MinClusterSize,
		MaxClusterZoom:            t.MaxClusterZoom,
	}
}
