package gtfs

import (
	"time"

	"livemap.onebusaway.org/internal/appconf"
)

type Config struct {
	GtfsURL                 string
	GTFSDataPath            string
	TripUpdatesURL          string
	VehiclePositionsURL     string
	RealTimeAuthHeaderKey   string
	RealTimeAuthHeaderValue string
	RefreshInterval         time.Duration
	ShapeCacheSize          int
	Env                     appconf.Environment
	Verbose                 bool
}

// NewConfig derives the manager configuration from the application config.
func NewConfig(cfg appconf.Config) Config {
	return Config{
		GtfsURL:                 cfg.Gtfs.StaticURL,
		GTFSDataPath:            cfg.Gtfs.DataPath,
		TripUpdatesURL:          cfg.Gtfs.TripUpdatesURL,
		VehiclePositionsURL:     cfg.Gtfs.VehiclePositionsURL,
		RealTimeAuthHeaderKey:   cfg.Gtfs.RealTimeAuthHeaderKey,
		RealTimeAuthHeaderValue: cfg.Gtfs.RealTimeAuthHeaderValue,
		RefreshInterval:         cfg.Gtfs.RefreshInterval,
		ShapeCacheSize:          cfg.Gtfs.ShapeCacheSize,
		Env:                     cfg.Env,
		Verbose:                 cfg.Verbose,
	}
}

// realTimeDataEnabled reports whether at least one realtime feed is configured.
func (config Config) realTimeDataEnabled() bool {
	return config.TripUpdatesURL != "" || config.VehiclePositionsURL != ""
}

func (config Config) refreshInterval() time.Duration {
	if config.RefreshInterval <= 0 {
		return 10 * time.Second
	}
	return config.RefreshInterval
}

func (config Config) shapeCacheSize() int {
	if config.ShapeCacheSize <= 0 {
		return 256
	}
	return config.ShapeCacheSize
}

func (config Config) dataPath() string {
	if config.GTFSDataPath == "" {
		return ":memory:"
	}
	return config.GTFSDataPath
}

func (config Config) realTimeHeaders() map[string]string {
	headers := map[string]string{}
	if config.RealTimeAuthHeaderKey != "" && config.RealTimeAuthHeaderValue != "" {
		headers[config.RealTimeAuthHeaderKey] = config.RealTimeAuthHeaderValue
	}
	return headers
}
