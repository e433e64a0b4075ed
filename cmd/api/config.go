package main

import (
	"flag"
	"io"
	"strings"
	"time"

	"livemap.onebusaway.org/internal/appconf"
)

// loadConfig reads the optional -config file over the defaults and then
// applies the flags that were set explicitly on the command line.
func loadConfig(args []string, output io.Writer) (appconf.Config, error) {
	fs := flag.NewFlagSet("livemap", flag.ContinueOnError)
	fs.SetOutput(output)

	var (
		configPath          string
		port                int
		env                 string
		apiKeys             string
		gtfsURL             string
		dataPath            string
		tripUpdatesURL      string
		vehiclePositionsURL string
		refreshInterval     time.Duration
		sessionTTL          time.Duration
		rateLimit           int
		verbose             bool
	)

	defaults := appconf.Default()
	fs.StringVar(&configPath, "config", "", "Path to a YAML config file")
	fs.IntVar(&port, "port", defaults.Port, "API server port")
	fs.StringVar(&env, "env", defaults.EnvName, "Environment (development|test|production)")
	fs.StringVar(&apiKeys, "api-keys", strings.Join(defaults.ApiKeys, ","), "Comma Separated API Keys (test, etc)")
	fs.StringVar(&gtfsURL, "gtfs-url", defaults.Gtfs.StaticURL, "URL or path of a static GTFS zip file")
	fs.StringVar(&dataPath, "data-path", defaults.Gtfs.DataPath, "SQLite database path for the imported schedule")
	fs.StringVar(&tripUpdatesURL, "trip-updates-url", "", "GTFS-realtime trip updates URL")
	fs.StringVar(&vehiclePositionsURL, "vehicle-positions-url", "", "GTFS-realtime vehicle positions URL")
	fs.DurationVar(&refreshInterval, "refresh-interval", defaults.Gtfs.RefreshInterval, "Realtime feed refresh interval")
	fs.DurationVar(&sessionTTL, "session-ttl", defaults.SessionTTL, "Idle time before a map session is closed")
	fs.IntVar(&rateLimit, "rate-limit", defaults.RateLimit, "Requests per second per API key (0 disables)")
	fs.BoolVar(&verbose, "verbose", defaults.Verbose, "Enable debug logging")

	if err := fs.Parse(args); err != nil {
		return appconf.Config{}, err
	}

	cfg := defaults
	if configPath != "" {
		loaded, err := appconf.Load(configPath)
		if err != nil {
			return appconf.Config{}, err
		}
		cfg = loaded
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "port":
			cfg.Port = port
		case "env":
			cfg.EnvName = env
		case "api-keys":
			cfg.ApiKeys = splitKeys(apiKeys)
		case "gtfs-url":
			cfg.Gtfs.StaticURL = gtfsURL
		case "data-path":
			cfg.Gtfs.DataPath = dataPath
		case "trip-updates-url":
			cfg.Gtfs.TripUpdatesURL = tripUpdatesURL
		case "vehicle-positions-url":
			cfg.Gtfs.VehiclePositionsURL = vehiclePositionsURL
		case "refresh-interval":
			cfg.Gtfs.RefreshInterval = refreshInterval
		case "session-ttl":
			cfg.SessionTTL = sessionTTL
		case "rate-limit":
			cfg.RateLimit = rateLimit
		case "verbose":
			cfg.Verbose = verbose
		}
	})

	if err := cfg.Validate(); err != nil {
		return appconf.Config{}, err
	}
	return cfg, nil
}

func splitKeys(value string) []string {
	var keys []string
	for _, key := range strings.Split(value, ",") {
		if key = strings.TrimSpace(key); key != "" {
			keys = append(keys, key)
		}
	}
	return keys
}
