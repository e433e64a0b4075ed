// Package appconf loads and validates the server configuration.
package appconf

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure
type Config struct {
	Port       int            `yaml:"port" validate:"gt=0,lte=65535"`
	EnvName    string         `yaml:"env" validate:"oneof=development test production"`
	Env        Environment    `yaml:"-"`
	ApiKeys    []string       `yaml:"api-keys" validate:"required,min=1,dive,required"`
	RateLimit  int            `yaml:"rate-limit" validate:"gte=0"`
	Verbose    bool           `yaml:"verbose"`
	SessionTTL time.Duration  `yaml:"session-ttl" validate:"gt=0"`
	Gtfs       GtfsConfig     `yaml:"gtfs"`
	Tracking   TrackingConfig `yaml:"tracking"`
}

// GtfsConfig describes the static and realtime feeds.
type GtfsConfig struct {
	StaticURL               string        `yaml:"static-url" validate:"required"`
	DataPath                string        `yaml:"data-path"`
	TripUpdatesURL          string        `yaml:"trip-updates-url" validate:"omitempty,url"`
	VehiclePositionsURL     string        `yaml:"vehicle-positions-url" validate:"omitempty,url"`
	RealTimeAuthHeaderKey   string        `yaml:"auth-header-key"`
	RealTimeAuthHeaderValue string        `yaml:"auth-header-value"`
	RefreshInterval         time.Duration `yaml:"refresh-interval" validate:"gte=1s"`
	ShapeCacheSize          int           `yaml:"shape-cache-size" validate:"gte=1"`
}

// TrackingConfig holds the map session tunables.
type TrackingConfig struct {
	MinMovementMeters         float64       `yaml:"min-movement-meters" validate:"gt=0"`
	ProjectionThresholdMeters float64       `yaml:"projection-threshold-meters" validate:"gt=0"`
	TrailMaxPoints            int           `yaml:"trail-max-points" validate:"gte=2"`
	TrailMaxAge               time.Duration `yaml:"trail-max-age" validate:"gt=0"`
	NoiseThresholdMeters      float64       `yaml:"noise-threshold-meters" validate:"gte=0"`
	AnimationDuration         time.Duration `yaml:"animation-duration" validate:"gt=0"`
	ClusterRadiusPixels       float64       `yaml:"cluster-radius-pixels" validate:"gt=0"`
	MinClusterSize            int           `yaml:"min-cluster-size" validate:"gte=1"`
	MaxClusterZoom            int           `yaml:"max-cluster-zoom" validate:"gte=0,lte=22"`
}

// Default returns a configuration that runs a development server.
func Default() Config {
	return Config{
		Port:       4000,
		EnvName:    "development",
		Env:        Development,
		ApiKeys:    []string{"test"},
		RateLimit:  100,
		SessionTTL: 30 * time.Minute,
		Gtfs: GtfsConfig{
			StaticURL:       "https://www.soundtransit.org/GTFS-rail/40_gtfs.zip",
			DataPath:        ":memory:",
			RefreshInterval: 10 * time.Second,
			ShapeCacheSize:  256,
		},
		Tracking: TrackingConfig{
			MinMovementMeters:         5,
			ProjectionThresholdMeters: 50,
			TrailMaxPoints:            20,
			TrailMaxAge:               5 * time.Minute,
			NoiseThresholdMeters:      2,
			AnimationDuration:         10 * time.Second,
			ClusterRadiusPixels:       60,
			MinClusterSize:            2,
			MaxClusterZoom:            15,
		},
	}
}

// Load reads the YAML file at path over the defaults and validates the result.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("error reading config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML over the defaults and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("error parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the struct tags and resolves Env from EnvName.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	c.Env = EnvFlagToEnvironment(c.EnvName)
	return nil
}

// RealTimeEnabled reports whether at least one realtime feed is configured.
func (g GtfsConfig) RealTimeEnabled() bool {
	return g.TripUpdatesURL != "" || g.VehiclePositionsURL != ""
}
