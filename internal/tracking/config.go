package tracking

import "time"

// Config holds the tunables of a map session. Zero values are replaced with defaults.
type Config struct {
	MinMovementMeters         float64
	ProjectionThresholdMeters float64
	TrailMaxPoints            int
	TrailMaxAge               time.Duration
	NoiseThresholdMeters      float64
	AnimationDuration         time.Duration
	RefreshInterval           time.Duration
	ClusterRadiusPixels       float64
	MinClusterSize            int
	MaxClusterZoom            int
}

// DefaultConfig returns the stock thresholds and bounds.
func DefaultConfig() Config {
	return Config{
		MinMovementMeters:         5,
		ProjectionThresholdMeters: 50,
		TrailMaxPoints:            20,
		TrailMaxAge:               5 * time.Minute,
		NoiseThresholdMeters:      2,
		AnimationDuration:         10 * time.Second,
		RefreshInterval:           10 * time.Second,
		ClusterRadiusPixels:       60,
		MinClusterSize:            2,
		MaxClusterZoom:            15,
	}
}

// WithDefaults fills every unset field from DefaultConfig.
func (c Config) WithDefaults() Config {
	d := DefaultConfig()
	if c.MinMovementMeters <= 0 {
		c.MinMovementMeters = d.MinMovementMeters
	}
	if c.ProjectionThresholdMeters <= 0 {
		c.ProjectionThresholdMeters = d.ProjectionThresholdMeters
	}
	if c.TrailMaxPoints <= 0 {
		c.TrailMaxPoints = d.TrailMaxPoints
	}
	if c.TrailMaxAge <= 0 {
		c.TrailMaxAge = d.TrailMaxAge
	}
	if c.NoiseThresholdMeters <= 0 {
		c.NoiseThresholdMeters = d.NoiseThresholdMeters
	}
	if c.AnimationDuration <= 0 {
		c.AnimationDuration = d.AnimationDuration
	}
	if c.RefreshInterval <= 0 {
		c.RefreshInterval = d.RefreshInterval
	}
	if c.ClusterRadiusPixels <= 0 {
		c.ClusterRadiusPixels = d.ClusterRadiusPixels
	}
	if c.MinClusterSize <= 0 {
		c.MinClusterSize = d.MinClusterSize
	}
	if c.MaxClusterZoom <= 0 {
		c.MaxClusterZoom = d.MaxClusterZoom
	}
	return c
}

// animationDuration never exceeds the refresh interval so markers finish moving
// before the next snapshot lands.
func (c Config) animationDuration() time.Duration {
	return min(c.AnimationDuration, c.RefreshInterval)
}
