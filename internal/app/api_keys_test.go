package app

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"livemap.onebusaway.org/internal/appconf"
)

func TestIsInvalidAPIKey(t *testing.T) {
	app := &Application{
		Config: appconf.Config{
			ApiKeys: []string{"key", "other"},
		},
	}

	tests := []struct {
		key     string
		invalid bool
	}{
		{key: "", invalid: true},
		{key: "key", invalid: false},
		{key: "other", invalid: false},
		{key: "KEY", invalid: true},
		{key: "nope", invalid: true},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.Equal(t, tt.invalid, app.IsInvalidAPIKey(tt.key))
		})
	}

	t.Run("reads the key query parameter", func(t *testing.T) {
		assert.False(t, app.RequestHasInvalidAPIKey(httptest.NewRequest("GET", "/x?key=key", nil)))
		assert.True(t, app.RequestHasInvalidAPIKey(httptest.NewRequest("GET", "/x", nil)))
	})
}

func TestTrackingConfig(t *testing.T) {
	cfg := appconf.Default()
	cfg.Tracking.TrailMaxPoints = 7

	tc := TrackingConfig(cfg)
	assert.Equal(t, 7, tc.TrailMaxPoints)
	assert.Equal(t, cfg.Gtfs.RefreshInterval, tc.RefreshInterval)
	assert.Equal(t, cfg.Tracking.ProjectionThresholdMeters, tc.ProjectionThresholdMeters)
}
