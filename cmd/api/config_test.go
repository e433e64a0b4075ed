package main

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"livemap.onebusaway.org/internal/appconf"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := loadConfig(nil, io.Discard)
	require.NoError(t, err)

	assert.Equal(t, 4000, cfg.Port)
	assert.Equal(t, appconf.Development, cfg.Env)
	assert.Equal(t, []string{"test"}, cfg.ApiKeys)
	assert.False(t, cfg.Gtfs.RealTimeEnabled())
}

func TestLoadConfigFlags(t *testing.T) {
	cfg, err := loadConfig([]string{
		"-port", "8080",
		"-env", "production",
		"-api-keys", "alpha, beta,,",
		"-vehicle-positions-url", "https://example.com/vp.pb",
		"-refresh-interval", "30s",
		"-rate-limit", "0",
		"-verbose",
	}, io.Discard)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, appconf.Production, cfg.Env)
	assert.Equal(t, []string{"alpha", "beta"}, cfg.ApiKeys)
	assert.True(t, cfg.Gtfs.RealTimeEnabled())
	assert.Equal(t, 30*time.Second, cfg.Gtfs.RefreshInterval)
	assert.Zero(t, cfg.RateLimit)
	assert.True(t, cfg.Verbose)
}

func TestLoadConfigFileWithOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "livemap.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
port: 9000
env: test
api-keys: [from-file]
session-ttl: 5m
gtfs:
  static-url: ./feed.zip
tracking:
  trail-max-points: 50
`), 0o600))

	cfg, err := loadConfig([]string{"-config", path, "-port", "9100"}, io.Discard)
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Port)
	assert.Equal(t, appconf.Test, cfg.Env)
	assert.Equal(t, []string{"from-file"}, cfg.ApiKeys)
	assert.Equal(t, 5*time.Minute, cfg.SessionTTL)
	assert.Equal(t, "./feed.zip", cfg.Gtfs.StaticURL)
	assert.Equal(t, 50, cfg.Tracking.TrailMaxPoints)
	assert.Equal(t, 15, cfg.Tracking.MaxClusterZoom)
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "unknown flag", args: []string{"-nope"}},
		{name: "invalid port", args: []string{"-port", "70000"}},
		{name: "invalid env", args: []string{"-env", "staging"}},
		{name: "no api keys", args: []string{"-api-keys", " , "}},
		{name: "bad realtime url", args: []string{"-trip-updates-url", "not a url"}},
		{name: "missing config file", args: []string{"-config", "/does/not/exist.yaml"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loadConfig(tt.args, io.Discard)
			assert.Error(t, err)
		})
	}
}

func TestSplitKeys(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, splitKeys(" a ,b"))
	assert.Nil(t, splitKeys(""))
}
