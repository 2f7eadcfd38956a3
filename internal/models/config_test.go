package models

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigFromFile(t *testing.T) {
	content := `{
		"origin_latitude": 52.244904,
		"origin_longitude": -7.136517,
		"destination_latitude": 52.252018,
		"destination_longitude": -7.096286,
		"poll_interval": "2m",
		"led_count": 16,
		"byte_order": "rgb",
		"simulate": true
	}`
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 2*time.Minute, cfg.PollInterval)
	assert.Equal(t, 16, cfg.LEDCount)
	assert.Equal(t, "rgb", cfg.ByteOrder)
	assert.True(t, cfg.Simulate)

	// Defaults fill anything the file leaves out.
	assert.Equal(t, 30*time.Second, cfg.TwinkleInterval)
	assert.Equal(t, 50*time.Millisecond, cfg.FrameInterval)
	assert.Equal(t, 8266, cfg.ProvisionPort)

	route := cfg.Route()
	assert.InDelta(t, 52.244904, route.Origin.Lat, 1e-9)
	assert.InDelta(t, -7.096286, route.Destination.Lng, 1e-9)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
