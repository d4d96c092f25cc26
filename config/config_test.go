package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
serial:
  port: /dev/ttyUSB0
itc503:
  max_temperature: 320
  wait:
    tolerance_kelvin: 0.05
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/dev/ttyUSB0", cfg.Serial.Port)
	assert.Equal(t, 320.0, cfg.ITC503.MaxTemperature)
	assert.Equal(t, 0.05, cfg.ITC503.Wait.ToleranceKelvin)

	// Untouched fields keep their defaults.
	assert.Equal(t, 24, cfg.GPIB.Address)
	assert.Equal(t, 0.5, cfg.ITC503.Wait.CheckIntervalSeconds)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("serial: ["), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestWaitConfig_AsWaitConfig(t *testing.T) {
	w := WaitConfig{
		ToleranceKelvin:           0.02,
		TimeoutSeconds:            120,
		CheckIntervalSeconds:      0.25,
		StabilityIntervalSeconds:  5,
		ThermalizeIntervalSeconds: 60,
		MaxCommErrors:             3,
	}

	got := w.AsWaitConfig()
	assert.Equal(t, 0.02, got.Tolerance)
	assert.Equal(t, 2*time.Minute, got.Timeout)
	assert.Equal(t, 250*time.Millisecond, got.CheckInterval)
	assert.Equal(t, 5*time.Second, got.StabilityInterval)
	assert.Equal(t, time.Minute, got.ThermalizeInterval)
	assert.Equal(t, 3, got.MaxCommErrors)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := Default()
	cfg.Serial.Port = "/dev/ttyACM1"
	cfg.GPIB.Address = 4

	require.NoError(t, cfg.Save(path))
	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}
