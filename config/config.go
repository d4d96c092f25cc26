// Package config loads run configuration for the example programs: the
// serial link to the GPIB adapter, instrument addressing, and the
// temperature-wait parameters.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/qmlab/instruments/oxford"
)

// Config is the application configuration.
type Config struct {
	Serial SerialConfig `yaml:"serial"`
	GPIB   GPIBConfig   `yaml:"gpib"`
	ITC503 ITC503Config `yaml:"itc503"`
}

// SerialConfig locates the GPIB adapter's serial port.
type SerialConfig struct {
	Port string `yaml:"port"` // empty means autodetect via lib/find
}

// GPIBConfig addresses the instrument on the bus.
type GPIBConfig struct {
	Address          int `yaml:"address"`
	SecondaryAddress int `yaml:"secondary_address"` // 0 means none
}

// ITC503Config holds the temperature controller parameters.
type ITC503Config struct {
	MinTemperature float64    `yaml:"min_temperature"` // Kelvin
	MaxTemperature float64    `yaml:"max_temperature"` // Kelvin
	Wait           WaitConfig `yaml:"wait"`
}

// WaitConfig holds the set-point wait parameters. Intervals are plain
// seconds in the file.
type WaitConfig struct {
	ToleranceKelvin           float64 `yaml:"tolerance_kelvin"`
	TimeoutSeconds            float64 `yaml:"timeout_seconds"`
	CheckIntervalSeconds      float64 `yaml:"check_interval_seconds"`
	StabilityIntervalSeconds  float64 `yaml:"stability_interval_seconds"`
	ThermalizeIntervalSeconds float64 `yaml:"thermalize_interval_seconds"`
	MaxCommErrors             int     `yaml:"max_comm_errors"`
}

// AsWaitConfig converts the file representation to the driver's wait
// configuration.
func (w WaitConfig) AsWaitConfig() oxford.WaitConfig {
	return oxford.WaitConfig{
		Tolerance:          w.ToleranceKelvin,
		Timeout:            secs(w.TimeoutSeconds),
		CheckInterval:      secs(w.CheckIntervalSeconds),
		StabilityInterval:  secs(w.StabilityIntervalSeconds),
		ThermalizeInterval: secs(w.ThermalizeIntervalSeconds),
		MaxCommErrors:      w.MaxCommErrors,
	}
}

func secs(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// Default returns a configuration with sensible values for a helium-flow
// cryostat.
func Default() *Config {
	return &Config{
		Serial: SerialConfig{
			Port: "", // autodetect
		},
		GPIB: GPIBConfig{
			Address: 24, // factory default of the ITC503
		},
		ITC503: ITC503Config{
			MinTemperature: 0,
			MaxTemperature: 1677.7,
			Wait: WaitConfig{
				ToleranceKelvin:           0.01,
				TimeoutSeconds:            3600,
				CheckIntervalSeconds:      0.5,
				StabilityIntervalSeconds:  10,
				ThermalizeIntervalSeconds: 300,
			},
		},
	}
}

// Load loads configuration from a YAML file. A missing file yields the
// defaults; fields absent from the file keep their default values.
func Load(filename string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config %s: %w", filename, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", filename, err)
	}
	return cfg, nil
}

// Save writes the configuration to a YAML file.
func (c *Config) Save(filename string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return fmt.Errorf("writing config %s: %w", filename, err)
	}
	return nil
}
