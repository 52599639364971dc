package utils

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ─── Sensor configs ─────────────────────────────────────────────────────

// Motion backends.
const (
	BackendSimulated   = "simulated"
	BackendIIO         = "iio"
	BackendUnavailable = "unavailable"
)

type SimulationConfig struct {
	Available    bool    `yaml:"available"`
	AmplitudeG   float64 `yaml:"amplitude_g"`
	FrequencyHz  float64 `yaml:"frequency_hz"`
	NoiseG       float64 `yaml:"noise_g"`
	ChannelDepth int     `yaml:"channel_depth"`
}

type IIOConfig struct {
	DevicePath string  `yaml:"device_path"` // e.g. /sys/bus/iio/devices/iio:device0
	LowPass    float64 `yaml:"low_pass_alpha"`
}

type SensorConfig struct {
	Backend    string           `yaml:"backend"`
	Simulation SimulationConfig `yaml:"simulation"`
	IIO        IIOConfig        `yaml:"iio"`
}

// ─── Export / logging configs ───────────────────────────────────────────

type ExportConfig struct {
	Dir       string `yaml:"dir"`
	Overwrite bool   `yaml:"overwrite"`
}

type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // json | console
	File   string `yaml:"file"`
}

// Config is the top-level structure for motion.yaml.
type Config struct {
	Sensor SensorConfig `yaml:"sensor"`
	Export ExportConfig `yaml:"export"`
	Log    LogConfig    `yaml:"log"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.Sensor.Simulation.Available = true
	cfg.applyDefaults()
	return cfg
}

// LoadConfig reads and parses motion.yaml. Missing values fall back to
// DefaultConfig.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg := &Config{}
	cfg.Sensor.Simulation.Available = true
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Sensor.Backend == "" {
		c.Sensor.Backend = BackendSimulated
	}
	sim := &c.Sensor.Simulation
	if sim.AmplitudeG == 0 {
		sim.AmplitudeG = 0.05
	}
	if sim.FrequencyHz == 0 {
		sim.FrequencyHz = 1.2
	}
	if sim.NoiseG == 0 {
		sim.NoiseG = 0.005
	}
	if sim.ChannelDepth <= 0 {
		sim.ChannelDepth = 16
	}
	if c.Sensor.IIO.DevicePath == "" {
		c.Sensor.IIO.DevicePath = "/sys/bus/iio/devices/iio:device0"
	}
	if c.Sensor.IIO.LowPass == 0 {
		c.Sensor.IIO.LowPass = 0.8
	}
	if c.Export.Dir == "" {
		c.Export.Dir = "."
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
}

// Validate rejects unknown backends and out-of-range filter constants.
func (c *Config) Validate() error {
	switch c.Sensor.Backend {
	case BackendSimulated, BackendIIO, BackendUnavailable:
	default:
		return fmt.Errorf("unknown sensor backend %q", c.Sensor.Backend)
	}
	if a := c.Sensor.IIO.LowPass; a <= 0 || a >= 1 {
		return fmt.Errorf("iio low_pass_alpha must be in (0,1), got %v", a)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("unknown log format %q", c.Log.Format)
	}
	return nil
}
