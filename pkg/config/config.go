package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	Serial  SerialConfig  `yaml:"serial"`
	Sensor  SensorConfig  `yaml:"sensor"`
	Monitor MonitorConfig `yaml:"monitor"`
	Metrics MetricsConfig `yaml:"metrics"`
	Log     LogConfig     `yaml:"log"`
	Mock    MockConfig    `yaml:"mock"`
}

// SerialConfig contains serial port configuration.
type SerialConfig struct {
	Port     string `yaml:"port"`
	BaudRate int    `yaml:"baud_rate"`
}

// SensorConfig describes how the MQ135 divider is wired.
// There is no R0 here: the baseline is established by calibration on every start.
type SensorConfig struct {
	LoadResistance float64 `yaml:"load_resistance"` // RL in kOhm
	SupplyVoltage  float64 `yaml:"supply_voltage"`  // V
	FullScale      uint32  `yaml:"full_scale"`      // ADC code at SupplyVoltage
	Channel        uint8   `yaml:"channel"`         // Channel index in the serial stream
}

// MonitorConfig contains polling parameters.
type MonitorConfig struct {
	Interval time.Duration `yaml:"interval"`
	Warmup   time.Duration `yaml:"warmup"` // Heater warm-up before calibration
	Gases    []string      `yaml:"gases"`
}

// MetricsConfig contains the Prometheus endpoint configuration.
type MetricsConfig struct {
	Listen string `yaml:"listen"`
}

// LogConfig contains logging configuration.
type LogConfig struct {
	Level string `yaml:"level"`
}

// MockConfig contains mock device configuration.
type MockConfig struct {
	CleanAirRaw     uint32        `yaml:"clean_air_raw"`    // Raw code produced in clean air
	PollutionRaw    uint32        `yaml:"pollution_raw"`    // Raw code at the peak of a pollution event
	PollutionPeriod time.Duration `yaml:"pollution_period"` // Time between pollution events (0 = never)
	Noise           float64       `yaml:"noise"`            // Noise amplitude in raw codes
	SampleRate      time.Duration `yaml:"sample_rate"`
}

// Default returns a default configuration with sensible values.
func Default() *Config {
	return &Config{
		Serial: SerialConfig{
			Port:     "/dev/ttyACM0",
			BaudRate: 115200,
		},
		Sensor: SensorConfig{
			LoadResistance: 10,
			SupplyVoltage:  3.3,
			FullScale:      0xFFFF, // firmware streams 16-bit codes
			Channel:        0,
		},
		Monitor: MonitorConfig{
			Interval: time.Second,
			Warmup:   30 * time.Second,
			Gases:    []string{"CO2", "NH3", "Benzene", "Smoke"},
		},
		Metrics: MetricsConfig{
			Listen: ":9135",
		},
		Log: LogConfig{
			Level: "info",
		},
		Mock: MockConfig{
			CleanAirRaw:     32768,
			PollutionRaw:    52000,
			PollutionPeriod: time.Minute,
			Noise:           8,
			SampleRate:      100 * time.Millisecond,
		},
	}
}

// Load loads configuration from a YAML file. If the file doesn't exist or
// fields are missing, it uses default values.
func Load(filename string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			// File doesn't exist, return defaults
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.ensureDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save saves the configuration to a YAML file.
func (c *Config) Save(filename string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks values that defaults cannot repair.
func (c *Config) Validate() error {
	if c.Sensor.LoadResistance <= 0 {
		return fmt.Errorf("sensor.load_resistance must be positive, got %v", c.Sensor.LoadResistance)
	}
	if c.Sensor.SupplyVoltage <= 0 {
		return fmt.Errorf("sensor.supply_voltage must be positive, got %v", c.Sensor.SupplyVoltage)
	}
	if c.Monitor.Interval <= 0 {
		return fmt.Errorf("monitor.interval must be positive, got %v", c.Monitor.Interval)
	}
	if c.Mock.SampleRate <= 0 {
		return fmt.Errorf("mock.sample_rate must be positive, got %v", c.Mock.SampleRate)
	}
	return nil
}

// ensureDefaults ensures that all required fields have default values if missing.
func (c *Config) ensureDefaults() {
	def := Default()

	if c.Serial.Port == "" {
		c.Serial.Port = def.Serial.Port
	}
	if c.Serial.BaudRate == 0 {
		c.Serial.BaudRate = def.Serial.BaudRate
	}

	if c.Sensor.LoadResistance == 0 {
		c.Sensor.LoadResistance = def.Sensor.LoadResistance
	}
	if c.Sensor.SupplyVoltage == 0 {
		c.Sensor.SupplyVoltage = def.Sensor.SupplyVoltage
	}
	if c.Sensor.FullScale == 0 {
		c.Sensor.FullScale = def.Sensor.FullScale
	}

	if c.Monitor.Interval == 0 {
		c.Monitor.Interval = def.Monitor.Interval
	}
	if len(c.Monitor.Gases) == 0 {
		c.Monitor.Gases = def.Monitor.Gases
	}

	if c.Metrics.Listen == "" {
		c.Metrics.Listen = def.Metrics.Listen
	}
	if c.Log.Level == "" {
		c.Log.Level = def.Log.Level
	}

	if c.Mock.CleanAirRaw == 0 {
		c.Mock.CleanAirRaw = def.Mock.CleanAirRaw
	}
	if c.Mock.PollutionRaw == 0 {
		c.Mock.PollutionRaw = def.Mock.PollutionRaw
	}
	if c.Mock.SampleRate == 0 {
		c.Mock.SampleRate = def.Mock.SampleRate
	}
}
