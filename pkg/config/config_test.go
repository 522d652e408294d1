package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.NotNil(t, cfg)
	assert.Equal(t, "/dev/ttyACM0", cfg.Serial.Port)
	assert.Equal(t, 115200, cfg.Serial.BaudRate)
	assert.Equal(t, float64(10), cfg.Sensor.LoadResistance)
	assert.Equal(t, float64(3.3), cfg.Sensor.SupplyVoltage)
	assert.Equal(t, uint32(65535), cfg.Sensor.FullScale)
	assert.Equal(t, time.Second, cfg.Monitor.Interval)
	assert.Equal(t, 30*time.Second, cfg.Monitor.Warmup)
	assert.Equal(t, []string{"CO2", "NH3", "Benzene", "Smoke"}, cfg.Monitor.Gases)
	assert.Equal(t, ":9135", cfg.Metrics.Listen)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, uint32(32768), cfg.Mock.CleanAirRaw)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_FileNotExists(t *testing.T) {
	cfg, err := Load("nonexistent.yaml")
	require.NoError(t, err)
	assert.NotNil(t, cfg)
	assert.Equal(t, "/dev/ttyACM0", cfg.Serial.Port)
}

func TestLoad_ValidYAML(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "test_config_*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	yamlContent := `
serial:
  port: "COM4"
  baud_rate: 57600

sensor:
  load_resistance: 20
  supply_voltage: 5
  full_scale: 65535
  channel: 2

monitor:
  interval: 5s
  warmup: 2m
  gases: [CO2, Smoke]

metrics:
  listen: "127.0.0.1:9000"

log:
  level: debug

mock:
  clean_air_raw: 30000
  pollution_raw: 50000
  pollution_period: 10s
  noise: 100
  sample_rate: 50ms
`

	_, err = tmpfile.WriteString(yamlContent)
	require.NoError(t, err)
	require.NoError(t, tmpfile.Close())

	cfg, err := Load(tmpfile.Name())
	require.NoError(t, err)
	assert.NotNil(t, cfg)

	assert.Equal(t, "COM4", cfg.Serial.Port)
	assert.Equal(t, 57600, cfg.Serial.BaudRate)
	assert.Equal(t, float64(20), cfg.Sensor.LoadResistance)
	assert.Equal(t, float64(5), cfg.Sensor.SupplyVoltage)
	assert.Equal(t, uint32(65535), cfg.Sensor.FullScale)
	assert.Equal(t, uint8(2), cfg.Sensor.Channel)
	assert.Equal(t, 5*time.Second, cfg.Monitor.Interval)
	assert.Equal(t, 2*time.Minute, cfg.Monitor.Warmup)
	assert.Equal(t, []string{"CO2", "Smoke"}, cfg.Monitor.Gases)
	assert.Equal(t, "127.0.0.1:9000", cfg.Metrics.Listen)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, uint32(30000), cfg.Mock.CleanAirRaw)
	assert.Equal(t, uint32(50000), cfg.Mock.PollutionRaw)
	assert.Equal(t, 10*time.Second, cfg.Mock.PollutionPeriod)
	assert.Equal(t, float64(100), cfg.Mock.Noise)
	assert.Equal(t, 50*time.Millisecond, cfg.Mock.SampleRate)
}

func TestLoad_InvalidYAML(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "test_config_*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	_, err = tmpfile.WriteString("invalid: yaml: content: [")
	require.NoError(t, err)
	require.NoError(t, tmpfile.Close())

	cfg, err := Load(tmpfile.Name())
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoad_PartialYAML(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "test_config_*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	yamlContent := `
serial:
  port: "/dev/ttyUSB1"
`

	_, err = tmpfile.WriteString(yamlContent)
	require.NoError(t, err)
	require.NoError(t, tmpfile.Close())

	cfg, err := Load(tmpfile.Name())
	require.NoError(t, err)
	assert.NotNil(t, cfg)

	// Should use defaults for missing fields
	assert.Equal(t, "/dev/ttyUSB1", cfg.Serial.Port)
	assert.Equal(t, 115200, cfg.Serial.BaudRate)            // default
	assert.Equal(t, float64(10), cfg.Sensor.LoadResistance) // default
	assert.Equal(t, time.Second, cfg.Monitor.Interval)      // default
	assert.Equal(t, uint32(52000), cfg.Mock.PollutionRaw)   // default
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{
			name: "negative load resistance",
			yaml: "sensor:\n  load_resistance: -10\n",
		},
		{
			name: "negative supply",
			yaml: "sensor:\n  supply_voltage: -3.3\n",
		},
		{
			name: "negative interval",
			yaml: "monitor:\n  interval: -1s\n",
		},
		{
			name: "negative mock sample rate",
			yaml: "mock:\n  sample_rate: -10ms\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpfile, err := os.CreateTemp("", "test_config_*.yaml")
			require.NoError(t, err)
			defer os.Remove(tmpfile.Name())

			_, err = tmpfile.WriteString(tt.yaml)
			require.NoError(t, err)
			require.NoError(t, tmpfile.Close())

			cfg, err := Load(tmpfile.Name())
			assert.Error(t, err)
			assert.Nil(t, cfg)
		})
	}
}

func TestSave(t *testing.T) {
	cfg := Default()
	cfg.Serial.Port = "/dev/ttyUSB0"
	cfg.Monitor.Interval = 15 * time.Second
	cfg.Monitor.Gases = []string{"NH3"}

	tmpfile, err := os.CreateTemp("", "test_save_*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	err = cfg.Save(tmpfile.Name())
	require.NoError(t, err)

	// Load it back and verify
	loaded, err := Load(tmpfile.Name())
	require.NoError(t, err)
	assert.Equal(t, "/dev/ttyUSB0", loaded.Serial.Port)
	assert.Equal(t, 15*time.Second, loaded.Monitor.Interval)
	assert.Equal(t, []string{"NH3"}, loaded.Monitor.Gases)
}

func TestLoad_SmallFullScaleIgnoresMockCodes(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "test_config_*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	// 10-bit ADC wired directly; the mock defaults are far above its full scale.
	_, err = tmpfile.WriteString("sensor:\n  full_scale: 1023\n")
	require.NoError(t, err)
	require.NoError(t, tmpfile.Close())

	cfg, err := Load(tmpfile.Name())
	require.NoError(t, err)
	assert.Equal(t, uint32(1023), cfg.Sensor.FullScale)
	assert.Equal(t, uint32(32768), cfg.Mock.CleanAirRaw)
}
