package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/evrange/core/estimator"
)

func writeFile(t *testing.T, name, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeFile(t, "config.yaml", `vehicle:
  id: "car-1"
  battery_kwh: 85
  default_range_factor: 6
estimator:
  initial_soc: 0.8
  window_size: 4
  policy: "lenient"
mqtt:
  broker: "tcp://localhost:1883"
  client_id: "cli"
  topic_prefix: "fleet"
metrics:
  sinks:
    - type: "nop"
    - type: "mqtt"
server:
  address: ":8080"
logging:
  level: "debug"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	checks := []struct {
		name string
		got  any
		want any
	}{
		{"vehicle.id", cfg.Vehicle.ID, "car-1"},
		{"vehicle.battery_kwh", cfg.Vehicle.BatteryKWh, 85.0},
		{"vehicle.default_range_factor", cfg.Vehicle.DefaultRangeFactor, 6.0},
		{"estimator.initial_soc", cfg.Estimator.SoC(), 0.8},
		{"estimator.window_size", cfg.Estimator.WindowSize, 4},
		{"estimator.policy", cfg.Estimator.ParsedPolicy(), estimator.PolicyLenient},
		{"mqtt.broker", cfg.MQTT.Broker, "tcp://localhost:1883"},
		{"mqtt.client_id", cfg.MQTT.ClientID, "cli"},
		{"metrics.sinks", len(cfg.Metrics.Sinks), 2},
		{"server.address", cfg.Server.Address, ":8080"},
		{"server.enabled", cfg.Server.Enabled(), true},
		{"logging.level", cfg.Logging.Level, "debug"},
	}
	for _, c := range checks {
		assert.Equal(t, c.want, c.got, c.name)
	}
	assert.Equal(t, "tcp://localhost:1883", cfg.Metrics.Sinks[1].Conf["broker"])
	assert.Equal(t, "fleet", cfg.Metrics.Sinks[1].Conf["topic_prefix"])
	assert.Empty(t, cfg.Metrics.Sinks[0].Conf)
}

func TestLoadDefaults(t *testing.T) {
	path := writeFile(t, "config.json", `{"vehicle": {"id": "solo"}}`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "solo", cfg.Vehicle.ID)
	assert.Equal(t, DefaultBatteryKWh, cfg.Vehicle.BatteryKWh)
	assert.Equal(t, DefaultRangeFactor, cfg.Vehicle.DefaultRangeFactor)
	assert.Equal(t, 1.0, cfg.Estimator.SoC())
	assert.Equal(t, estimator.DefaultWindowSize, cfg.Estimator.WindowSize)
	assert.Equal(t, estimator.PolicyStrict, cfg.Estimator.ParsedPolicy())
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.Server.Enabled())
}

func TestLoadExplicitZeroSoC(t *testing.T) {
	path := writeFile(t, "config.yaml", "estimator:\n  initial_soc: 0\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 0.0, cfg.Estimator.SoC())
}

func TestLoadEnvOverride(t *testing.T) {
	path := writeFile(t, "config.yaml", "vehicle:\n  battery_kwh: 60\n")
	t.Setenv("K_VEHICLE__BATTERY_KWH", "72.5")
	t.Setenv("K_ESTIMATOR__POLICY", "lenient")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 72.5, cfg.Vehicle.BatteryKWh)
	assert.Equal(t, estimator.PolicyLenient, cfg.Estimator.ParsedPolicy())
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		file string
		data string
	}{
		{"unsupported format", "config.toml", "x = 1"},
		{"negative battery", "config.yaml", "vehicle:\n  battery_kwh: -1\n"},
		{"negative window", "config.yaml", "estimator:\n  window_size: -2\n"},
		{"unknown policy", "config.yaml", "estimator:\n  policy: sloppy\n"},
		{"unknown log level", "config.yaml", "logging:\n  level: loud\n"},
		{"sink without type", "config.yaml", "metrics:\n  sinks:\n    - conf: {}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tt.file, tt.data))
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	spec := cfg.Vehicle.Spec()
	assert.Equal(t, DefaultVehicleID, spec.ID)
	assert.Equal(t, 60.0, spec.BatteryKWh)
}
