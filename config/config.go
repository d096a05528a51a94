package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/evrange/core/metrics"
	"github.com/kilianp07/evrange/infra/mqtt"
)

// EnvPrefix marks environment variables overriding file values. Nested keys
// are separated by a double underscore, e.g. K_VEHICLE__BATTERY_KWH.
const EnvPrefix = "K_"

type Config struct {
	Vehicle   VehicleConfig   `json:"vehicle"`
	Estimator EstimatorConfig `json:"estimator"`
	Metrics   metrics.Config  `json:"metrics"`
	MQTT      mqtt.Config     `json:"mqtt"`
	Server    ServerConfig    `json:"server"`
	Logging   LoggingConfig   `json:"logging"`
}

// Default returns a configuration with every default applied.
func Default() *Config {
	var cfg Config
	cfg.SetDefaults()
	return &cfg
}

func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides
	if err := k.Load(env.Provider(EnvPrefix, "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	// An mqtt sink without its own settings publishes through the top level
	// mqtt connection.
	if k.Exists("mqtt") {
		shared := k.Cut("mqtt").Raw()
		for i, s := range cfg.Metrics.Sinks {
			if s.Type == "mqtt" && len(s.Conf) == 0 {
				cfg.Metrics.Sinks[i].Conf = shared
			}
		}
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SetDefaults fills every section's zero values.
func (c *Config) SetDefaults() {
	c.Vehicle.SetDefaults()
	c.Estimator.SetDefaults()
	c.Logging.SetDefaults()
}

// Validate checks every section.
func (c Config) Validate() error {
	if err := c.Vehicle.Validate(); err != nil {
		return fmt.Errorf("vehicle: %w", err)
	}
	if err := c.Estimator.Validate(); err != nil {
		return fmt.Errorf("estimator: %w", err)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	for i, s := range c.Metrics.Sinks {
		if s.Type == "" {
			return fmt.Errorf("metrics: sink %d has no type", i)
		}
	}
	return nil
}
