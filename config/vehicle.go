package config

import (
	"fmt"

	"github.com/kilianp07/evrange/core/estimator"
	"github.com/kilianp07/evrange/core/model"
)

const (
	// DefaultBatteryKWh is the pack capacity assumed when none is configured.
	DefaultBatteryKWh = 60.0
	// DefaultRangeFactor is the fallback efficiency in km per kWh.
	DefaultRangeFactor = 5.0
	// DefaultVehicleID names the vehicle in reports and metrics labels.
	DefaultVehicleID = "ev"
)

// VehicleConfig describes the modeled vehicle.
type VehicleConfig struct {
	ID                 string  `json:"id"`
	BatteryKWh         float64 `json:"battery_kwh"`
	DefaultRangeFactor float64 `json:"default_range_factor"`
}

// SetDefaults applies sane defaults.
func (c *VehicleConfig) SetDefaults() {
	if c.ID == "" {
		c.ID = DefaultVehicleID
	}
	if c.BatteryKWh == 0 {
		c.BatteryKWh = DefaultBatteryKWh
	}
	if c.DefaultRangeFactor == 0 {
		c.DefaultRangeFactor = DefaultRangeFactor
	}
}

// Validate checks mandatory fields.
func (c VehicleConfig) Validate() error { return c.Spec().Validate() }

// Spec converts the configuration into a vehicle specification.
func (c VehicleConfig) Spec() model.VehicleSpec {
	return model.VehicleSpec{ID: c.ID, BatteryKWh: c.BatteryKWh, DefaultRangeFactor: c.DefaultRangeFactor}
}

// EstimatorConfig tunes the range estimator.
type EstimatorConfig struct {
	// InitialSoC is a pointer so that an explicit 0 can be told apart from an
	// unset value.
	InitialSoC *float64 `json:"initial_soc"`
	WindowSize int      `json:"window_size"`
	Policy     string   `json:"policy"`
}

// SetDefaults applies sane defaults.
func (c *EstimatorConfig) SetDefaults() {
	if c.InitialSoC == nil {
		full := 1.0
		c.InitialSoC = &full
	}
	if c.WindowSize == 0 {
		c.WindowSize = estimator.DefaultWindowSize
	}
	if c.Policy == "" {
		c.Policy = estimator.PolicyStrict.String()
	}
}

// Validate checks mandatory fields.
func (c EstimatorConfig) Validate() error {
	if c.WindowSize < 0 {
		return fmt.Errorf("window_size must not be negative")
	}
	if _, err := estimator.ParsePolicy(c.Policy); err != nil {
		return err
	}
	return nil
}

// SoC returns the configured initial state of charge.
func (c EstimatorConfig) SoC() float64 {
	if c.InitialSoC == nil {
		return 1.0
	}
	return *c.InitialSoC
}

// ParsedPolicy returns the configured validation policy. Invalid values fall
// back to the strict policy; Validate reports them.
func (c EstimatorConfig) ParsedPolicy() estimator.Policy {
	p, err := estimator.ParsePolicy(c.Policy)
	if err != nil {
		return estimator.PolicyStrict
	}
	return p
}
