package model

import (
	"fmt"
	"math"
	"time"
)

// VehicleSpec describes the static characteristics of the modeled vehicle.
type VehicleSpec struct {
	ID                 string
	BatteryKWh         float64 // total battery capacity in kWh
	DefaultRangeFactor float64 // fallback efficiency in km/kWh when no consumption is known
}

// Validate checks that the vehicle specification is sound.
// In particular BatteryKWh and DefaultRangeFactor must be positive.
func (v VehicleSpec) Validate() error {
	if v.BatteryKWh <= 0 || math.IsNaN(v.BatteryKWh) || math.IsInf(v.BatteryKWh, 0) {
		return fmt.Errorf("battery capacity must be positive")
	}
	if v.DefaultRangeFactor <= 0 || math.IsNaN(v.DefaultRangeFactor) || math.IsInf(v.DefaultRangeFactor, 0) {
		return fmt.Errorf("default range factor must be positive")
	}
	return nil
}

// FallbackRangeKm returns the range obtained with the default efficiency for the
// given state of charge.
func (v VehicleSpec) FallbackRangeKm(soc float64) float64 {
	return soc * v.BatteryKWh * v.DefaultRangeFactor
}

// DrivingSegment is a single measured stretch of driving.
type DrivingSegment struct {
	DistanceKm float64
	EnergyKWh  float64
	Time       time.Time
}

// Consumption returns the energy used per kilometre. Callers must ensure the
// distance is positive.
func (s DrivingSegment) Consumption() float64 {
	return s.EnergyKWh / s.DistanceKm
}

// RangeReport is a point-in-time snapshot of a range estimate.
type RangeReport struct {
	VehicleID      string    `json:"vehicle_id"`
	SoC            float64   `json:"soc"`
	BatteryKWh     float64   `json:"battery_kwh"`
	AvgConsumption float64   `json:"avg_consumption_kwh_per_km"`
	StdConsumption float64   `json:"std_consumption_kwh_per_km"`
	Samples        int       `json:"samples"`
	WindowSize     int       `json:"window_size"`
	RangeKm        float64   `json:"range_km"`
	Fallback       bool      `json:"fallback"` // true when the default range factor was used
	Time           time.Time `json:"time"`
}

// UsableEnergyKWh returns the energy left in the battery for the report's SoC.
func (r RangeReport) UsableEnergyKWh() float64 {
	return r.SoC * r.BatteryKWh
}
