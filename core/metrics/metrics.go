package metrics

import (
	"time"

	"github.com/kilianp07/evrange/core/model"
)

// RangeEstimateEvent wraps a range report produced by the estimator.
type RangeEstimateEvent struct {
	Report model.RangeReport
	// Trigger names what caused the estimate, e.g. "soc", "sample" or "query".
	Trigger string
}

// RangeSink records range estimates for observability purposes.
type RangeSink interface {
	RecordRangeEstimate(ev RangeEstimateEvent) error
}

// DrivingSampleEvent describes one driving segment submitted to the estimator.
type DrivingSampleEvent struct {
	VehicleID   string
	Segment     model.DrivingSegment
	Consumption float64 // kWh/km, zero when rejected
	Accepted    bool
	Reason      string // rejection reason, empty when accepted
	Time        time.Time
}

// DrivingSampleRecorder records accepted and rejected driving samples.
type DrivingSampleRecorder interface {
	RecordDrivingSample(ev DrivingSampleEvent) error
}

// StateOfChargeEvent is a state of charge update after clamping.
type StateOfChargeEvent struct {
	VehicleID string
	Requested float64
	Applied   float64
	Time      time.Time
}

// StateOfChargeRecorder records state of charge updates.
type StateOfChargeRecorder interface {
	RecordStateOfCharge(ev StateOfChargeEvent) error
}

// Closer is implemented by sinks holding network resources.
type Closer interface {
	Close() error
}

// NopSink implements every recorder with no-op methods.
type NopSink struct{}

func (NopSink) RecordRangeEstimate(RangeEstimateEvent) error { return nil }
func (NopSink) RecordDrivingSample(DrivingSampleEvent) error { return nil }
func (NopSink) RecordStateOfCharge(StateOfChargeEvent) error { return nil }
