package events

import (
	"time"

	"github.com/kilianp07/evrange/core/model"
)

// Event is implemented by every event published by the range service.
type Event interface {
	isEvent()
}

// SampleEvent is published for each driving segment submitted to the
// estimator. Err is nil when the segment was accepted.
type SampleEvent struct {
	VehicleID   string
	Segment     model.DrivingSegment
	Consumption float64
	Err         error
	Time        time.Time
}

// SoCEvent is published when the state of charge changes. Applied is the value
// stored after clamping.
type SoCEvent struct {
	VehicleID string
	Requested float64
	Applied   float64
	Time      time.Time
}

// EstimateEvent carries a freshly computed range report.
type EstimateEvent struct {
	Report  model.RangeReport
	Trigger string
}

func (SampleEvent) isEvent()   {}
func (SoCEvent) isEvent()      {}
func (EstimateEvent) isEvent() {}
