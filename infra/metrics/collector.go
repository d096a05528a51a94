package metrics

import (
	"context"

	"github.com/kilianp07/evrange/core/estimator"
	"github.com/kilianp07/evrange/core/events"
	coremetrics "github.com/kilianp07/evrange/core/metrics"
	"github.com/kilianp07/evrange/infra/logger"
	"github.com/kilianp07/evrange/internal/eventbus"
)

// StartEventCollector subscribes to the bus and forwards events to the sink.
// It stops when the context is canceled or the bus is closed; events still
// buffered when the bus closes are delivered first. The returned channel is
// closed once the collector has stopped.
func StartEventCollector(ctx context.Context, bus *eventbus.Bus[events.Event], sink coremetrics.RangeSink, log logger.Logger) <-chan struct{} {
	done := make(chan struct{})
	if bus == nil || sink == nil {
		close(done)
		return done
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	sub := bus.Subscribe()
	go func() {
		defer close(done)
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				if err := forward(ev, sink); err != nil {
					log.Errorf("record %T: %v", ev, err)
				}
			}
		}
	}()
	return done
}

func forward(ev events.Event, sink coremetrics.RangeSink) error {
	switch e := ev.(type) {
	case events.EstimateEvent:
		return sink.RecordRangeEstimate(coremetrics.RangeEstimateEvent{Report: e.Report, Trigger: e.Trigger})
	case events.SampleEvent:
		r, ok := sink.(coremetrics.DrivingSampleRecorder)
		if !ok {
			return nil
		}
		return r.RecordDrivingSample(coremetrics.DrivingSampleEvent{
			VehicleID:   e.VehicleID,
			Segment:     e.Segment,
			Consumption: e.Consumption,
			Accepted:    e.Err == nil,
			Reason:      estimator.RejectionReason(e.Err),
			Time:        e.Time,
		})
	case events.SoCEvent:
		r, ok := sink.(coremetrics.StateOfChargeRecorder)
		if !ok {
			return nil
		}
		return r.RecordStateOfCharge(coremetrics.StateOfChargeEvent{
			VehicleID: e.VehicleID,
			Requested: e.Requested,
			Applied:   e.Applied,
			Time:      e.Time,
		})
	}
	return nil
}
