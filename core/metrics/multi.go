package metrics

import "errors"

// MultiSink fans events out to multiple sinks. Optional recorders are only
// called on sinks implementing them.
type MultiSink struct {
	Sinks []RangeSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...RangeSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordRangeEstimate forwards the estimate to every sink and joins the errors.
func (m *MultiSink) RecordRangeEstimate(ev RangeEstimateEvent) error {
	var errs []error
	for _, s := range m.Sinks {
		if err := s.RecordRangeEstimate(ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// RecordDrivingSample forwards driving samples.
func (m *MultiSink) RecordDrivingSample(ev DrivingSampleEvent) error {
	var errs []error
	for _, s := range m.Sinks {
		if rec, ok := s.(DrivingSampleRecorder); ok {
			if err := rec.RecordDrivingSample(ev); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// RecordStateOfCharge forwards state of charge updates.
func (m *MultiSink) RecordStateOfCharge(ev StateOfChargeEvent) error {
	var errs []error
	for _, s := range m.Sinks {
		if rec, ok := s.(StateOfChargeRecorder); ok {
			if err := rec.RecordStateOfCharge(ev); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// Close closes every sink implementing Closer.
func (m *MultiSink) Close() error {
	var errs []error
	for _, s := range m.Sinks {
		if c, ok := s.(Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}
