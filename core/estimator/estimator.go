package estimator

import (
	"fmt"
	"math"
	"sync"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/kilianp07/evrange/core/logger"
	"github.com/kilianp07/evrange/core/model"
)

// DefaultWindowSize is the number of consumption samples kept when the caller
// has no preference.
const DefaultWindowSize = 10

// RangeEstimator derives the remaining range of one vehicle. All methods are
// safe for concurrent use.
type RangeEstimator struct {
	mu      sync.Mutex
	spec    model.VehicleSpec
	soc     float64
	size    int
	history *window
	policy  Policy
	log     logger.Logger
	now     func() time.Time
}

// Option customises a RangeEstimator.
type Option func(*RangeEstimator)

// WithPolicy sets the validation policy applied to driving data.
func WithPolicy(p Policy) Option {
	return func(e *RangeEstimator) { e.policy = p }
}

// WithLogger sets the logger receiving rejection diagnostics.
func WithLogger(l logger.Logger) Option {
	return func(e *RangeEstimator) {
		if l != nil {
			e.log = l
		}
	}
}

// WithClock overrides the time source used to stamp reports.
func WithClock(now func() time.Time) Option {
	return func(e *RangeEstimator) {
		if now != nil {
			e.now = now
		}
	}
}

// New creates an estimator for the given vehicle. initialSoC is clamped into
// [0,1]. windowSize is kept as provided; a value <= 0 means no consumption
// history is ever retained and the default range factor is always used.
func New(spec model.VehicleSpec, initialSoC float64, windowSize int, opts ...Option) (*RangeEstimator, error) {
	if err := spec.Validate(); err != nil {
		return nil, fmt.Errorf("vehicle %q: %w", spec.ID, err)
	}
	e := &RangeEstimator{
		spec:    spec,
		soc:     clampSoC(initialSoC),
		size:    windowSize,
		history: newWindow(windowSize),
		policy:  PolicyStrict,
		log:     logger.NopLogger{},
		now:     time.Now,
	}
	for _, o := range opts {
		o(e)
	}
	return e, nil
}

// SetStateOfCharge stores soc clamped into [0,1]. NaN is stored as 0.
func (e *RangeEstimator) SetStateOfCharge(soc float64) {
	e.mu.Lock()
	e.soc = clampSoC(soc)
	e.mu.Unlock()
}

// StateOfCharge returns the current state of charge.
func (e *RangeEstimator) StateOfCharge() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.soc
}

// AddDrivingData records one driving segment. The returned error reports why
// the segment was rejected; a rejected segment leaves the history untouched.
func (e *RangeEstimator) AddDrivingData(distanceKm, energyKWh float64) error {
	if err := e.policy.check(distanceKm, energyKWh); err != nil {
		if e.policy.logsRejections() {
			e.log.Warnf("rejected driving data for %s: distance=%g km energy=%g kWh: %v",
				e.spec.ID, distanceKm, energyKWh, err)
		}
		return fmt.Errorf("driving data rejected: %w", err)
	}
	e.mu.Lock()
	e.history.push(energyKWh / distanceKm)
	e.mu.Unlock()
	return nil
}

// AddSegment records s. See AddDrivingData.
func (e *RangeEstimator) AddSegment(s model.DrivingSegment) error {
	return e.AddDrivingData(s.DistanceKm, s.EnergyKWh)
}

// EstimatedRangeKm returns the estimated remaining range in kilometres.
func (e *RangeEstimator) EstimatedRangeKm() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	km, _ := e.rangeLocked(e.history.values())
	return km
}

// AverageConsumption returns the mean of the retained samples in kWh/km. The
// boolean is false when the history is empty.
func (e *RangeEstimator) AverageConsumption() (float64, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.history.len() == 0 {
		return 0, false
	}
	return stat.Mean(e.history.values(), nil), true
}

// History returns a copy of the retained consumption samples, oldest first.
func (e *RangeEstimator) History() []float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.history.values()
}

// WindowSize returns the configured maximum number of samples.
func (e *RangeEstimator) WindowSize() int { return e.size }

// Spec returns the vehicle specification the estimator was built with.
func (e *RangeEstimator) Spec() model.VehicleSpec { return e.spec }

// Policy returns the validation policy in use.
func (e *RangeEstimator) Policy() Policy { return e.policy }

// Reset drops the consumption history. The state of charge is kept.
func (e *RangeEstimator) Reset() {
	e.mu.Lock()
	e.history.reset()
	e.mu.Unlock()
}

// Report returns a snapshot of the current estimate.
func (e *RangeEstimator) Report() model.RangeReport {
	e.mu.Lock()
	defer e.mu.Unlock()
	samples := e.history.values()
	r := model.RangeReport{
		VehicleID:  e.spec.ID,
		SoC:        e.soc,
		BatteryKWh: e.spec.BatteryKWh,
		Samples:    len(samples),
		WindowSize: e.size,
		Time:       e.now(),
	}
	if len(samples) > 0 {
		r.AvgConsumption, r.StdConsumption = stat.PopMeanStdDev(samples, nil)
		// Samples near the float64 limit can overflow the sums.
		if !isFinite(r.AvgConsumption) {
			r.AvgConsumption = 0
		}
		if !isFinite(r.StdConsumption) {
			r.StdConsumption = 0
		}
	}
	r.RangeKm, r.Fallback = e.rangeLocked(samples)
	return r
}

func (e *RangeEstimator) rangeLocked(samples []float64) (float64, bool) {
	if len(samples) == 0 {
		return e.spec.FallbackRangeKm(e.soc), true
	}
	avg := stat.Mean(samples, nil)
	// A zero, negative or non-finite average cannot produce a meaningful range.
	if !(avg > 0) || math.IsInf(avg, 1) {
		return e.spec.FallbackRangeKm(e.soc), true
	}
	km := e.soc * e.spec.BatteryKWh / avg
	if !isFinite(km) {
		return e.spec.FallbackRangeKm(e.soc), true
	}
	return km, false
}

func isFinite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }

func clampSoC(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
