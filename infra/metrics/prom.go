package metrics

import (
	"errors"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/evrange/core/metrics"
)

// PromSink exposes range estimates as Prometheus metrics.
type PromSink struct {
	rangeKm     *prometheus.GaugeVec
	soc         *prometheus.GaugeVec
	consumption *prometheus.GaugeVec
	samplesHeld *prometheus.GaugeVec
	samples     *prometheus.CounterVec
	fallbacks   *prometheus.CounterVec
}

// NewPromSink registers range metrics on the default Prometheus registerer.
// The metrics are served by StartStatusServer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer. Collectors
// already registered by an earlier sink are reused.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{
		rangeKm: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "ev_range_estimated_km",
			Help: "Latest estimated remaining range in kilometres",
		}, []string{"vehicle_id"}),
		soc: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "ev_state_of_charge_ratio",
			Help: "Latest battery state of charge between 0 and 1",
		}, []string{"vehicle_id"}),
		consumption: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "ev_consumption_avg_kwh_per_km",
			Help: "Rolling average energy consumption",
		}, []string{"vehicle_id"}),
		samplesHeld: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "ev_consumption_window_samples",
			Help: "Number of consumption samples in the rolling window",
		}, []string{"vehicle_id"}),
		samples: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ev_driving_samples_total",
			Help: "Driving segments submitted to the estimator",
		}, []string{"vehicle_id", "accepted", "reason"}),
		fallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ev_range_fallback_total",
			Help: "Estimates computed with the default range factor",
		}, []string{"vehicle_id"}),
	}
	var err error
	if s.rangeKm, err = register(reg, s.rangeKm); err != nil {
		return nil, err
	}
	if s.soc, err = register(reg, s.soc); err != nil {
		return nil, err
	}
	if s.consumption, err = register(reg, s.consumption); err != nil {
		return nil, err
	}
	if s.samplesHeld, err = register(reg, s.samplesHeld); err != nil {
		return nil, err
	}
	if s.samples, err = register(reg, s.samples); err != nil {
		return nil, err
	}
	if s.fallbacks, err = register(reg, s.fallbacks); err != nil {
		return nil, err
	}
	return s, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordRangeEstimate updates the gauges for the reported vehicle.
func (s *PromSink) RecordRangeEstimate(ev coremetrics.RangeEstimateEvent) error {
	r := ev.Report
	s.rangeKm.WithLabelValues(r.VehicleID).Set(r.RangeKm)
	s.soc.WithLabelValues(r.VehicleID).Set(r.SoC)
	s.consumption.WithLabelValues(r.VehicleID).Set(r.AvgConsumption)
	s.samplesHeld.WithLabelValues(r.VehicleID).Set(float64(r.Samples))
	if r.Fallback {
		s.fallbacks.WithLabelValues(r.VehicleID).Inc()
	}
	return nil
}

// RecordDrivingSample counts accepted and rejected segments.
func (s *PromSink) RecordDrivingSample(ev coremetrics.DrivingSampleEvent) error {
	reason := ev.Reason
	if reason == "" {
		reason = "none"
	}
	s.samples.WithLabelValues(ev.VehicleID, strconv.FormatBool(ev.Accepted), reason).Inc()
	return nil
}

// RecordStateOfCharge updates the state of charge gauge.
func (s *PromSink) RecordStateOfCharge(ev coremetrics.StateOfChargeEvent) error {
	s.soc.WithLabelValues(ev.VehicleID).Set(ev.Applied)
	return nil
}
