package app

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kilianp07/evrange/app/plugins"
	"github.com/kilianp07/evrange/config"
	"github.com/kilianp07/evrange/core/estimator"
	"github.com/kilianp07/evrange/core/events"
	coremetrics "github.com/kilianp07/evrange/core/metrics"
	"github.com/kilianp07/evrange/core/model"
	"github.com/kilianp07/evrange/infra/logger"
	"github.com/kilianp07/evrange/infra/metrics"
	"github.com/kilianp07/evrange/internal/eventbus"
)

// EventBuffer is the capacity of the service event bus. Events published while
// the collector lags this far behind are dropped and counted.
const EventBuffer = 1024

// Estimate triggers carried by published range reports.
const (
	TriggerSoC    = "soc"
	TriggerSample = "sample"
	TriggerReplay = "replay"
)

// Service wires one range estimator to the event bus, the configured sinks and
// the status server.
type Service struct {
	est      *estimator.RangeEstimator
	bus      *eventbus.Bus[events.Event]
	sink     coremetrics.RangeSink
	done     <-chan struct{}
	stop     context.CancelFunc
	gatherer prometheus.Gatherer
	addr     string
	log      logger.Logger
	now      func() time.Time
}

// Option customises a Service.
type Option func(*Service)

// WithSink replaces the sinks built from the metrics configuration.
func WithSink(s coremetrics.RangeSink) Option {
	return func(svc *Service) { svc.sink = s }
}

// WithGatherer sets the registry served on /metrics.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(svc *Service) { svc.gatherer = g }
}

// WithLogger overrides the service logger.
func WithLogger(l logger.Logger) Option {
	return func(svc *Service) { svc.log = l }
}

// WithClock overrides the time source used for events and reports.
func WithClock(now func() time.Time) Option {
	return func(svc *Service) { svc.now = now }
}

// New creates a Service from the configuration.
func New(cfg *config.Config, opts ...Option) (*Service, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	svc := &Service{
		bus:      eventbus.NewTypedWithBuffer[events.Event](EventBuffer),
		gatherer: prometheus.DefaultGatherer,
		addr:     cfg.Server.Address,
		log:      logger.NewZerologLoggerLevel("service", cfg.Logging.Level),
		now:      time.Now,
	}
	for _, o := range opts {
		o(svc)
	}

	est, err := estimator.New(
		cfg.Vehicle.Spec(),
		cfg.Estimator.SoC(),
		cfg.Estimator.WindowSize,
		estimator.WithPolicy(cfg.Estimator.ParsedPolicy()),
		estimator.WithLogger(logger.NewZerologLoggerLevel("estimator", cfg.Logging.Level)),
		estimator.WithClock(svc.now),
	)
	if err != nil {
		return nil, fmt.Errorf("estimator: %w", err)
	}
	svc.est = est

	if svc.sink == nil {
		sink, err := coremetrics.NewSink(cfg.Metrics.Sinks)
		if err != nil {
			return nil, fmt.Errorf("metrics sinks (available: %v): %w", plugins.Sinks(), err)
		}
		svc.sink = sink
	}

	ctx, cancel := context.WithCancel(context.Background())
	svc.stop = cancel
	svc.done = metrics.StartEventCollector(ctx, svc.bus, svc.sink, svc.log)
	svc.log.Infof("range estimator ready: vehicle=%s battery=%.1fkWh window=%d policy=%s",
		est.Spec().ID, est.Spec().BatteryKWh, est.WindowSize(), est.Policy())
	return svc, nil
}

// Estimator exposes the underlying estimator.
func (s *Service) Estimator() *estimator.RangeEstimator { return s.est }

// SetStateOfCharge updates the state of charge and publishes the new estimate.
func (s *Service) SetStateOfCharge(soc float64) model.RangeReport {
	s.applySoC(soc)
	return s.publishEstimate(TriggerSoC)
}

func (s *Service) applySoC(soc float64) {
	s.est.SetStateOfCharge(soc)
	s.bus.Publish(events.SoCEvent{
		VehicleID: s.est.Spec().ID,
		Requested: soc,
		Applied:   s.est.StateOfCharge(),
		Time:      s.now(),
	})
}

// AddDrivingData records a driving segment. A rejected segment is published
// with its error and returned; the estimate is only republished when the
// segment was accepted.
func (s *Service) AddDrivingData(distanceKm, energyKWh float64) (model.RangeReport, error) {
	if err := s.recordSegment(distanceKm, energyKWh); err != nil {
		return s.est.Report(), err
	}
	return s.publishEstimate(TriggerSample), nil
}

func (s *Service) recordSegment(distanceKm, energyKWh float64) error {
	seg := model.DrivingSegment{DistanceKm: distanceKm, EnergyKWh: energyKWh, Time: s.now()}
	err := s.est.AddSegment(seg)
	ev := events.SampleEvent{VehicleID: s.est.Spec().ID, Segment: seg, Err: err, Time: seg.Time}
	if err == nil {
		ev.Consumption = seg.Consumption()
	}
	s.bus.Publish(ev)
	return err
}

// Report returns the current estimate without publishing it.
func (s *Service) Report() model.RangeReport { return s.est.Report() }

func (s *Service) publishEstimate(trigger string) model.RangeReport {
	r := s.est.Report()
	s.bus.Publish(events.EstimateEvent{Report: r, Trigger: trigger})
	return r
}

// Run serves the status endpoint until the context is canceled. Without a
// configured address it only waits for cancellation.
func (s *Service) Run(ctx context.Context) error {
	if s.addr == "" {
		<-ctx.Done()
		return nil
	}
	router := metrics.NewStatusRouter(s.Report, s.gatherer)
	return metrics.StartStatusServer(ctx, s.addr, router)
}

// Close drains pending events into the sinks and releases them.
func (s *Service) Close() error {
	s.bus.Close()
	<-s.done
	s.stop()
	if n := s.bus.Dropped(); n > 0 {
		s.log.Warnf("%d events dropped before reaching the sinks", n)
	}
	if c, ok := s.sink.(coremetrics.Closer); ok {
		return c.Close()
	}
	return nil
}
