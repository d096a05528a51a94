package mqtt

import (
	"encoding/json"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/kilianp07/evrange/core/factory"
	coremetrics "github.com/kilianp07/evrange/core/metrics"
	"github.com/kilianp07/evrange/core/model"
	"github.com/kilianp07/evrange/infra/logger"
)

func init() {
	_ = coremetrics.RegisterSink("mqtt", func(conf map[string]any) (coremetrics.RangeSink, error) {
		var c Config
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewReportPublisher(c)
	})
}

// ReportPublisher publishes range reports to <prefix>/<vehicle>/range and
// rejected driving samples to <prefix>/<vehicle>/rejected.
type ReportPublisher struct {
	cli        pahoClient
	prefix     string
	qos        byte
	retain     bool
	maxRetries int
	backoff    time.Duration
	log        logger.Logger
}

type reportMessage struct {
	model.RangeReport
	Trigger string `json:"trigger,omitempty"`
}

type rejectedMessage struct {
	VehicleID  string    `json:"vehicle_id"`
	DistanceKm float64   `json:"distance_km"`
	EnergyKWh  float64   `json:"energy_kwh"`
	Reason     string    `json:"reason"`
	Time       time.Time `json:"time"`
}

// NewReportPublisher connects to the broker described by cfg.
func NewReportPublisher(cfg Config) (*ReportPublisher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	opts, err := NewClientOptions(cfg)
	if err != nil {
		return nil, err
	}
	log := logger.New("mqtt_publisher")
	opts.OnConnect = func(_ paho.Client) { log.Infof("MQTT connected to %s", cfg.Broker) }
	opts.OnConnectionLost = func(_ paho.Client, err error) { log.Errorf("connection lost: %v", err) }

	p := &ReportPublisher{
		prefix:     cfg.TopicPrefix,
		qos:        cfg.QoS,
		retain:     cfg.Retain,
		maxRetries: cfg.MaxRetries,
		backoff:    time.Duration(cfg.BackoffMS) * time.Millisecond,
		log:        log,
	}
	if p.prefix == "" {
		p.prefix = DefaultTopicPrefix
	}
	if p.maxRetries <= 0 {
		p.maxRetries = 3
	}
	if p.backoff <= 0 {
		p.backoff = 100 * time.Millisecond
	}
	c := newMQTTClient(opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	p.cli = c
	return p, nil
}

// RangeTopic returns the topic range reports for vehicleID are published on.
func (p *ReportPublisher) RangeTopic(vehicleID string) string {
	return fmt.Sprintf("%s/%s/range", p.prefix, vehicleID)
}

// RejectedTopic returns the topic rejected samples for vehicleID are published on.
func (p *ReportPublisher) RejectedTopic(vehicleID string) string {
	return fmt.Sprintf("%s/%s/rejected", p.prefix, vehicleID)
}

// RecordRangeEstimate publishes the report as JSON.
func (p *ReportPublisher) RecordRangeEstimate(ev coremetrics.RangeEstimateEvent) error {
	payload, err := json.Marshal(reportMessage{RangeReport: ev.Report, Trigger: ev.Trigger})
	if err != nil {
		return err
	}
	return p.publish(p.RangeTopic(ev.Report.VehicleID), p.retain, payload)
}

// RecordDrivingSample publishes rejected samples only.
func (p *ReportPublisher) RecordDrivingSample(ev coremetrics.DrivingSampleEvent) error {
	if ev.Accepted {
		return nil
	}
	payload, err := json.Marshal(rejectedMessage{
		VehicleID:  ev.VehicleID,
		DistanceKm: ev.Segment.DistanceKm,
		EnergyKWh:  ev.Segment.EnergyKWh,
		Reason:     ev.Reason,
		Time:       ev.Time,
	})
	if err != nil {
		return err
	}
	return p.publish(p.RejectedTopic(ev.VehicleID), false, payload)
}

func (p *ReportPublisher) publish(topic string, retain bool, payload []byte) error {
	var err error
	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		token := p.cli.Publish(topic, p.qos, retain, payload)
		token.Wait()
		if err = token.Error(); err == nil {
			p.log.Debugf("published %d bytes to %s", len(payload), topic)
			return nil
		}
		p.log.Errorf("publish attempt %d to %s failed: %v", attempt+1, topic, err)
		if attempt < p.maxRetries {
			time.Sleep(p.backoff * time.Duration(1<<attempt))
		}
	}
	return fmt.Errorf("publish %s: %w", topic, err)
}

// Close disconnects from the broker.
func (p *ReportPublisher) Close() error {
	if p.cli != nil && p.cli.IsConnected() {
		p.cli.Disconnect(250)
	}
	return nil
}
