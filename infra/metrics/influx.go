package metrics

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/evrange/core/metrics"
	"github.com/kilianp07/evrange/infra/logger"
)

// InfluxConfig holds the connection settings of an InfluxSink.
type InfluxConfig struct {
	URL    string `json:"url"`
	Token  string `json:"token"`
	Org    string `json:"org"`
	Bucket string `json:"bucket"`
}

// InfluxSink writes range events to an InfluxDB instance using the official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(cfg InfluxConfig) *InfluxSink {
	base := strings.TrimSuffix(cfg.URL, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, cfg.Token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback pings the InfluxDB instance and returns a NopSink
// if the health check fails.
func NewInfluxSinkWithFallback(cfg InfluxConfig) coremetrics.RangeSink {
	sink := NewInfluxSink(cfg)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordRangeEstimate writes the report as a range_estimate point.
func (s *InfluxSink) RecordRangeEstimate(ev coremetrics.RangeEstimateEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	r := ev.Report
	p := write.NewPointWithMeasurement("range_estimate").
		AddTag("vehicle_id", r.VehicleID).
		AddTag("fallback", strconv.FormatBool(r.Fallback))
	if ev.Trigger != "" {
		p = p.AddTag("trigger", ev.Trigger)
	}
	p = p.AddField("soc", round3(r.SoC)).
		AddField("range_km", round3(r.RangeKm)).
		AddField("avg_consumption", r.AvgConsumption).
		AddField("samples", r.Samples).
		AddField("window_size", r.WindowSize).
		SetTime(r.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordDrivingSample writes a driving_sample point.
func (s *InfluxSink) RecordDrivingSample(ev coremetrics.DrivingSampleEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("driving_sample").
		AddTag("vehicle_id", ev.VehicleID).
		AddTag("accepted", strconv.FormatBool(ev.Accepted))
	if ev.Reason != "" {
		p = p.AddTag("reason", ev.Reason)
	}
	p = p.AddField("distance_km", round3(ev.Segment.DistanceKm)).
		AddField("energy_kwh", round3(ev.Segment.EnergyKWh)).
		AddField("consumption", ev.Consumption).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordStateOfCharge writes a state_of_charge point.
func (s *InfluxSink) RecordStateOfCharge(ev coremetrics.StateOfChargeEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("state_of_charge").
		AddTag("vehicle_id", ev.VehicleID).
		AddField("requested", round3(ev.Requested)).
		AddField("applied", round3(ev.Applied)).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// Close releases the underlying HTTP client.
func (s *InfluxSink) Close() error {
	s.client.Close()
	return nil
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
