package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	coremetrics "github.com/kilianp07/evrange/core/metrics"
	"github.com/kilianp07/evrange/core/model"
)

func TestPromSink_RecordRangeEstimate(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)

	require.NoError(t, sink.RecordRangeEstimate(coremetrics.RangeEstimateEvent{Report: model.RangeReport{
		VehicleID: "ev1", SoC: 0.5, AvgConsumption: 0.15, Samples: 1, RangeKm: 200,
	}}))
	require.NoError(t, sink.RecordRangeEstimate(coremetrics.RangeEstimateEvent{Report: model.RangeReport{
		VehicleID: "ev1", SoC: 1, RangeKm: 300, Fallback: true,
	}}))

	expected := `
# HELP ev_range_estimated_km Latest estimated remaining range in kilometres
# TYPE ev_range_estimated_km gauge
ev_range_estimated_km{vehicle_id="ev1"} 300
`
	if err := testutil.CollectAndCompare(sink.rangeKm, strings.NewReader(expected)); err != nil {
		t.Errorf("unexpected metrics: %v", err)
	}
	expected = `
# HELP ev_range_fallback_total Estimates computed with the default range factor
# TYPE ev_range_fallback_total counter
ev_range_fallback_total{vehicle_id="ev1"} 1
`
	if err := testutil.CollectAndCompare(sink.fallbacks, strings.NewReader(expected)); err != nil {
		t.Errorf("unexpected metrics: %v", err)
	}
}

func TestPromSink_RecordDrivingSample(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)

	require.NoError(t, sink.RecordDrivingSample(coremetrics.DrivingSampleEvent{VehicleID: "ev1", Accepted: true}))
	require.NoError(t, sink.RecordDrivingSample(coremetrics.DrivingSampleEvent{VehicleID: "ev1", Reason: "non_positive_distance"}))
	require.NoError(t, sink.RecordDrivingSample(coremetrics.DrivingSampleEvent{VehicleID: "ev1", Reason: "non_positive_distance"}))

	expected := `
# HELP ev_driving_samples_total Driving segments submitted to the estimator
# TYPE ev_driving_samples_total counter
ev_driving_samples_total{accepted="false",reason="non_positive_distance",vehicle_id="ev1"} 2
ev_driving_samples_total{accepted="true",reason="none",vehicle_id="ev1"} 1
`
	if err := testutil.CollectAndCompare(sink.samples, strings.NewReader(expected)); err != nil {
		t.Errorf("unexpected metrics: %v", err)
	}
}

func TestPromSink_StateOfChargeAndReuse(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)
	second, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)

	require.NoError(t, second.RecordStateOfCharge(coremetrics.StateOfChargeEvent{VehicleID: "ev1", Applied: 0.42}))
	require.InDelta(t, 0.42, testutil.ToFloat64(first.soc.WithLabelValues("ev1")), 1e-12)
}
