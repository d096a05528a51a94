package metrics

import (
	"github.com/kilianp07/evrange/core/factory"
	coremetrics "github.com/kilianp07/evrange/core/metrics"
)

// init registers built-in metrics sinks.
func init() {
	_ = coremetrics.RegisterSink("nop", func(map[string]any) (coremetrics.RangeSink, error) {
		return coremetrics.NopSink{}, nil
	})

	// Metrics are served by the status server; the sink only records them.
	_ = coremetrics.RegisterSink("prometheus", func(map[string]any) (coremetrics.RangeSink, error) {
		return NewPromSink()
	})

	_ = coremetrics.RegisterSink("influx", func(conf map[string]any) (coremetrics.RangeSink, error) {
		var c InfluxConfig
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewInfluxSinkWithFallback(c), nil
	})
}
