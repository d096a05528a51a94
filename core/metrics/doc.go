// Package metrics defines the sinks that record range estimates and driving
// samples. Concrete sinks (Prometheus, InfluxDB, MQTT) live in infra/metrics
// and infra/mqtt and register themselves by type name; NewSink builds one or a
// MultiSink from configuration.
package metrics
