// Package infra contains technical adapters such as the zerolog logger,
// metrics sinks and the MQTT report publisher. These packages should depend
// only on the interfaces defined in the core packages.
package infra
