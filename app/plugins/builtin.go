// Package plugins links the built-in metrics sinks into the binary. Each sink
// package registers itself with core/metrics from its init function.
package plugins

import (
	coremetrics "github.com/kilianp07/evrange/core/metrics"
	_ "github.com/kilianp07/evrange/infra/metrics"
	_ "github.com/kilianp07/evrange/infra/mqtt"
)

// Sinks lists the sink types available to the metrics configuration.
func Sinks() []string { return coremetrics.RegisteredSinks() }
