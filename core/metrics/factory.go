package metrics

import "github.com/kilianp07/evrange/core/factory"

var sinkRegistry = factory.NewRegistry[RangeSink]()

// RegisterSink adds a sink factory identified by name.
func RegisterSink(name string, f factory.Factory[RangeSink]) error {
	return sinkRegistry.Register(name, f)
}

// RegisteredSinks lists the sink types known to NewSink.
func RegisteredSinks() []string { return sinkRegistry.Names() }

// NewSink creates a RangeSink from the provided configuration. No
// configuration yields a NopSink and several yield a MultiSink.
func NewSink(cfgs []factory.ModuleConfig) (RangeSink, error) {
	if len(cfgs) == 0 {
		return NopSink{}, nil
	}
	if len(cfgs) == 1 {
		return sinkRegistry.Create(cfgs[0])
	}
	sinks := make([]RangeSink, len(cfgs))
	for i, c := range cfgs {
		s, err := sinkRegistry.Create(c)
		if err != nil {
			closeAll(sinks[:i])
			return nil, err
		}
		sinks[i] = s
	}
	return NewMultiSink(sinks...), nil
}

func closeAll(sinks []RangeSink) {
	for _, s := range sinks {
		if c, ok := s.(Closer); ok {
			_ = c.Close()
		}
	}
}
