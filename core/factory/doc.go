// Package factory provides a small generic registry used to instantiate modules
// from configuration. A module is described by a type string and a map of raw
// settings; the registered factory decodes the settings and returns the
// concrete implementation.
//
//	reg := factory.NewRegistry[metrics.RangeSink]()
//	_ = reg.Register("influx", func(conf map[string]any) (metrics.RangeSink, error) {
//	    var c struct{ URL string `json:"url"` }
//	    if err := factory.Decode(conf, &c); err != nil {
//	        return nil, err
//	    }
//	    return newInfluxSink(c.URL), nil
//	})
//	s, err := reg.Create(factory.ModuleConfig{Type: "influx", Conf: map[string]any{"url": "http://influx:8086"}})
package factory
