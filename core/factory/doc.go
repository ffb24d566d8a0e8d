// Package factory provides the generic registry used to pick pluggable
// implementations (hardware drivers, metrics sinks) from configuration.
// A module is described by a type string and a map of raw settings which
// the factory decodes into its own typed struct with Decode.
//
//	reg := factory.NewRegistry[hardware.Driver]()
//	reg.Register("dummy", func(conf map[string]any) (hardware.Driver, error) {
//	    var c struct{ Quiet bool `json:"quiet"` }
//	    if err := factory.Decode(conf, &c); err != nil {
//	        return nil, err
//	    }
//	    return newDummy(c.Quiet), nil
//	})
//	drv, err := reg.Create(factory.ModuleConfig{Type: "dummy"})
package factory
