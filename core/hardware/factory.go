package hardware

import "github.com/kilianp07/autopi/core/factory"

var driverRegistry = factory.NewRegistry[Driver]()

// RegisterDriver adds a driver factory identified by name.
func RegisterDriver(name string, f factory.Factory[Driver]) error {
	return driverRegistry.Register(name, f)
}

// NewDriver creates the Driver described by cfg.
func NewDriver(cfg factory.ModuleConfig) (Driver, error) {
	return driverRegistry.Create(cfg)
}
