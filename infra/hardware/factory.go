package hardware

import (
	"github.com/kilianp07/autopi/core/factory"
	corehw "github.com/kilianp07/autopi/core/hardware"
	"github.com/kilianp07/autopi/infra/logger"
)

// init registers the built-in hardware drivers.
func init() {
	_ = corehw.RegisterDriver("dummy", func(map[string]any) (corehw.Driver, error) {
		return NewDummyDriver(logger.New("dummy-hardware")), nil
	})

	_ = corehw.RegisterDriver("raspi", func(map[string]any) (corehw.Driver, error) {
		return NewRaspiDriver()
	})

	_ = corehw.RegisterDriver("pigpio", func(conf map[string]any) (corehw.Driver, error) {
		var c PigpioConfig
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewPigpioDriver(c)
	})
}
