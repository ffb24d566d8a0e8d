package hardware

import (
	"github.com/kilianp07/autopi/core/events"
	corehw "github.com/kilianp07/autopi/core/hardware"
	"github.com/kilianp07/autopi/internal/eventbus"
)

// ObservedDriver publishes a HardwareWriteEvent for every call forwarded to
// the wrapped driver.
type ObservedDriver struct {
	corehw.Driver
	bus eventbus.EventBus
}

// Observe wraps drv. A nil bus returns drv unchanged.
func Observe(drv corehw.Driver, bus eventbus.EventBus) corehw.Driver {
	if bus == nil {
		return drv
	}
	return &ObservedDriver{Driver: drv, bus: bus}
}

func (o *ObservedDriver) SetOutput(pin int, high bool) error {
	err := o.Driver.SetOutput(pin, high)
	v := 0
	if high {
		v = 1
	}
	o.bus.Publish(events.HardwareWriteEvent{Kind: corehw.WriteOutput, Pin: pin, Value: v, Err: err})
	return err
}

func (o *ObservedDriver) SetDutyCycle(pin int, value int) error {
	err := o.Driver.SetDutyCycle(pin, value)
	o.bus.Publish(events.HardwareWriteEvent{Kind: corehw.WriteDutyCycle, Pin: pin, Value: value, Err: err})
	return err
}

func (o *ObservedDriver) SetFrequency(pin int, value int) error {
	err := o.Driver.SetFrequency(pin, value)
	o.bus.Publish(events.HardwareWriteEvent{Kind: corehw.WriteFrequency, Pin: pin, Value: value, Err: err})
	return err
}
