package config

import (
	"fmt"
	"time"

	"github.com/kilianp07/autopi/core/control"
	"github.com/kilianp07/autopi/core/hardware"
)

// MotorsConfig holds the BCM pin numbers of both H-bridge channels.
type MotorsConfig struct {
	Left  hardware.Pins `json:"left"`
	Right hardware.Pins `json:"right"`
}

// SetDefaults applies the wiring of the reference car when a motor has no
// pins configured.
func (c *MotorsConfig) SetDefaults() {
	if c.Left == (hardware.Pins{}) {
		c.Left = hardware.Pins{Pin0: 19, Pin1: 16, Enable: 12}
	}
	if c.Right == (hardware.Pins{}) {
		c.Right = hardware.Pins{Pin0: 26, Pin1: 20, Enable: 13}
	}
}

// Validate rejects negative pins and pins used twice.
func (c MotorsConfig) Validate() error {
	seen := make(map[int]string)
	motors := []struct {
		name string
		pins hardware.Pins
	}{{"left", c.Left}, {"right", c.Right}}
	for _, m := range motors {
		name := m.name
		for _, p := range m.pins.All() {
			if p < 0 {
				return fmt.Errorf("motors.%s: invalid pin %d", name, p)
			}
			if other, ok := seen[p]; ok {
				return fmt.Errorf("motors: pin %d used by %s and %s", p, other, name)
			}
			seen[p] = name
		}
	}
	return nil
}

// ControlConfig sets the reconciliation loop period.
type ControlConfig struct {
	PeriodMS int `json:"period_ms"`
}

func (c *ControlConfig) SetDefaults() {
	if c.PeriodMS == 0 {
		c.PeriodMS = int(control.DefaultPeriod / time.Millisecond)
	}
}

func (c ControlConfig) Validate() error {
	if c.PeriodMS <= 0 {
		return fmt.Errorf("control.period_ms must be positive, got %d", c.PeriodMS)
	}
	return nil
}

// Period returns the loop period as a duration.
func (c ControlConfig) Period() time.Duration {
	return time.Duration(c.PeriodMS) * time.Millisecond
}
