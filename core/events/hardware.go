package events

import "github.com/kilianp07/autopi/core/hardware"

// HardwareWriteEvent is published for every GPIO/PWM write.
type HardwareWriteEvent struct {
	Kind  hardware.WriteKind
	Pin   int
	Value int
	Err   error
}
