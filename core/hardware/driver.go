package hardware

import "errors"

// ErrDriverClosed is returned by drivers once Close has been called.
var ErrDriverClosed = errors.New("hardware driver closed")

// Driver exposes the GPIO/PWM capabilities needed to drive a DC motor
// through an H-bridge. A single Driver is shared by every motor of the
// process.
type Driver interface {
	// SetOutput drives a digital output pin high (true) or low (false).
	SetOutput(pin int, high bool) error
	// SetDutyCycle writes the PWM duty cycle (0-255) of the pin.
	SetDutyCycle(pin int, value int) error
	// SetFrequency writes the PWM carrier frequency (Hz) of the pin.
	SetFrequency(pin int, value int) error
	Close() error
}

// Pins is the wiring of one motor: two direction lines and the PWM enable line.
type Pins struct {
	Pin0   int `json:"pin0"`
	Pin1   int `json:"pin1"`
	Enable int `json:"enable"`
}

// All returns the pins in declaration order.
func (p Pins) All() []int { return []int{p.Pin0, p.Pin1, p.Enable} }

// WriteKind identifies one of the three Driver write calls.
type WriteKind string

const (
	WriteOutput    WriteKind = "output"
	WriteDutyCycle WriteKind = "duty_cycle"
	WriteFrequency WriteKind = "frequency"
)
