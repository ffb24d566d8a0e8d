package motor

import (
	"errors"
	"fmt"
	"time"

	"github.com/kilianp07/autopi/core/hardware"
	"github.com/kilianp07/autopi/core/logger"
)

const (
	MinPower     = 0
	MaxPower     = 255
	NeutralPower = 128

	MinFrequency     = 0
	MaxFrequency     = 20000
	DefaultFrequency = 2000

	// ReverseTimeout is how long a motor may run backwards before it is
	// switched back to forwards.
	ReverseTimeout = 2 * time.Second
)

// ErrHardware wraps every driver failure surfaced by Init and Update.
var ErrHardware = errors.New("motor hardware write failed")

// Direction selects which of the two direction lines is asserted.
type Direction int

const (
	Forward Direction = iota
	Backward
)

func (d Direction) String() string {
	switch d {
	case Forward:
		return "forward"
	case Backward:
		return "backward"
	default:
		return fmt.Sprintf("direction(%d)", int(d))
	}
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi int) int {
	return max(min(v, hi), lo)
}

// State is a read-only copy of a motor's logical state.
type State struct {
	Name      string
	Direction Direction
	Power     int
	Frequency int
	Reversing bool
}

// Motor holds the state of one DC motor and pushes it to the hardware
// driver. Motor is not safe for concurrent use; DualMotors serialises
// access to its two motors.
type Motor struct {
	name string
	pins hardware.Pins
	drv  hardware.Driver
	log  logger.Logger

	direction     Direction
	prevDirection Direction
	// directionSynced is false until the direction lines were written once.
	directionSynced bool

	power         int
	prevPower     int
	frequency     int
	prevFrequency int

	reverseSince time.Time
}

// NewMotor returns a motor bound to pins on drv. Nothing is written to the
// hardware until Init or Update is called.
func NewMotor(name string, drv hardware.Driver, pins hardware.Pins, log logger.Logger) *Motor {
	return &Motor{
		name:          name,
		pins:          pins,
		drv:           drv,
		log:           logger.OrNop(log),
		direction:     Forward,
		power:         MinPower,
		prevPower:     -1,
		frequency:     DefaultFrequency,
		prevFrequency: 0,
	}
}

// Init brings the outputs to a known state: duty cycle 0, default
// frequency and forward direction lines.
func (m *Motor) Init() error {
	if err := m.drv.SetDutyCycle(m.pins.Enable, MinPower); err != nil {
		return m.hwErr("init duty cycle", m.pins.Enable, err)
	}
	if err := m.drv.SetFrequency(m.pins.Enable, DefaultFrequency); err != nil {
		return m.hwErr("init frequency", m.pins.Enable, err)
	}
	return m.writeDirection(Forward)
}

func (m *Motor) Name() string { return m.name }

// Forwards selects the forward direction and cancels the reverse timer.
func (m *Motor) Forwards() {
	m.direction = Forward
	m.reverseSince = time.Time{}
}

// Backwards selects the backward direction and (re)starts the reverse timer.
func (m *Motor) Backwards(now time.Time) {
	m.direction = Backward
	m.reverseSince = now
}

// Stop cuts the power. The direction is kept.
func (m *Motor) Stop() { m.power = MinPower }

// ResetPower sets the neutral power level used after a turn.
func (m *Motor) ResetPower() { m.power = NeutralPower }

func (m *Motor) ResetFrequency() { m.frequency = DefaultFrequency }

func (m *Motor) Reset() {
	m.ResetPower()
	m.ResetFrequency()
}

// ChangeFrequency adds delta to the PWM frequency, saturating at the range bounds.
func (m *Motor) ChangeFrequency(delta int) {
	delta = Clamp(delta, -MaxFrequency, MaxFrequency)
	m.frequency = Clamp(m.frequency+delta, MinFrequency, MaxFrequency)
}

// ChangePower adds delta to the power, saturating at the range bounds.
func (m *Motor) ChangePower(delta int) {
	delta = Clamp(delta, -MaxPower, MaxPower)
	m.power = Clamp(m.power+delta, MinPower, MaxPower)
}

func (m *Motor) SetPower(v int)     { m.power = Clamp(v, MinPower, MaxPower) }
func (m *Motor) SetFrequency(v int) { m.frequency = Clamp(v, MinFrequency, MaxFrequency) }

func (m *Motor) Power() int           { return m.power }
func (m *Motor) Frequency() int       { return m.frequency }
func (m *Motor) Direction() Direction { return m.direction }

// State returns a copy of the logical state.
func (m *Motor) State() State {
	return State{
		Name:      m.name,
		Direction: m.direction,
		Power:     m.power,
		Frequency: m.frequency,
		Reversing: !m.reverseSince.IsZero(),
	}
}

// Update reverts an expired reverse and writes every field that changed
// since the last successful push.
func (m *Motor) Update(now time.Time) error {
	if !m.reverseSince.IsZero() && now.Sub(m.reverseSince) > ReverseTimeout {
		m.Forwards()
		m.log.Infof("%s motor: reverse timeout, changing back to forwards", m.name)
	}

	if !m.directionSynced || m.direction != m.prevDirection {
		if err := m.writeDirection(m.direction); err != nil {
			return err
		}
		m.prevDirection = m.direction
		m.directionSynced = true
		m.log.Debugf("%s motor: direction %s", m.name, m.direction)
	}

	if m.power != m.prevPower {
		if err := m.drv.SetDutyCycle(m.pins.Enable, m.power); err != nil {
			return m.hwErr("duty cycle", m.pins.Enable, err)
		}
		m.prevPower = m.power
		m.log.Debugf("%s motor: setting power to %d", m.name, m.power)
	}

	if m.frequency != m.prevFrequency {
		if err := m.drv.SetFrequency(m.pins.Enable, m.frequency); err != nil {
			return m.hwErr("frequency", m.pins.Enable, err)
		}
		m.prevFrequency = m.frequency
		m.log.Debugf("%s motor: setting frequency to %d", m.name, m.frequency)
	}
	return nil
}

// (pin0, pin1) = (1, 0) forwards, (0, 1) backwards.
func (m *Motor) writeDirection(d Direction) error {
	fwd := d == Forward
	if err := m.drv.SetOutput(m.pins.Pin0, fwd); err != nil {
		return m.hwErr("direction", m.pins.Pin0, err)
	}
	if err := m.drv.SetOutput(m.pins.Pin1, !fwd); err != nil {
		return m.hwErr("direction", m.pins.Pin1, err)
	}
	return nil
}

func (m *Motor) hwErr(op string, pin int, err error) error {
	return fmt.Errorf("%w: %s motor %s on pin %d: %w", ErrHardware, m.name, op, pin, err)
}
