package hardware

import (
	"fmt"
	"sync"

	"gobot.io/x/gobot/v2"
	"gobot.io/x/gobot/v2/platforms/raspi"

	corehw "github.com/kilianp07/autopi/core/hardware"
	"github.com/kilianp07/autopi/infra/logger"
)

// defaultPWMFrequency is applied when a PWM pin is first used.
const defaultPWMFrequency = 2000

// gpioAdaptor is the part of the gobot raspi adaptor used by RaspiDriver.
type gpioAdaptor interface {
	Connect() error
	Finalize() error
	DigitalWrite(pin string, val byte) error
	PWMPin(pin string) (gobot.PWMPinner, error)
}

var newRaspiAdaptor = func() gpioAdaptor { return raspi.NewAdaptor() }

// bcmToHeader maps BCM GPIO numbers to the 40-pin header positions the
// raspi adaptor addresses pins by.
var bcmToHeader = map[int]string{
	2: "3", 3: "5", 4: "7", 14: "8", 15: "10", 17: "11", 18: "12", 27: "13",
	22: "15", 23: "16", 24: "18", 10: "19", 9: "21", 25: "22", 11: "23", 8: "24",
	7: "26", 5: "29", 6: "31", 12: "32", 13: "33", 19: "35", 16: "36", 26: "37",
	20: "38", 21: "40",
}

func headerPin(bcm int) (string, error) {
	h, ok := bcmToHeader[bcm]
	if !ok {
		return "", fmt.Errorf("gpio %d is not on the header", bcm)
	}
	return h, nil
}

type pwmChannel struct {
	pin      gobot.PWMPinner
	periodNS uint32
	value    int
	enabled  bool
}

// duty scales a 0-255 power value to the channel period.
func (c *pwmChannel) duty() uint32 {
	return uint32(uint64(c.periodNS) * uint64(c.value) / 255)
}

// RaspiDriver drives the Raspberry Pi header through gobot. Direction
// lines are plain digital writes; enable lines are PWM pins whose period
// follows the requested frequency. GPIO12 and GPIO13 are hardware PWM.
type RaspiDriver struct {
	mu      sync.Mutex
	adaptor gpioAdaptor
	pwm     map[int]*pwmChannel
	log     logger.Logger
	closed  bool
}

// NewRaspiDriver connects the raspi adaptor.
func NewRaspiDriver() (*RaspiDriver, error) {
	a := newRaspiAdaptor()
	if err := a.Connect(); err != nil {
		return nil, fmt.Errorf("connect raspi adaptor: %w", err)
	}
	log := logger.New("raspi")
	log.Infof("raspi adaptor connected")
	return &RaspiDriver{adaptor: a, pwm: make(map[int]*pwmChannel), log: log}, nil
}

func (d *RaspiDriver) SetOutput(pin int, high bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return corehw.ErrDriverClosed
	}
	h, err := headerPin(pin)
	if err != nil {
		return err
	}
	var level byte
	if high {
		level = 1
	}
	if err := d.adaptor.DigitalWrite(h, level); err != nil {
		return fmt.Errorf("raspi gpio %d: %w", pin, err)
	}
	return nil
}

// channel returns the PWM channel of pin, exporting it at the default
// frequency on first use.
func (d *RaspiDriver) channel(pin int) (*pwmChannel, error) {
	if c, ok := d.pwm[pin]; ok {
		return c, nil
	}
	h, err := headerPin(pin)
	if err != nil {
		return nil, err
	}
	p, err := d.adaptor.PWMPin(h)
	if err != nil {
		return nil, fmt.Errorf("raspi pwm %d: %w", pin, err)
	}
	c := &pwmChannel{pin: p, periodNS: 1e9 / defaultPWMFrequency}
	if err := p.SetPeriod(c.periodNS); err != nil {
		return nil, fmt.Errorf("raspi pwm %d period: %w", pin, err)
	}
	if err := p.SetEnabled(true); err != nil {
		return nil, fmt.Errorf("raspi pwm %d enable: %w", pin, err)
	}
	c.enabled = true
	d.pwm[pin] = c
	return c, nil
}

func (d *RaspiDriver) SetDutyCycle(pin int, value int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return corehw.ErrDriverClosed
	}
	if value < 0 || value > 255 {
		return fmt.Errorf("raspi pwm %d: duty cycle %d out of range", pin, value)
	}
	c, err := d.channel(pin)
	if err != nil {
		return err
	}
	c.value = value
	if err := c.pin.SetDutyCycle(c.duty()); err != nil {
		return fmt.Errorf("raspi pwm %d duty: %w", pin, err)
	}
	return nil
}

// SetFrequency changes the PWM period of pin and rescales its duty cycle.
// A frequency of zero disables the output.
func (d *RaspiDriver) SetFrequency(pin int, value int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return corehw.ErrDriverClosed
	}
	c, err := d.channel(pin)
	if err != nil {
		return err
	}
	if value <= 0 {
		if err := c.pin.SetEnabled(false); err != nil {
			return fmt.Errorf("raspi pwm %d disable: %w", pin, err)
		}
		c.enabled = false
		return nil
	}
	period := uint32(1e9 / value)
	// The kernel rejects a period shorter than the current duty cycle.
	if err := c.pin.SetDutyCycle(0); err != nil {
		return fmt.Errorf("raspi pwm %d duty: %w", pin, err)
	}
	if err := c.pin.SetPeriod(period); err != nil {
		return fmt.Errorf("raspi pwm %d period: %w", pin, err)
	}
	c.periodNS = period
	if err := c.pin.SetDutyCycle(c.duty()); err != nil {
		return fmt.Errorf("raspi pwm %d duty: %w", pin, err)
	}
	if !c.enabled {
		if err := c.pin.SetEnabled(true); err != nil {
			return fmt.Errorf("raspi pwm %d enable: %w", pin, err)
		}
		c.enabled = true
	}
	d.log.Debugf("pin %d: period %d ns", pin, period)
	return nil
}

// Close releases every exported pin through the adaptor.
func (d *RaspiDriver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true
	return d.adaptor.Finalize()
}
