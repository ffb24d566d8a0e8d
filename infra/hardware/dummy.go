package hardware

import (
	"sync"

	corehw "github.com/kilianp07/autopi/core/hardware"
	"github.com/kilianp07/autopi/infra/logger"
)

// Write is one call recorded by DummyDriver.
type Write struct {
	Kind  corehw.WriteKind
	Pin   int
	Value int
}

// DummyDriver keeps pin levels in memory and logs every write instead of
// touching real peripherals. It is used for bench runs without a Raspberry
// Pi and as the recording driver in tests.
type DummyDriver struct {
	mu      sync.Mutex
	log     logger.Logger
	writes  []Write
	outputs map[int]bool
	duty    map[int]int
	freq    map[int]int
	failPin map[int]error
	closed  bool
}

// NewDummyDriver creates an empty DummyDriver. A nil logger disables logging.
func NewDummyDriver(log logger.Logger) *DummyDriver {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &DummyDriver{
		log:     log,
		outputs: make(map[int]bool),
		duty:    make(map[int]int),
		freq:    make(map[int]int),
		failPin: make(map[int]error),
	}
}

// FailPin makes every subsequent write on pin return err. A nil err clears it.
func (d *DummyDriver) FailPin(pin int, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err == nil {
		delete(d.failPin, pin)
		return
	}
	d.failPin[pin] = err
}

func (d *DummyDriver) record(kind corehw.WriteKind, pin, value int) error {
	if d.closed {
		return corehw.ErrDriverClosed
	}
	if err := d.failPin[pin]; err != nil {
		return err
	}
	d.writes = append(d.writes, Write{Kind: kind, Pin: pin, Value: value})
	d.log.Debugf("pin %d %s=%d", pin, kind, value)
	return nil
}

func (d *DummyDriver) SetOutput(pin int, high bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	v := 0
	if high {
		v = 1
	}
	if err := d.record(corehw.WriteOutput, pin, v); err != nil {
		return err
	}
	d.outputs[pin] = high
	return nil
}

func (d *DummyDriver) SetDutyCycle(pin int, value int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.record(corehw.WriteDutyCycle, pin, value); err != nil {
		return err
	}
	d.duty[pin] = value
	return nil
}

func (d *DummyDriver) SetFrequency(pin int, value int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.record(corehw.WriteFrequency, pin, value); err != nil {
		return err
	}
	d.freq[pin] = value
	return nil
}

func (d *DummyDriver) Close() error {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()
	return nil
}

// Writes returns a copy of every successful write in call order.
func (d *DummyDriver) Writes() []Write {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]Write, len(d.writes))
	copy(out, d.writes)
	return out
}

// Count returns the number of successful writes of the given kind on pin.
func (d *DummyDriver) Count(kind corehw.WriteKind, pin int) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for _, w := range d.writes {
		if w.Kind == kind && w.Pin == pin {
			n++
		}
	}
	return n
}

// ClearWrites forgets the recorded writes but keeps pin levels.
func (d *DummyDriver) ClearWrites() {
	d.mu.Lock()
	d.writes = nil
	d.mu.Unlock()
}

func (d *DummyDriver) Output(pin int) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.outputs[pin]
}

func (d *DummyDriver) DutyCycle(pin int) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.duty[pin]
}

func (d *DummyDriver) Frequency(pin int) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.freq[pin]
}

func (d *DummyDriver) Closed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closed
}
