package motor

import (
	"sync"
	"time"

	"github.com/kilianp07/autopi/core/hardware"
	"github.com/kilianp07/autopi/core/logger"
)

// TurnDecay is how long a turn bias is held before both motors return to
// neutral power.
const TurnDecay = 700 * time.Millisecond

// Snapshot is a consistent copy of both motors and the turn timer.
type Snapshot struct {
	Left    State
	Right   State
	Turning bool
}

// Option configures DualMotors.
type Option func(*DualMotors)

// WithClock replaces time.Now for the timestamps taken by Backwards and Turn.
func WithClock(now func() time.Time) Option {
	return func(d *DualMotors) { d.now = now }
}

// WithLogger sets the logger shared by both motors.
func WithLogger(l logger.Logger) Option {
	return func(d *DualMotors) { d.log = logger.OrNop(l) }
}

// DualMotors drives a left and right motor for differential steering.
// All methods are safe for concurrent use: one mutex guards both motors and
// the turn timer.
type DualMotors struct {
	mu    sync.Mutex
	left  *Motor
	right *Motor

	turnSince time.Time

	now func() time.Time
	log logger.Logger
}

// New builds both motors on the shared driver.
func New(drv hardware.Driver, left, right hardware.Pins, opts ...Option) *DualMotors {
	d := &DualMotors{now: time.Now, log: logger.NopLogger{}}
	for _, o := range opts {
		o(d)
	}
	d.left = NewMotor("left", drv, left, d.log)
	d.right = NewMotor("right", drv, right, d.log)
	return d
}

// Init pushes the startup state of both motors to the hardware.
func (d *DualMotors) Init() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.left.Init(); err != nil {
		return err
	}
	return d.right.Init()
}

func (d *DualMotors) Forwards() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.left.Forwards()
	d.right.Forwards()
	d.log.Infof("moving forwards")
}

func (d *DualMotors) Backwards() {
	d.mu.Lock()
	defer d.mu.Unlock()
	now := d.now()
	d.left.Backwards(now)
	d.right.Backwards(now)
	d.log.Infof("moving backwards")
}

// Stop cuts the power of both motors and cancels a pending turn decay, so
// the next Update cannot bring them back to neutral power.
func (d *DualMotors) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.left.Stop()
	d.right.Stop()
	d.turnSince = time.Time{}
}

// Turn shifts power between the motors: a negative amount turns left, a
// positive amount turns right. Each side saturates independently.
func (d *DualMotors) Turn(amount int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.turn(amount)
}

// Left turns left by the given magnitude.
func (d *DualMotors) Left(amount int) { d.Turn(-amount) }

// Right turns right by the given magnitude.
func (d *DualMotors) Right(amount int) { d.Turn(amount) }

func (d *DualMotors) turn(amount int) {
	amount = Clamp(amount, -MaxPower, MaxPower)
	d.left.ChangePower(amount)
	d.right.ChangePower(-amount)
	d.turnSince = d.now()
}

// ResetTurn puts both motors back to neutral power and clears the turn timer.
func (d *DualMotors) ResetTurn() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.resetTurn()
}

func (d *DualMotors) resetTurn() {
	d.left.ResetPower()
	d.right.ResetPower()
	d.turnSince = time.Time{}
	d.log.Infof("resetting turning")
}

// Reset is ResetTurn followed by a full reset of both motors.
func (d *DualMotors) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.resetTurn()
	d.left.Reset()
	d.right.Reset()
}

// ChangeFrequency applies the same frequency delta to both motors.
func (d *DualMotors) ChangeFrequency(delta int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.left.ChangeFrequency(delta)
	d.right.ChangeFrequency(delta)
}

// SetPower sets both motors to the same power.
func (d *DualMotors) SetPower(v int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.left.SetPower(v)
	d.right.SetPower(v)
}

// SetFrequency sets both motors to the same frequency.
func (d *DualMotors) SetFrequency(v int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.left.SetFrequency(v)
	d.right.SetFrequency(v)
}

// Power returns the left and right power.
func (d *DualMotors) Power() (left, right int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.left.Power(), d.right.Power()
}

// Frequency returns the left and right frequency.
func (d *DualMotors) Frequency() (left, right int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.left.Frequency(), d.right.Frequency()
}

func (d *DualMotors) Snapshot() Snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()
	return Snapshot{Left: d.left.State(), Right: d.right.State(), Turning: !d.turnSince.IsZero()}
}

// Update decays an expired turn, then reconciles the left and right motor
// with the hardware. The first hardware error is returned and the right
// motor is not updated in that tick.
func (d *DualMotors) Update(now time.Time) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.turnSince.IsZero() && now.Sub(d.turnSince) > TurnDecay {
		d.resetTurn()
	}
	if err := d.left.Update(now); err != nil {
		return err
	}
	return d.right.Update(now)
}
