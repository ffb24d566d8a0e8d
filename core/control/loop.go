package control

import (
	"context"
	"fmt"
	"time"

	"github.com/kilianp07/autopi/core/events"
	"github.com/kilianp07/autopi/core/keepalive"
	"github.com/kilianp07/autopi/core/logger"
	coremon "github.com/kilianp07/autopi/core/monitoring"
	"github.com/kilianp07/autopi/core/motor"
	"github.com/kilianp07/autopi/internal/eventbus"
)

// DefaultPeriod is the control loop tick.
const DefaultPeriod = 100 * time.Millisecond

// Motors is the part of motor.DualMotors driven by the loop.
type Motors interface {
	Stop()
	Update(now time.Time) error
	Snapshot() motor.Snapshot
}

// Loop periodically checks connectivity and reconciles the motors with the
// hardware.
type Loop struct {
	motors    Motors
	keepalive keepalive.Poller
	period    time.Duration
	bus       eventbus.EventBus
	log       logger.Logger
	now       func() time.Time

	last    motor.Snapshot
	hasLast bool
}

// New creates a loop. A nil poller never stops the motors; bus and log may
// be nil.
func New(m Motors, ka keepalive.Poller, period time.Duration, bus eventbus.EventBus, log logger.Logger) *Loop {
	if ka == nil {
		ka = keepalive.Always{}
	}
	if period <= 0 {
		period = DefaultPeriod
	}
	return &Loop{motors: m, keepalive: ka, period: period, bus: bus, log: logger.OrNop(log), now: time.Now}
}

func (l *Loop) Period() time.Duration { return l.period }

// Tick runs one iteration: stop on lost connectivity, then update. The
// returned error is a hardware failure and is fatal.
func (l *Loop) Tick(now time.Time) error {
	if !l.keepalive.Poll(now) {
		l.log.Debugf("keep-alive lost, stopping motors")
		l.motors.Stop()
	}
	if err := l.motors.Update(now); err != nil {
		return fmt.Errorf("control tick: %w", err)
	}
	snap := l.motors.Snapshot()
	if !l.hasLast || snap != l.last {
		l.last, l.hasLast = snap, true
		if l.bus != nil {
			l.bus.Publish(events.MotorEvent{Snapshot: snap, Time: now})
		}
	}
	return nil
}

// Run ticks until ctx is cancelled or a tick fails.
func (l *Loop) Run(ctx context.Context) error {
	ticker := time.NewTicker(l.period)
	defer ticker.Stop()
	l.log.Infof("control loop running every %s", l.period)
	for {
		if err := l.Tick(l.now()); err != nil {
			l.log.Errorf("%v", err)
			coremon.CaptureFatal(err, "control")
			return err
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
