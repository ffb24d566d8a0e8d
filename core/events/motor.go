package events

import (
	"time"

	"github.com/kilianp07/autopi/core/motor"
)

// MotorEvent carries the motor state after a control tick that changed it.
type MotorEvent struct {
	Snapshot motor.Snapshot
	Time     time.Time
}

// KeepAliveEvent reports the result of a connectivity check. Err is set
// when the check itself failed and the result was assumed connected.
type KeepAliveEvent struct {
	Connected bool
	Peers     int
	Err       error
	Time      time.Time
}
