package metrics

import (
	"time"

	"github.com/kilianp07/autopi/core/motor"
)

// MotorStateEvent is the motor state after a control tick changed it.
type MotorStateEvent struct {
	Snapshot motor.Snapshot
	Time     time.Time
}

// MetricsSink records motor state for observability purposes.
type MetricsSink interface {
	RecordMotorState(ev MotorStateEvent) error
}

// CommandRecord describes one message received on a command topic.
type CommandRecord struct {
	Topic     string
	Command   string
	Value     int
	Ignored   bool
	Malformed bool
	Time      time.Time
}

// CommandRecorder records received commands.
type CommandRecorder interface {
	RecordCommand(rec CommandRecord) error
}

// KeepAliveRecord is the outcome of one connectivity check.
type KeepAliveRecord struct {
	Connected   bool
	Peers       int
	CheckFailed bool
	Time        time.Time
}

// KeepAliveRecorder records connectivity checks.
type KeepAliveRecorder interface {
	RecordKeepAlive(rec KeepAliveRecord) error
}

// HardwareWriteRecord is a single GPIO/PWM write.
type HardwareWriteRecord struct {
	Kind   string
	Pin    int
	Failed bool
}

// HardwareWriteRecorder records hardware writes.
type HardwareWriteRecorder interface {
	RecordHardwareWrite(rec HardwareWriteRecord) error
}

// NopSink implements every recorder with no-op methods.
type NopSink struct{}

func (NopSink) RecordMotorState(MotorStateEvent) error        { return nil }
func (NopSink) RecordCommand(CommandRecord) error             { return nil }
func (NopSink) RecordKeepAlive(KeepAliveRecord) error         { return nil }
func (NopSink) RecordHardwareWrite(HardwareWriteRecord) error { return nil }
