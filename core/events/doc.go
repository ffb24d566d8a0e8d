// Package events defines the controller events emitted on the event bus.
//
// Available event types:
//   - CommandEvent: a bus message was handled, ignored or rejected
//   - MotorEvent: the reconciled motor state after a control tick changed it
//   - KeepAliveEvent: a connectivity check result
//   - HardwareWriteEvent: a single GPIO/PWM write
package events
