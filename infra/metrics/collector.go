package metrics

import (
	"context"
	"errors"
	"time"

	"github.com/kilianp07/autopi/core/command"
	"github.com/kilianp07/autopi/core/events"
	coremetrics "github.com/kilianp07/autopi/core/metrics"
	"github.com/kilianp07/autopi/infra/logger"
	"github.com/kilianp07/autopi/internal/eventbus"
)

// StartEventCollector subscribes to the event bus and records metrics for events.
// It stops when the context is canceled or the bus is closed. The returned
// channel is closed once the collector goroutine has exited.
func StartEventCollector(ctx context.Context, bus eventbus.EventBus, sink coremetrics.MetricsSink) <-chan struct{} {
	done := make(chan struct{})
	if bus == nil || sink == nil {
		close(done)
		return done
	}
	log := logger.New("metrics-collector")
	sub := bus.Subscribe()
	go func() {
		defer close(done)
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				if err := record(sink, ev); err != nil {
					log.Warnf("record %T: %v", ev, err)
				}
			}
		}
	}()
	return done
}

func record(sink coremetrics.MetricsSink, ev eventbus.Event) error {
	switch e := ev.(type) {
	case events.MotorEvent:
		return sink.RecordMotorState(coremetrics.MotorStateEvent{Snapshot: e.Snapshot, Time: e.Time})
	case events.CommandEvent:
		if r, ok := sink.(coremetrics.CommandRecorder); ok {
			return r.RecordCommand(coremetrics.CommandRecord{
				Topic:     e.Topic,
				Command:   e.Command,
				Value:     e.Value,
				Ignored:   e.Ignored,
				Malformed: errors.Is(e.Err, command.ErrMalformedPayload),
				Time:      e.Time,
			})
		}
	case events.KeepAliveEvent:
		if r, ok := sink.(coremetrics.KeepAliveRecorder); ok {
			t := e.Time
			if t.IsZero() {
				t = time.Now()
			}
			return r.RecordKeepAlive(coremetrics.KeepAliveRecord{
				Connected:   e.Connected,
				Peers:       e.Peers,
				CheckFailed: e.Err != nil,
				Time:        t,
			})
		}
	case events.HardwareWriteEvent:
		if r, ok := sink.(coremetrics.HardwareWriteRecorder); ok {
			return r.RecordHardwareWrite(coremetrics.HardwareWriteRecord{
				Kind:   string(e.Kind),
				Pin:    e.Pin,
				Failed: e.Err != nil,
			})
		}
	}
	return nil
}
