package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coremetrics "github.com/kilianp07/autopi/core/metrics"
	"github.com/kilianp07/autopi/core/motor"
)

func TestPromSink_RecordMotorState(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)

	require.NoError(t, sink.RecordMotorState(coremetrics.MotorStateEvent{
		Snapshot: motor.Snapshot{
			Left:    motor.State{Name: "left", Direction: motor.Backward, Power: 78, Frequency: 2500},
			Right:   motor.State{Name: "right", Direction: motor.Forward, Power: 178, Frequency: 2500},
			Turning: true,
		},
		Time: time.Now(),
	}))

	assert.Equal(t, 78.0, testutil.ToFloat64(sink.power.WithLabelValues("left")))
	assert.Equal(t, 178.0, testutil.ToFloat64(sink.power.WithLabelValues("right")))
	assert.Equal(t, 2500.0, testutil.ToFloat64(sink.frequency.WithLabelValues("left")))
	assert.Equal(t, 1.0, testutil.ToFloat64(sink.direction.WithLabelValues("left")))
	assert.Equal(t, 0.0, testutil.ToFloat64(sink.direction.WithLabelValues("right")))
	assert.Equal(t, 1.0, testutil.ToFloat64(sink.turning))
}

func TestPromSink_RecordCommand(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)

	require.NoError(t, sink.RecordCommand(coremetrics.CommandRecord{Command: "left", Value: 10}))
	require.NoError(t, sink.RecordCommand(coremetrics.CommandRecord{Command: "left", Value: 20}))
	require.NoError(t, sink.RecordCommand(coremetrics.CommandRecord{Command: "throttle", Malformed: true}))
	require.NoError(t, sink.RecordCommand(coremetrics.CommandRecord{Topic: "/car/horn", Ignored: true}))

	assert.Equal(t, 2.0, testutil.ToFloat64(sink.commands.WithLabelValues("left", "applied")))
	assert.Equal(t, 1.0, testutil.ToFloat64(sink.commands.WithLabelValues("throttle", "malformed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(sink.commands.WithLabelValues("unknown", "ignored")))
}

func TestPromSink_HardwareAndKeepAlive(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)

	require.NoError(t, sink.RecordHardwareWrite(coremetrics.HardwareWriteRecord{Kind: "duty_cycle", Pin: 12}))
	require.NoError(t, sink.RecordHardwareWrite(coremetrics.HardwareWriteRecord{Kind: "duty_cycle", Pin: 13, Failed: true}))
	assert.Equal(t, 1.0, testutil.ToFloat64(sink.writes.WithLabelValues("duty_cycle", "false")))
	assert.Equal(t, 1.0, testutil.ToFloat64(sink.writes.WithLabelValues("duty_cycle", "true")))

	require.NoError(t, sink.RecordKeepAlive(coremetrics.KeepAliveRecord{Connected: true, Peers: 3}))
	assert.Equal(t, 1.0, testutil.ToFloat64(sink.connected))
	assert.Equal(t, 3.0, testutil.ToFloat64(sink.peers))

	// A failed check keeps the last peer count.
	require.NoError(t, sink.RecordKeepAlive(coremetrics.KeepAliveRecord{Connected: true, CheckFailed: true}))
	assert.Equal(t, 3.0, testutil.ToFloat64(sink.peers))
}

func TestPromSink_SharedRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	a, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)
	b, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)

	require.NoError(t, a.RecordKeepAlive(coremetrics.KeepAliveRecord{Connected: true, Peers: 1}))
	assert.Equal(t, 1.0, testutil.ToFloat64(b.peers))
}
