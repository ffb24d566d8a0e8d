package hardware

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/autopi/core/events"
	"github.com/kilianp07/autopi/core/factory"
	corehw "github.com/kilianp07/autopi/core/hardware"
	"github.com/kilianp07/autopi/internal/eventbus"
)

func TestDummyDriver_RecordsWrites(t *testing.T) {
	d := NewDummyDriver(nil)
	require.NoError(t, d.SetOutput(19, true))
	require.NoError(t, d.SetDutyCycle(12, 200))
	require.NoError(t, d.SetFrequency(12, 4000))

	assert.True(t, d.Output(19))
	assert.Equal(t, 200, d.DutyCycle(12))
	assert.Equal(t, 4000, d.Frequency(12))
	assert.Equal(t, []Write{
		{Kind: corehw.WriteOutput, Pin: 19, Value: 1},
		{Kind: corehw.WriteDutyCycle, Pin: 12, Value: 200},
		{Kind: corehw.WriteFrequency, Pin: 12, Value: 4000},
	}, d.Writes())
	assert.Equal(t, 1, d.Count(corehw.WriteDutyCycle, 12))

	d.ClearWrites()
	assert.Empty(t, d.Writes())
	assert.Equal(t, 200, d.DutyCycle(12), "clearing the log keeps pin state")
}

func TestDummyDriver_FailAndClose(t *testing.T) {
	d := NewDummyDriver(nil)
	d.FailPin(12, assert.AnError)
	assert.ErrorIs(t, d.SetDutyCycle(12, 1), assert.AnError)
	assert.Empty(t, d.Writes())

	require.NoError(t, d.Close())
	assert.True(t, d.Closed())
	assert.ErrorIs(t, d.SetOutput(19, true), corehw.ErrDriverClosed)
}

func TestObserve_PublishesWrites(t *testing.T) {
	bus := eventbus.New()
	defer bus.Close()
	sub := bus.Subscribe()

	inner := NewDummyDriver(nil)
	inner.FailPin(13, assert.AnError)
	drv := Observe(inner, bus)

	require.NoError(t, drv.SetOutput(16, true))
	require.Error(t, drv.SetDutyCycle(13, 5))
	require.NoError(t, drv.SetFrequency(12, 2000))

	assert.Equal(t, events.HardwareWriteEvent{Kind: corehw.WriteOutput, Pin: 16, Value: 1}, <-sub)
	ev := (<-sub).(events.HardwareWriteEvent)
	assert.Equal(t, corehw.WriteDutyCycle, ev.Kind)
	assert.ErrorIs(t, ev.Err, assert.AnError)
	assert.Equal(t, events.HardwareWriteEvent{Kind: corehw.WriteFrequency, Pin: 12, Value: 2000}, <-sub)

	assert.Same(t, inner, Observe(inner, nil))
}

func TestFactory_Builtins(t *testing.T) {
	drv, err := corehw.NewDriver(factory.ModuleConfig{Type: "dummy"})
	require.NoError(t, err)
	assert.IsType(t, &DummyDriver{}, drv)

	_, err = corehw.NewDriver(factory.ModuleConfig{Type: "pigpio", Conf: map[string]any{"address": "127.0.0.1:1", "timeout_ms": "50"}})
	assert.Error(t, err, "nothing listens on port 1")

	withFakeAdaptor(t)
	drv, err = corehw.NewDriver(factory.ModuleConfig{Type: "raspi"})
	require.NoError(t, err)
	assert.IsType(t, &RaspiDriver{}, drv)

	_, err = corehw.NewDriver(factory.ModuleConfig{Type: "sysfs"})
	assert.Error(t, err)
}
