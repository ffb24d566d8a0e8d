package command

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/autopi/core/events"
	"github.com/kilianp07/autopi/internal/eventbus"
)

type recordCar struct {
	calls []string
}

func (r *recordCar) add(format string, args ...any) {
	r.calls = append(r.calls, fmt.Sprintf(format, args...))
}

func (r *recordCar) Backwards()                { r.add("backwards") }
func (r *recordCar) Left(amount int)           { r.add("left %d", amount) }
func (r *recordCar) Right(amount int)          { r.add("right %d", amount) }
func (r *recordCar) Turn(amount int)           { r.add("turn %d", amount) }
func (r *recordCar) Stop()                     { r.add("stop") }
func (r *recordCar) Reset()                    { r.add("reset") }
func (r *recordCar) ChangeFrequency(delta int) { r.add("frequency %d", delta) }

func TestDispatcher_Routing(t *testing.T) {
	cases := []struct {
		topic   string
		payload string
		want    string
	}{
		{"/car/direction/backwards", "", "backwards"},
		{"/car/direction/backwards", "garbage", "backwards"},
		{"/car/direction/left", "50", "left 50"},
		{"/car/direction/right", " 30\n", "right 30"},
		{"/car/direction/turn", "-20", "turn -20"},
		{"/car/throttle", "-500", "frequency -500"},
		{"/car/throttle", "25000", "frequency 25000"},
		{"/car/reset", "0", "stop"},
		{"/car/reset", "1", "reset"},
		{"/car/reset", "-3", "reset"},
	}
	for _, c := range cases {
		t.Run(c.topic+"="+c.payload, func(t *testing.T) {
			car := &recordCar{}
			d := NewDispatcher(car, "/car", nil, nil)
			require.NoError(t, d.Handle(c.topic, []byte(c.payload)))
			assert.Equal(t, []string{c.want}, car.calls)
		})
	}
}

func TestDispatcher_UnknownTopicIgnored(t *testing.T) {
	car := &recordCar{}
	d := NewDispatcher(car, "", nil, nil)
	for _, topic := range []string{"/car/horn", "/other/direction/left", "car/reset", "/car/direction"} {
		assert.NoError(t, d.Handle(topic, []byte("1")), topic)
	}
	assert.Empty(t, car.calls)
}

func TestDispatcher_MalformedPayload(t *testing.T) {
	car := &recordCar{}
	d := NewDispatcher(car, "/car", nil, nil)
	for _, p := range []string{"", "abc", "1.5", "99999999999999999999999"} {
		err := d.Handle("/car/direction/left", []byte(p))
		assert.ErrorIs(t, err, ErrMalformedPayload, "payload %q", p)
	}
	assert.Empty(t, car.calls)
}

func TestDispatcher_PublishesEvents(t *testing.T) {
	bus := eventbus.New()
	defer bus.Close()
	sub := bus.Subscribe()
	d := NewDispatcher(&recordCar{}, "/car", bus, nil)
	fixed := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	d.now = func() time.Time { return fixed }

	require.NoError(t, d.Handle("/car/direction/right", []byte("12")))
	require.NoError(t, d.Handle("/car/lights", nil))
	require.Error(t, d.Handle("/car/throttle", []byte("fast")))

	ev := (<-sub).(events.CommandEvent)
	assert.Equal(t, events.CommandEvent{Topic: "/car/direction/right", Command: Right, Value: 12, Time: fixed}, ev)
	ev = (<-sub).(events.CommandEvent)
	assert.True(t, ev.Ignored)
	ev = (<-sub).(events.CommandEvent)
	assert.Equal(t, Throttle, ev.Command)
	assert.ErrorIs(t, ev.Err, ErrMalformedPayload)
}

func TestTopics(t *testing.T) {
	assert.Equal(t, []string{
		"/car/direction/backwards",
		"/car/direction/left",
		"/car/direction/right",
		"/car/direction/turn",
		"/car/throttle",
		"/car/reset",
	}, Topics("/car/"))
	assert.Equal(t, "", Topic("/car", "horn"))
	assert.True(t, Numeric(Throttle))
	assert.False(t, Numeric(Backwards))
}
