package command

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kilianp07/autopi/core/events"
	"github.com/kilianp07/autopi/core/logger"
	"github.com/kilianp07/autopi/internal/eventbus"
)

var (
	// ErrUnknownTopic is returned by Parse for topics outside the command table.
	ErrUnknownTopic = errors.New("unknown command topic")
	// ErrMalformedPayload is returned when an integer payload does not parse.
	ErrMalformedPayload = errors.New("malformed command payload")
)

// Car is the set of motor operations reachable from the bus.
type Car interface {
	Backwards()
	Left(amount int)
	Right(amount int)
	Turn(amount int)
	Stop()
	Reset()
	ChangeFrequency(delta int)
}

// Command is a parsed bus message.
type Command struct {
	Name  string
	Value int
}

// Parse maps a topic below prefix and its payload to a Command.
func Parse(prefix, topic string, payload []byte) (Command, error) {
	base := strings.TrimSuffix(prefix, "/") + "/"
	rest, ok := strings.CutPrefix(topic, base)
	if !ok {
		return Command{}, fmt.Errorf("%w: %s", ErrUnknownTopic, topic)
	}
	name, ok := byTopic[rest]
	if !ok {
		return Command{}, fmt.Errorf("%w: %s", ErrUnknownTopic, topic)
	}
	cmd := Command{Name: name}
	if !commands[name].numeric {
		return cmd, nil
	}
	v, err := strconv.Atoi(strings.TrimSpace(string(payload)))
	if err != nil {
		return cmd, fmt.Errorf("%w: %s %q", ErrMalformedPayload, topic, payload)
	}
	cmd.Value = v
	return cmd, nil
}

// Apply runs cmd against car.
func Apply(car Car, cmd Command) {
	switch cmd.Name {
	case Backwards:
		car.Backwards()
	case Left:
		car.Left(cmd.Value)
	case Right:
		car.Right(cmd.Value)
	case Turn:
		car.Turn(cmd.Value)
	case Throttle:
		car.ChangeFrequency(cmd.Value)
	case Reset:
		if cmd.Value == 0 {
			car.Stop()
		} else {
			car.Reset()
		}
	}
}

// Dispatcher routes bus messages to a Car. It keeps no state of its own.
type Dispatcher struct {
	car    Car
	prefix string
	bus    eventbus.EventBus
	log    logger.Logger
	now    func() time.Time
}

// NewDispatcher returns a dispatcher for topics below prefix. bus and log
// may be nil.
func NewDispatcher(car Car, prefix string, bus eventbus.EventBus, log logger.Logger) *Dispatcher {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Dispatcher{car: car, prefix: prefix, bus: bus, log: logger.OrNop(log), now: time.Now}
}

// Topics returns the topics the dispatcher understands.
func (d *Dispatcher) Topics() []string { return Topics(d.prefix) }

// Handle parses and applies one message. Unknown topics are ignored and
// return nil. A malformed payload leaves the car untouched and returns an
// error wrapping ErrMalformedPayload.
func (d *Dispatcher) Handle(topic string, payload []byte) error {
	cmd, err := Parse(d.prefix, topic, payload)
	ev := events.CommandEvent{Topic: topic, Command: cmd.Name, Value: cmd.Value, Time: d.now()}
	switch {
	case errors.Is(err, ErrUnknownTopic):
		d.log.Debugf("ignoring message on %s", topic)
		ev.Ignored = true
		d.publish(ev)
		return nil
	case err != nil:
		ev.Err = err
		d.publish(ev)
		return err
	}
	Apply(d.car, cmd)
	d.log.Debugf("applied %s %d", cmd.Name, cmd.Value)
	d.publish(ev)
	return nil
}

func (d *Dispatcher) publish(ev events.CommandEvent) {
	if d.bus != nil {
		d.bus.Publish(ev)
	}
}
