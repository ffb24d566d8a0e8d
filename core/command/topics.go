package command

import "strings"

// DefaultPrefix is the topic namespace the car listens on.
const DefaultPrefix = "/car"

// Command names, also used as the last topic segments below the prefix.
const (
	Backwards = "backwards"
	Left      = "left"
	Right     = "right"
	Turn      = "turn"
	Throttle  = "throttle"
	Reset     = "reset"
)

type commandDef struct {
	topic string
	// numeric payloads are parsed as decimal integers; others are ignored.
	numeric bool
}

var commands = map[string]commandDef{
	Backwards: {topic: "direction/backwards"},
	Left:      {topic: "direction/left", numeric: true},
	Right:     {topic: "direction/right", numeric: true},
	Turn:      {topic: "direction/turn", numeric: true},
	Throttle:  {topic: "throttle", numeric: true},
	Reset:     {topic: "reset", numeric: true},
}

var byTopic = func() map[string]string {
	m := make(map[string]string, len(commands))
	for name, s := range commands {
		m[s.topic] = name
	}
	return m
}()

// Names lists the known command names in a stable order.
func Names() []string {
	return []string{Backwards, Left, Right, Turn, Throttle, Reset}
}

// Topic returns the full topic of the named command, or "" when unknown.
func Topic(prefix, name string) string {
	s, ok := commands[name]
	if !ok {
		return ""
	}
	return strings.TrimSuffix(prefix, "/") + "/" + s.topic
}

// Topics returns the full topics of every command below prefix.
func Topics(prefix string) []string {
	names := Names()
	out := make([]string, 0, len(names))
	for _, n := range names {
		out = append(out, Topic(prefix, n))
	}
	return out
}

// Numeric reports whether the named command takes an integer payload.
func Numeric(name string) bool { return commands[name].numeric }
