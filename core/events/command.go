package events

import "time"

// CommandEvent is published for every message received on a command topic.
type CommandEvent struct {
	Topic   string
	Command string
	Value   int
	// Ignored is set for topics that map to no command.
	Ignored bool
	Err     error
	Time    time.Time
}
