package mqtt

import "errors"

// ErrNotConnected is returned when publishing on a client that never connected.
var ErrNotConnected = errors.New("mqtt client not connected")
