package mqtt

// Handler processes a message received on a subscribed topic. A returned
// error means the message was dropped; the connection stays up.
type Handler func(topic string, payload []byte) error

// Publisher sends a raw payload to a topic.
type Publisher interface {
	Publish(topic string, payload []byte) error
	Disconnect()
}
