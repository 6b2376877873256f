package publisher

// Publisher represents a service for publishing classified offers
type Publisher interface {
	// Publish publishes an offer payload to a stream
	Publish(key string, message []byte) error

	// TrimStreams trims all streams to the configured maximum length
	TrimStreams() error

	// Close closes the publisher connection
	Close() error
}
