package publisher

import "context"

// Publisher represents a service for publishing lookup events
type Publisher interface {
	// Publish publishes a message under key
	Publish(ctx context.Context, key string, message []byte) error

	// Close closes the publisher connection
	Close() error
}
