// Package messaging defines the queue abstraction used to hand tasks to
// runner workers and to fan out lifecycle events. Implementations must be
// safe for concurrent publishers and consumers; delivery is at-least-once,
// so consumers rely on the idempotent, keyed persistence operations of the
// task and approval stores.
package messaging

import (
	"context"
)

// Vendor names a queue implementation ("memory", "fs").
type Vendor string

const (
	VendorMemory Vendor = "memory"
	VendorFs     Vendor = "fs"
)

// Queue represents an abstract message queue for any payload type.
type Queue[T any] interface {
	// Publish adds a new message with payload to the queue
	Publish(ctx context.Context, t *T) error

	// Consume retrieves a single message from the queue. Implementations may
	// block until a message arrives or return (nil, nil) when empty.
	Consume(ctx context.Context) (Message[T], error)
}

// Message represents a message retrieved from a queue.
type Message[T any] interface {
	// T returns the payload of this message
	T() *T

	// Ack acknowledges successful processing of this message
	Ack() error

	// Nack indicates failure in processing this message
	Nack(err error) error
}
