// Package queue decouples document uploads from ingestion. The API service
// enqueues processing messages; the ingestion worker consumes them.
package queue

import (
	"context"
	"encoding/json"
)

// Message asks the worker to (re)process one document.
type Message struct {
	DocumentID string `json:"documentId"`
}

// Handler processes one message. A non-nil error marks the attempt failed;
// the message is not redelivered, failed documents are retried by an
// explicit reprocess request instead.
type Handler func(ctx context.Context, msg Message) error

// Queue is the transport between the API service and the ingestion worker.
type Queue interface {
	// Enqueue publishes a processing message.
	Enqueue(ctx context.Context, msg Message) error

	// Consume blocks, delivering messages to the handler until the
	// context is cancelled.
	Consume(ctx context.Context, handler Handler) error

	// Close releases the underlying connections.
	Close() error
}

func encodeMessage(msg Message) ([]byte, error) {
	return json.Marshal(msg)
}

func decodeMessage(data []byte) (Message, error) {
	var msg Message
	err := json.Unmarshal(data, &msg)
	return msg, err
}
