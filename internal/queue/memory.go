package queue

import (
	"context"
	"sync"
)

// MemoryQueue is an in-process channel-backed Queue used in tests and
// local development without a broker.
type MemoryQueue struct {
	ch        chan Message
	closeOnce sync.Once
}

// NewMemoryQueue creates a queue buffering up to size messages.
func NewMemoryQueue(size int) *MemoryQueue {
	if size <= 0 {
		size = 64
	}
	return &MemoryQueue{ch: make(chan Message, size)}
}

// Enqueue places a message on the channel.
func (q *MemoryQueue) Enqueue(ctx context.Context, msg Message) error {
	select {
	case q.ch <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Consume delivers messages to the handler until the context is cancelled
// or the queue is closed. Handler errors do not stop the loop.
func (q *MemoryQueue) Consume(ctx context.Context, handler Handler) error {
	for {
		select {
		case msg, ok := <-q.ch:
			if !ok {
				return nil
			}
			// errors surface through document status, not the queue
			_ = handler(ctx, msg)
		case <-ctx.Done():
			return nil
		}
	}
}

// Close stops delivery. Safe to call more than once.
func (q *MemoryQueue) Close() error {
	q.closeOnce.Do(func() { close(q.ch) })
	return nil
}

var _ Queue = (*MemoryQueue)(nil)
