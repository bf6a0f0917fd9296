package queue

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryQueueDeliversInOrder(t *testing.T) {
	q := NewMemoryQueue(8)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	for _, id := range []string{"doc-1", "doc-2", "doc-3"} {
		if err := q.Enqueue(ctx, Message{DocumentID: id}); err != nil {
			t.Fatalf("Enqueue returned error: %v", err)
		}
	}

	var got []string
	done := make(chan struct{})
	go func() {
		defer close(done)
		q.Consume(ctx, func(ctx context.Context, msg Message) error {
			got = append(got, msg.DocumentID)
			if len(got) == 3 {
				cancel()
			}
			return nil
		})
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("consumer did not finish in time")
	}

	want := []string{"doc-1", "doc-2", "doc-3"}
	if len(got) != len(want) {
		t.Fatalf("expected %d messages, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("message %d: got %s, want %s", i, got[i], want[i])
		}
	}
}

func TestMemoryQueueContinuesAfterHandlerError(t *testing.T) {
	q := NewMemoryQueue(8)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	q.Enqueue(ctx, Message{DocumentID: "fails"})
	q.Enqueue(ctx, Message{DocumentID: "succeeds"})

	var seen []string
	done := make(chan struct{})
	go func() {
		defer close(done)
		q.Consume(ctx, func(ctx context.Context, msg Message) error {
			seen = append(seen, msg.DocumentID)
			if len(seen) == 2 {
				cancel()
			}
			if msg.DocumentID == "fails" {
				return errors.New("boom")
			}
			return nil
		})
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("consumer did not finish in time")
	}

	if len(seen) != 2 {
		t.Fatalf("handler error should not stop consumption, saw %d messages", len(seen))
	}
}

func TestMessageEncoding(t *testing.T) {
	data, err := encodeMessage(Message{DocumentID: "doc-42"})
	if err != nil {
		t.Fatalf("encodeMessage returned error: %v", err)
	}
	if string(data) != `{"documentId":"doc-42"}` {
		t.Errorf("unexpected wire format: %s", data)
	}

	msg, err := decodeMessage(data)
	if err != nil {
		t.Fatalf("decodeMessage returned error: %v", err)
	}
	if msg.DocumentID != "doc-42" {
		t.Errorf("round trip lost document id: %s", msg.DocumentID)
	}
}
