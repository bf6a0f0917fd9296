package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/atende-ai/atende/internal/config"
	"github.com/atende-ai/atende/pkg/logger"
)

// KafkaQueue delivers processing messages through a Kafka topic, keyed by
// document id so reprocess requests for the same document stay ordered.
type KafkaQueue struct {
	writer *kafka.Writer
	reader *kafka.Reader
	log    *logger.Logger
}

// NewKafkaQueue creates a queue on the configured topic, creating the topic
// when it does not exist yet.
func NewKafkaQueue(cfg *config.KafkaConfig, log *logger.Logger) (*KafkaQueue, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("no kafka brokers configured")
	}

	conn, err := kafka.Dial("tcp", cfg.Brokers[0])
	if err != nil {
		return nil, fmt.Errorf("failed to dial kafka: %w", err)
	}
	defer conn.Close()

	partitions, err := conn.ReadPartitions()
	if err != nil {
		return nil, fmt.Errorf("failed to read kafka partitions: %w", err)
	}
	exists := false
	for _, p := range partitions {
		if p.Topic == cfg.Topic {
			exists = true
			break
		}
	}
	if !exists {
		err = conn.CreateTopics(kafka.TopicConfig{
			Topic:             cfg.Topic,
			NumPartitions:     1,
			ReplicationFactor: 1,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create topic %s: %w", cfg.Topic, err)
		}
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
		BatchSize:    100,
	}
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		Topic:       cfg.Topic,
		GroupID:     cfg.GroupID,
		MinBytes:    1,
		MaxBytes:    10e6,
		MaxAttempts: 10,
		Dialer: &kafka.Dialer{
			Timeout: 10 * time.Second,
		},
	})

	return &KafkaQueue{writer: writer, reader: reader, log: log}, nil
}

// Enqueue publishes one processing message.
func (q *KafkaQueue) Enqueue(ctx context.Context, msg Message) error {
	data, err := encodeMessage(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal queue message: %w", err)
	}
	err = q.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(msg.DocumentID),
		Value: data,
	})
	if err != nil {
		return fmt.Errorf("failed to write message to kafka: %w", err)
	}
	return nil
}

// Consume fetches messages and hands them to the handler. The offset is
// committed even when the handler fails; failed documents carry their error
// in the database and are retried through an explicit reprocess.
func (q *KafkaQueue) Consume(ctx context.Context, handler Handler) error {
	for {
		kmsg, err := q.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			return fmt.Errorf("failed to fetch message: %w", err)
		}

		msg, err := decodeMessage(kmsg.Value)
		if err != nil {
			q.log.Warn(fmt.Sprintf("Skipping malformed queue message at offset %d: %v", kmsg.Offset, err))
		} else if err := handler(ctx, msg); err != nil {
			q.log.WithPayload(map[string]interface{}{"documentId": msg.DocumentID}).
				Error(fmt.Sprintf("Processing failed: %v", err))
		}

		if err := q.reader.CommitMessages(ctx, kmsg); err != nil {
			return fmt.Errorf("failed to commit offset: %w", err)
		}
	}
}

// Close shuts down the writer and reader.
func (q *KafkaQueue) Close() error {
	var errs []error
	if err := q.writer.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := q.reader.Close(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return fmt.Errorf("failed to close kafka queue: %v", errs)
	}
	return nil
}

var _ Queue = (*KafkaQueue)(nil)
