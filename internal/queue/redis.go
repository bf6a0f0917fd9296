package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/atende-ai/atende/pkg/logger"
)

// RedisQueue delivers processing messages through a Redis list, pushed with
// LPUSH and popped with a blocking BRPOP. A lighter alternative to Kafka for
// single-worker deployments.
type RedisQueue struct {
	client *redis.Client
	key    string
	log    *logger.Logger
}

// NewRedisQueue creates a queue on the given list key.
func NewRedisQueue(client *redis.Client, key string, log *logger.Logger) *RedisQueue {
	return &RedisQueue{client: client, key: key, log: log}
}

// Enqueue pushes one processing message onto the list.
func (q *RedisQueue) Enqueue(ctx context.Context, msg Message) error {
	data, err := encodeMessage(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal queue message: %w", err)
	}
	if err := q.client.LPush(ctx, q.key, data).Err(); err != nil {
		return fmt.Errorf("failed to push message to redis: %w", err)
	}
	return nil
}

// Consume pops messages with BRPOP and hands them to the handler. Handler
// failures are logged and the loop continues; failed documents are retried
// through an explicit reprocess.
func (q *RedisQueue) Consume(ctx context.Context, handler Handler) error {
	for {
		if ctx.Err() != nil {
			return nil
		}

		values, err := q.client.BRPop(ctx, 5*time.Second, q.key).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			return fmt.Errorf("failed to pop message from redis: %w", err)
		}
		if len(values) < 2 {
			continue
		}

		msg, err := decodeMessage([]byte(values[1]))
		if err != nil {
			q.log.Warn(fmt.Sprintf("Skipping malformed queue message: %v", err))
			continue
		}
		if err := handler(ctx, msg); err != nil {
			q.log.WithPayload(map[string]interface{}{"documentId": msg.DocumentID}).
				Error(fmt.Sprintf("Processing failed: %v", err))
		}
	}
}

// Close releases the Redis connection.
func (q *RedisQueue) Close() error {
	return q.client.Close()
}

var _ Queue = (*RedisQueue)(nil)
