package embedding

import (
	"context"
	"fmt"
	"time"
)

const (
	// DefaultBatchSize is the maximum number of texts sent per provider call.
	DefaultBatchSize = 100
	// DefaultBatchDelay is the pause between consecutive provider calls,
	// keeping us under per-minute rate limits on large documents.
	DefaultBatchDelay = 100 * time.Millisecond
)

// BatchClient wraps a Model and splits large inputs into provider-sized
// batches, pacing the calls so big documents do not trip rate limits.
type BatchClient struct {
	model     Model
	batchSize int
	delay     time.Duration
}

// NewBatchClient creates a BatchClient with the default batch size and pacing.
func NewBatchClient(model Model) *BatchClient {
	return &BatchClient{
		model:     model,
		batchSize: DefaultBatchSize,
		delay:     DefaultBatchDelay,
	}
}

// Embed generates the embedding vector for a single text.
func (c *BatchClient) Embed(ctx context.Context, text string) ([]float32, error) {
	return c.model.Embed(ctx, text)
}

// EmbedBatch embeds texts in sub-batches of at most batchSize, pausing
// between sub-batches. Results are concatenated in input order. An empty
// input returns an empty slice without calling the provider.
func (c *BatchClient) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	embeddings := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += c.batchSize {
		end := start + c.batchSize
		if end > len(texts) {
			end = len(texts)
		}

		batch, err := c.model.EmbedBatch(ctx, texts[start:end])
		if err != nil {
			return nil, fmt.Errorf("failed to embed batch starting at %d: %w", start, err)
		}
		if len(batch) != end-start {
			return nil, fmt.Errorf("provider returned %d embeddings for %d texts", len(batch), end-start)
		}
		embeddings = append(embeddings, batch...)

		if end < len(texts) {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.delay):
			}
		}
	}
	return embeddings, nil
}

var _ Model = (*BatchClient)(nil)
