// Package embedding turns text into fixed-dimension vectors via an external
// provider, with batching and rate-limit pacing on top.
package embedding

import (
	"context"
	"errors"
)

// Sentinel errors shared by all providers.
var (
	// ErrProviderUnavailable is returned when no provider credential is configured.
	ErrProviderUnavailable = errors.New("embedding provider not configured")
)

// Model is the interface every embedding provider implements.
type Model interface {
	// Embed generates the embedding vector for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embedding vectors for a batch of texts,
	// one vector per input in the same order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// Provider identifies an embedding model vendor.
type Provider string

const (
	OpenAI Provider = "openai"
	Gemini Provider = "gemini"
	Ollama Provider = "ollama"
)
