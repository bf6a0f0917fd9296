// Package llm provides chat completion clients used to generate grounded
// answers from retrieved context.
package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/atende-ai/atende/internal/config"
)

// ErrProviderUnavailable is returned when no provider credential is configured.
var ErrProviderUnavailable = errors.New("llm provider not configured")

// Request carries the prompts and generation parameters for one completion.
type Request struct {
	SystemPrompt string
	UserPrompt   string
	Model        string
	Temperature  float64
	MaxTokens    int
}

// Response holds the generated answer and usage accounting.
type Response struct {
	Content    string
	TokensUsed int
	Model      string
}

// LLM is the interface every chat completion provider implements.
type LLM interface {
	Complete(ctx context.Context, req Request) (*Response, error)
}

// New creates an LLM for the configured provider.
func New(cfg *config.LLMConfig) (LLM, error) {
	switch cfg.Provider {
	case "openai", "":
		return NewOpenAILLM(cfg.APIKey), nil
	case "gemini":
		return NewGeminiLLM(cfg.APIKey)
	default:
		return nil, fmt.Errorf("unsupported llm provider: %s", cfg.Provider)
	}
}
