package embedding

import (
	"fmt"

	"github.com/atende-ai/atende/internal/config"
)

// NewModel creates an embedding Model for the configured provider.
func NewModel(cfg *config.EmbeddingConfig) (Model, error) {
	switch Provider(cfg.Provider) {
	case OpenAI:
		return NewOpenAIModel(cfg.APIKey, cfg.Model), nil
	case Gemini:
		return NewGeminiModel(cfg.APIKey, cfg.Model)
	case Ollama:
		return NewOllamaModel(cfg.Model, cfg.BaseURL)
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Provider)
	}
}
