package embedding

import (
	"context"
	"fmt"

	openai "github.com/meguminnnnnnnnn/go-openai"
)

// OpenAIModel is an embedding client for the OpenAI API.
type OpenAIModel struct {
	client     *openai.Client
	model      string
	configured bool
}

// NewOpenAIModel creates an OpenAI embedding client. A missing API key is not
// fatal at construction time; embedding calls will fail until one is set.
func NewOpenAIModel(apiKey, modelName string) *OpenAIModel {
	cfg := openai.DefaultConfig(apiKey)
	return &OpenAIModel{
		client:     openai.NewClientWithConfig(cfg),
		model:      modelName,
		configured: apiKey != "",
	}
}

// Embed generates the embedding vector for a single text.
func (m *OpenAIModel) Embed(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := m.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return embeddings[0], nil
}

// EmbedBatch generates embedding vectors for a batch of texts in one request.
func (m *OpenAIModel) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if !m.configured {
		return nil, ErrProviderUnavailable
	}

	resp, err := m.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: texts,
		Model: openai.EmbeddingModel(m.model),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create embeddings: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("no embeddings returned")
	}

	embeddings := make([][]float32, len(resp.Data))
	for i, d := range resp.Data {
		embeddings[i] = d.Embedding
	}
	return embeddings, nil
}

var _ Model = (*OpenAIModel)(nil)
