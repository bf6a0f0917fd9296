package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiLLM is a chat completion client for the Google GenAI API.
type GeminiLLM struct {
	client     *genai.Client
	configured bool
}

// NewGeminiLLM creates a Gemini chat client.
func NewGeminiLLM(apiKey string) (*GeminiLLM, error) {
	client, err := genai.NewClient(context.Background(), option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	return &GeminiLLM{client: client, configured: apiKey != ""}, nil
}

// Complete generates a single chat completion.
func (l *GeminiLLM) Complete(ctx context.Context, req Request) (*Response, error) {
	if !l.configured {
		return nil, ErrProviderUnavailable
	}

	model := l.client.GenerativeModel(req.Model)
	temp := float32(req.Temperature)
	model.Temperature = &temp
	if req.MaxTokens > 0 {
		maxTokens := int32(req.MaxTokens)
		model.MaxOutputTokens = &maxTokens
	}
	if req.SystemPrompt != "" {
		model.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(req.SystemPrompt)},
		}
	}

	resp, err := model.GenerateContent(ctx, genai.Text(req.UserPrompt))
	if err != nil {
		return nil, fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("no completion candidates returned")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}

	tokens := 0
	if resp.UsageMetadata != nil {
		tokens = int(resp.UsageMetadata.TotalTokenCount)
	}

	return &Response{
		Content:    sb.String(),
		TokensUsed: tokens,
		Model:      req.Model,
	}, nil
}

var _ LLM = (*GeminiLLM)(nil)
