package llm

import (
	"context"
	"fmt"

	openai "github.com/meguminnnnnnnnn/go-openai"
)

// OpenAILLM is a chat completion client for the OpenAI API.
type OpenAILLM struct {
	client     *openai.Client
	configured bool
}

// NewOpenAILLM creates an OpenAI chat client.
func NewOpenAILLM(apiKey string) *OpenAILLM {
	cfg := openai.DefaultConfig(apiKey)
	return &OpenAILLM{
		client:     openai.NewClientWithConfig(cfg),
		configured: apiKey != "",
	}
}

// Complete generates a single chat completion.
func (l *OpenAILLM) Complete(ctx context.Context, req Request) (*Response, error) {
	if !l.configured {
		return nil, ErrProviderUnavailable
	}

	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if req.SystemPrompt != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.SystemPrompt,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.UserPrompt,
	})

	temperature := float32(req.Temperature)
	resp, err := l.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       req.Model,
		Messages:    messages,
		Temperature: &temperature,
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no completion choices returned")
	}

	return &Response{
		Content:    resp.Choices[0].Message.Content,
		TokensUsed: resp.Usage.TotalTokens,
		Model:      resp.Model,
	}, nil
}

var _ LLM = (*OpenAILLM)(nil)
